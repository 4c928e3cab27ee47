package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"optimus/backend/internal/engine"
)

func newConflictsCmd(opts *rootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "conflicts FILE...",
		Short: "List instructor and room conflicts across the given files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			want := engine.ConflictKind(strings.ToUpper(strings.TrimSpace(kind)))
			if want != "" && want != engine.ConflictInstructor && want != engine.ConflictRoom {
				return errors.New("--kind 只能为 INSTRUCTOR 或 ROOM")
			}

			records, err := loadRecords(opts, args)
			if err != nil {
				return err
			}
			conflicts := engine.NewConflictDetector(engine.ParseMatchPolicy(opts.match)).Detect(records)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tENTITY\tCOURSE A\tSLOT A\tCOURSE B\tSLOT B")
			shown := 0
			for _, c := range conflicts {
				if want != "" && c.Kind != want {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.Kind, c.Entity,
					c.Source.CourseCode, c.Source.Slot,
					c.Target.CourseCode, c.Target.Slot,
				)
				shown++
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			counts := engine.CountByKind(conflicts)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d shown (instructor %d, room %d)\n",
				shown, counts[engine.ConflictInstructor], counts[engine.ConflictRoom])
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only show INSTRUCTOR or ROOM conflicts")
	return cmd
}
