package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"optimus/backend/internal/engine"
	"optimus/backend/internal/model"
)

func newFreeCmd(opts *rootOptions) *cobra.Command {
	var (
		people    []string
		days      []string
		startHour int
		endHour   int
		hourly    bool
	)

	cmd := &cobra.Command{
		Use:   "free FILE...",
		Short: "Find the hours in which none of the given people teach",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(people) == 0 {
				return errors.New("--people 不能为空")
			}
			window := engine.Window{StartHour: startHour, EndHour: endHour}
			for _, d := range days {
				wd, err := model.ParseWeekday(d)
				if err != nil {
					return err
				}
				window.Days = append(window.Days, wd)
			}
			if err := window.Validate(); err != nil {
				return err
			}

			records, err := loadRecords(opts, args)
			if err != nil {
				return err
			}
			result := engine.NewAvailabilityEngine(window).Compute(records, people)

			slots := result.Free
			if !hourly {
				slots = engine.CoalesceFreeSlots(slots)
			}
			out := cmd.OutOrStdout()
			for _, s := range slots {
				fmt.Fprintln(out, s.String())
			}
			if len(slots) == 0 {
				fmt.Fprintln(out, "no common free time")
			}
			return nil
		},
	}

	def := engine.DefaultWindow()
	defDays := make([]string, 0, len(def.Days))
	for _, d := range def.Days {
		defDays = append(defDays, d.String())
	}
	cmd.Flags().StringSliceVar(&people, "people", nil, `comma separated names, e.g. "Smith,Jones"`)
	cmd.Flags().StringSliceVar(&days, "days", defDays, "days to consider")
	cmd.Flags().IntVar(&startHour, "start-hour", def.StartHour, "first hour of the day window")
	cmd.Flags().IntVar(&endHour, "end-hour", def.EndHour, "last hour of the day window (inclusive)")
	cmd.Flags().BoolVar(&hourly, "hourly", false, "print each free hour instead of merged ranges")
	return cmd
}
