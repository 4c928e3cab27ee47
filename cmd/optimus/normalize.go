package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"optimus/backend/internal/model"
)

// recordOutput normalize 子命令的 JSON 输出
type recordOutput struct {
	ID         string             `json:"id"`
	SourceFile string             `json:"source_file"`
	CourseCode string             `json:"course_code"`
	CourseName string             `json:"course_name"`
	Instructor string             `json:"instructor"`
	Room       string             `json:"room"`
	Dept       string             `json:"dept"`
	Slots      []model.CourseSlot `json:"slots"`
}

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize FILE...",
		Short: "Print normalized course records as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(opts, args)
			if err != nil {
				return err
			}

			out := make([]recordOutput, 0, len(records))
			for _, r := range records {
				out = append(out, recordOutput{
					ID:         r.RecordID,
					SourceFile: r.SourceFile,
					CourseCode: r.CourseCode,
					CourseName: r.CourseName,
					Instructor: r.Instructor,
					Room:       r.Room,
					Dept:       r.Dept,
					Slots:      r.Slots,
				})
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
