package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"optimus/backend/internal/engine"
	"optimus/backend/internal/model"
	applogger "optimus/backend/pkg/logger"
	"optimus/backend/pkg/tabular"
)

// rootOptions 所有子命令共享的参数
type rootOptions struct {
	logLevel string
	match    string
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "optimus",
		Short:         "Course timetable normalizer, conflict checker and free-slot finder",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := applogger.NewConsoleLogger(opts.logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.match, "match", "members", "instructor comparison: members|verbatim")

	cmd.AddCommand(
		newNormalizeCmd(opts),
		newConflictsCmd(opts),
		newFreeCmd(opts),
	)
	return cmd
}

// loadRecords 依次读取文件，以文件名作为来源标签；任何一个文件失败即整体失败
func loadRecords(opts *rootOptions, paths []string) ([]model.CourseRecord, error) {
	normalizer := engine.NewNormalizer(engine.WithIDGenerator(engine.NewSequenceGenerator("rec")))

	var all []model.CourseRecord
	for _, path := range paths {
		records, report, err := loadFile(normalizer, path)
		if err != nil {
			return nil, err
		}
		opts.logger.Info("文件已读取",
			zap.String("file", path),
			zap.Int("rows", report.Rows),
			zap.Int("kept", report.Kept),
			zap.Int("dropped", report.Dropped),
			zap.Strings("unknown_headers", report.UnknownHeaders),
		)
		all = append(all, records...)
	}
	return all, nil
}

func loadFile(normalizer *engine.Normalizer, path string) ([]model.CourseRecord, engine.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, engine.Report{}, err
	}
	defer f.Close()

	name := filepath.Base(path)
	src, err := tabular.Open(name, f)
	if err != nil {
		return nil, engine.Report{}, fmt.Errorf("%s: %w", path, err)
	}
	return normalizer.NormalizeFrom(src, name)
}
