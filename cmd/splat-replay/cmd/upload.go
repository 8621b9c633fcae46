package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Edit and upload already-recorded clips without capturing new ones",
	Long: `upload runs only the edit and upload stages of the pipeline against
whatever clips are already sitting in the recorded/ directory under
storage.base_dir, skipping the
capture/recording stage entirely. Useful for retrying a failed upload or
for running the edit/upload steps on a different machine than the one
that captured the footage.`,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	application, err := newApp(appConfig, logger)
	if err != nil {
		return err
	}

	if err := application.autoEdit.Execute(ctx); err != nil {
		return err
	}

	up, err := newUploader(appConfig, application, logger)
	if err != nil {
		return err
	}
	return up.Execute(ctx)
}
