package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/obsrecorder"
	"github.com/saw4405/splat-replay/internal/setup"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the bootstrap hardware/software verification checks once and print their status",
	Long: `setup probes the same hardware and software dependencies the HTTP API's
setup flow walks an operator through (camera, ffmpeg, OBS, tesseract, the
thumbnail font, and YouTube credentials) and prints a pass/fail summary,
without persisting any state transition — use the HTTP API's /setup/*
endpoints to drive the interactive step-by-step flow serve exposes.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	hardware := setup.NewHardwareChecker()
	hw, err := hardware.Check(ctx)
	if err != nil {
		fmt.Printf("%-12s error: %s\n", "hardware", err.Error())
	} else {
		fmt.Printf("%-12s sufficient=%v cores=%d available_mb=%.0f %s\n",
			"hardware", hw.Sufficient, hw.Cores, hw.AvailableMemoryMB, hw.Warning)
	}

	software := map[model.SetupStep]setup.SoftwareChecker{
		model.StepFFmpeg:    setup.NewFFmpegChecker(),
		model.StepOBS:       setup.NewOBSChecker(),
		model.StepTesseract: setup.NewTesseractChecker(),
		model.StepFont:      setup.NewFontChecker(appConfig.Editor.FontPath),
		model.StepYouTube:   setup.NewYouTubeChecker(appConfig.Uploader.CredentialsPath),
	}
	for _, step := range model.SetupStepOrder {
		if step == model.StepHardwareCheck {
			continue
		}
		checker, ok := software[step]
		if !ok {
			continue
		}
		result := checker.Check(ctx)
		fmt.Printf("%-12s installed=%v version=%s path=%s %s\n",
			step, result.Installed, result.Version, result.InstallationPath, result.ErrorMessage)
	}

	recorder := obsrecorder.NewRecorder(appConfig.OBS.Settings(), logger, nil)
	deviceChecker := setup.NewDeviceChecker(recorder)
	connected, err := deviceChecker.IsConnected(ctx, appConfig.Capture.DeviceName)
	if err != nil {
		fmt.Printf("%-12s error: %s\n", "device", err.Error())
	} else {
		fmt.Printf("%-12s connected=%v name=%q\n", "device", connected, appConfig.Capture.DeviceName)
	}
	return nil
}
