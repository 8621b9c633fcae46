package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/capture"
	"github.com/saw4405/splat-replay/internal/config"
	"github.com/saw4405/splat-replay/internal/recording"
)

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Run the full capture → edit → upload pipeline once",
	Long: `auto watches for a Splatoon session via OBS, records and annotates each
match, then (once the capture device powers off) edits and uploads the
resulting clips to YouTube, following the behavior flags configured under
[behavior] in splat-replay.toml.`,
	RunE: runAuto,
}

func init() {
	rootCmd.AddCommand(autoCmd)
}

func runAuto(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	application, err := newApp(appConfig, logger)
	if err != nil {
		return err
	}

	up, err := newUploader(appConfig, application, logger)
	if err != nil {
		return err
	}
	autoProcess := newAutoProcess(appConfig, application, up, logger)
	go autoProcess.Run(ctx)

	useCase, _, err := newAutoRecordingUseCase(appConfig, application, logger)
	if err != nil {
		return err
	}

	poweredOff, err := useCase.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("自動記録が終了しました", slog.Bool("powered_off", poweredOff))
	return nil
}

// newAutoRecordingUseCase wires the weapon-detection service, phase
// handlers, state machine, session, and OBS-screenshot capture poller that
// together drive one auto-recording run (spec §4.E/§4.F). It also returns
// the underlying Session, which httpapi.NewRecordingHandler reads status
// from independently of the use case loop.
func newAutoRecordingUseCase(cfg config.Config, application *app, logger *slog.Logger) (*recording.AutoRecordingUseCase, *recording.Session, error) {
	frameHub := bus.NewFrameHub()
	poller := capture.NewPoller(application.recorder, cfg.Capture.DeviceName, frameHub, logger)

	weapons := recording.NewWeaponDetectionService(application.weapons, application.eventBus)
	handlers := recording.NewPhaseHandlers(application.analyzer, weapons)
	machine := recording.NewStateMachine()
	session := recording.NewSession(machine, application.recorder, application.analyzer, application.assets, application.eventBus)

	useCase := recording.NewAutoRecordingUseCase(session, handlers, application.analyzer, poller, frameHub, application.eventBus, logger)
	return useCase, session, nil
}
