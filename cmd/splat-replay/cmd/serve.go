package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/httpapi"
	"github.com/saw4405/splat-replay/internal/progress"
	"github.com/saw4405/splat-replay/internal/recording"
	"github.com/saw4405/splat-replay/internal/setup"
	"github.com/saw4405/splat-replay/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run splat-replay as a long-lived daemon with the HTTP control API",
	Long: `serve runs the full pipeline continuously: an auto-recording loop driven
by OBS frame polling, the post-session edit/upload/sleep orchestrator, the
bootstrap setup-verification flow, and the operator-facing HTTP API (health,
setup control, progress streaming, asset management, manual triggers).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("シャットダウンシグナルを受信しました", slog.String("signal", sig.String()))
		cancel()
	}()

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

	progressStore := progress.NewStore(application.eventBus, 1000)
	defer progressStore.Close()
	go drainProgressStore(ctx, progressStore)

	repo, err := setup.Open(appConfig.Setup.DatabasePath, logger)
	if err != nil {
		return err
	}
	softwareCheckers := map[model.SetupStep]setup.SoftwareChecker{
		model.StepFFmpeg:    setup.NewFFmpegChecker(),
		model.StepOBS:       setup.NewOBSChecker(),
		model.StepTesseract: setup.NewTesseractChecker(),
		model.StepFont:      setup.NewFontChecker(appConfig.Editor.FontPath),
		model.StepYouTube:   setup.NewYouTubeChecker(appConfig.Uploader.CredentialsPath),
	}
	setupService, err := setup.NewService(repo, setup.NewHardwareChecker(), softwareCheckers, logger)
	if err != nil {
		return err
	}
	setupService.StartRecheck(ctx, appConfig.Setup.RecheckSchedule)

	useCase, session, err := newAutoRecordingUseCase(appConfig, application, logger)
	if err != nil {
		return err
	}
	go runAutoRecordingLoop(ctx, useCase, logger)

	serverConfig := httpapi.ServerConfig{
		Host:            appConfig.Server.Host,
		Port:            appConfig.Server.Port,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	server := httpapi.NewServer(serverConfig, logger, version.Version)

	httpapi.NewHealthHandler(version.Version).Register(server.API())
	httpapi.NewAssetsHandler(application.assets).Register(server.API())
	httpapi.NewSetupHandler(setupService).Register(server.API())
	httpapi.NewRecordingHandler(session).Register(server.API())
	httpapi.NewProcessHandler(autoProcess, application.autoEdit, up, logger).Register(server.API())

	progressHandler := httpapi.NewProgressHandler(progressStore, logger)
	progressHandler.Register(server.API())
	progressHandler.RegisterSSE(server.Router())

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("サーバーの停止に失敗しました", "error", err)
		}
	}()

	logger.Info("splat-replay サーバーを起動します",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.String("version", version.Version),
	)
	return server.Start()
}

// drainProgressStore periodically flushes buffered progress events into
// the store's ring buffer, following httpapi's own expectation that Drain
// is called on an external cadence rather than per-event.
func drainProgressStore(ctx context.Context, store *progress.Store) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Drain()
		}
	}
}

// runAutoRecordingLoop restarts AutoRecordingUseCase.Run whenever it
// returns without a power-off (e.g. the capture device was unplugged and
// setup/teardown failed), stopping once ctx is cancelled.
func runAutoRecordingLoop(ctx context.Context, useCase *recording.AutoRecordingUseCase, logger *slog.Logger) {
	for ctx.Err() == nil {
		poweredOff, err := useCase.Run(ctx)
		if err != nil {
			logger.Error("自動記録の実行に失敗しました", "error", err)
		}
		if ctx.Err() != nil {
			return
		}
		if !poweredOff {
			time.Sleep(5 * time.Second)
		}
	}
}
