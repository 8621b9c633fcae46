package process

import (
	"context"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/saw4405/splat-replay/internal/apperr"
)

// PowerManager puts the capture host to sleep once the auto-process
// cascade finishes (spec §4.M: "Accepting auto_sleep_pending triggers
// PowerManager.sleep() after a short log-flush delay"). The capture host
// is assumed headless, so this shells out to the platform's standard
// suspend command rather than linking a power-management library — no
// repo in the pack wraps one, and the original's own power_manager module
// isn't present in the retrieval pack to port from.
type PowerManager struct {
	logger *slog.Logger
	runner func(ctx context.Context, name string, args ...string) error
}

// NewPowerManager builds a PowerManager for the current GOOS.
func NewPowerManager(logger *slog.Logger) *PowerManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &PowerManager{logger: logger, runner: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Sleep suspends the host. Linux uses systemctl suspend (the standard
// systemd entry point on capture hosts); Windows and Darwin use their own
// native sleep commands.
func (p *PowerManager) Sleep(ctx context.Context) error {
	name, args := sleepCommand()
	p.logger.Info("システムをスリープさせます", "command", name)
	if err := p.runner(ctx, name, args...); err != nil {
		return apperr.Wrap(apperr.KindInternal, "システムのスリープに失敗しました", err)
	}
	return nil
}

func sleepCommand() (string, []string) {
	switch runtime.GOOS {
	case "windows":
		return "rundll32.exe", []string{"powrprof.dll,SetSuspendState", "0,1,0"}
	case "darwin":
		return "pmset", []string{"sleepnow"}
	default:
		return "systemctl", []string{"suspend"}
	}
}
