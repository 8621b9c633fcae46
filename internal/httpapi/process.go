package httpapi

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/process"
)

// ProcessHandler exposes manual triggers for the edit/upload cascade that
// process.AutoProcess otherwise only runs automatically after a detected
// power-off, plus the ability to cancel whichever grace period is
// currently pending.
type ProcessHandler struct {
	autoProcess *process.AutoProcess
	editor      Editor
	uploader    Uploader
	logger      *slog.Logger
}

// Editor runs the auto-editor cascade on demand.
type Editor interface {
	Execute(ctx context.Context) error
}

// Uploader runs the auto-uploader cascade on demand.
type Uploader interface {
	Execute(ctx context.Context) error
}

// NewProcessHandler wraps autoProcess (for cancel-pending) plus editor and
// uploader (for manual triggers).
func NewProcessHandler(autoProcess *process.AutoProcess, editor Editor, uploader Uploader, logger *slog.Logger) *ProcessHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessHandler{autoProcess: autoProcess, editor: editor, uploader: uploader, logger: logger}
}

// Register wires every /process/* operation into api.
func (h *ProcessHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "triggerEdit", Method: "POST", Path: "/process/edit",
		Summary: "Run the auto-editor cascade now", Tags: []string{"Process"},
	}, h.triggerEdit)

	huma.Register(api, huma.Operation{
		OperationID: "triggerUpload", Method: "POST", Path: "/process/upload",
		Summary: "Run the auto-uploader cascade now", Tags: []string{"Process"},
	}, h.triggerUpload)

	huma.Register(api, huma.Operation{
		OperationID: "cancelPendingEdit", Method: "POST", Path: "/process/edit/cancel-pending",
		Summary: "Cancel the in-progress edit grace period", Tags: []string{"Process"},
	}, h.cancelPendingEdit)

	huma.Register(api, huma.Operation{
		OperationID: "cancelPendingSleep", Method: "POST", Path: "/process/sleep/cancel-pending",
		Summary: "Cancel the in-progress sleep grace period", Tags: []string{"Process"},
	}, h.cancelPendingSleep)
}

func (h *ProcessHandler) triggerEdit(ctx context.Context, _ *struct{}) (*struct{}, error) {
	if err := h.editor.Execute(ctx); err != nil {
		return nil, mapError(apperr.Wrap(apperr.KindInternal, "run editor", err))
	}
	return nil, nil
}

func (h *ProcessHandler) triggerUpload(ctx context.Context, _ *struct{}) (*struct{}, error) {
	if err := h.uploader.Execute(ctx); err != nil {
		return nil, mapError(apperr.Wrap(apperr.KindInternal, "run uploader", err))
	}
	return nil, nil
}

func (h *ProcessHandler) cancelPendingEdit(_ context.Context, _ *struct{}) (*struct{}, error) {
	h.autoProcess.CancelPendingEdit()
	return nil, nil
}

func (h *ProcessHandler) cancelPendingSleep(_ context.Context, _ *struct{}) (*struct{}, error) {
	h.autoProcess.CancelPendingSleep()
	return nil, nil
}
