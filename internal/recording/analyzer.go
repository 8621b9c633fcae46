package recording

import (
	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

// Analyzer is the frame-analyzer port phase handlers query (spec §4.B).
// Implementations resolve each predicate/extractor to one or more named
// composite matchers and, for extractors, an OCR-then-enum-map step.
type Analyzer interface {
	DetectPowerOff(f frame.Frame) bool
	DetectMatchingStart(f frame.Frame) bool
	DetectSessionStart(f frame.Frame, mode model.GameMode) bool
	DetectSessionAbort(f frame.Frame) bool
	DetectSessionFinish(f frame.Frame) bool
	DetectLoading(f frame.Frame) bool
	DetectLoadingEnd(f frame.Frame) bool
	DetectSessionResult(f frame.Frame) bool
	DetectSessionJudgement(f frame.Frame) bool
	DetectCommunicationError(f frame.Frame) bool
	DetectScheduleChange(f frame.Frame) bool

	ExtractGameMode(f frame.Frame) (model.GameMode, bool)
	ExtractRate(f frame.Frame) (model.Rate, bool)
	ExtractSessionJudgement(f frame.Frame) (model.Judgement, bool)
	ExtractSessionResult(f frame.Frame, mode model.GameMode) (model.Result, bool)
}
