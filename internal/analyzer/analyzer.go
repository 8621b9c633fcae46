// Package analyzer implements the frame-analyzer port (spec §4.B): a
// fixed set of predicate and extraction queries, each resolved against a
// named composite matcher loaded from matchers.yaml, with OCR-bearing
// extraction additionally mapping recognized text onto domain enums.
package analyzer

import (
	"strings"

	"golang.org/x/text/width"

	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/matcher"
)

// Names of the composite matchers each predicate/extractor resolves
// against in matchers.yaml. Looking these up by name, rather than hanging
// typed fields off Analyzer, keeps the binding between spec-named queries
// and user-authored matcher trees entirely in configuration.
const (
	MatcherPowerOff              = "power_off"
	MatcherMatchingStart         = "matching_start"
	MatcherSessionStartBattle    = "session_start_battle"
	MatcherSessionStartSalmon    = "session_start_salmon"
	MatcherSessionAbort          = "session_abort"
	MatcherSessionFinish         = "session_finish"
	MatcherLoading               = "loading"
	MatcherLoadingEnd            = "loading_end"
	MatcherSessionResult         = "session_result"
	MatcherSessionJudgement      = "session_judgement"
	MatcherCommunicationError    = "communication_error"
	MatcherScheduleChange        = "schedule_change"
	MatcherGameModeROI           = "game_mode_text"
	MatcherRateROI               = "rate_text"
	MatcherJudgementROI          = "judgement_text"
	MatcherResultBattleMatch     = "result_battle_match_text"
	MatcherResultBattleRule      = "result_battle_rule_text"
	MatcherResultBattleStage     = "result_battle_stage_text"
	MatcherResultBattleKill      = "result_battle_kill_text"
	MatcherResultBattleDeath     = "result_battle_death_text"
	MatcherResultBattleSpecial   = "result_battle_special_text"
	MatcherResultSalmonHazard    = "result_salmon_hazard_text"
	MatcherResultSalmonStage     = "result_salmon_stage_text"
	MatcherResultSalmonGoldenEgg = "result_salmon_golden_egg_text"
	MatcherResultSalmonPowerEgg  = "result_salmon_power_egg_text"
	MatcherResultSalmonRescue    = "result_salmon_rescue_text"
	MatcherResultSalmonRescued   = "result_salmon_rescued_text"
)

// ROI is the subset of matcher.ROI analyzer code needs to crop a frame for
// OCR; it is just matcher.ROI aliased here so callers needn't import both
// packages for a single type.
type ROI = matcher.ROI

// Analyzer resolves spec §4.B's predicate and extraction queries against a
// named matcher set and an OCR port.
type Analyzer struct {
	matchers map[string]matcher.Matcher
	rois     map[string]ROI
	ocr      OCR
}

// New builds an Analyzer from a loaded matcher set and ROI table (the ROI
// table drives OCR cropping for extraction queries; matchers drive the
// Detect* predicates only).
func New(matchers map[string]matcher.Matcher, rois map[string]ROI, ocr OCR) *Analyzer {
	return &Analyzer{matchers: matchers, rois: rois, ocr: ocr}
}

func (a *Analyzer) match(name string, f frame.Frame) bool {
	m, ok := a.matchers[name]
	if !ok {
		return false
	}
	return m.Match(f)
}

func (a *Analyzer) DetectPowerOff(f frame.Frame) bool           { return a.match(MatcherPowerOff, f) }
func (a *Analyzer) DetectMatchingStart(f frame.Frame) bool      { return a.match(MatcherMatchingStart, f) }
func (a *Analyzer) DetectSessionAbort(f frame.Frame) bool       { return a.match(MatcherSessionAbort, f) }
func (a *Analyzer) DetectSessionFinish(f frame.Frame) bool      { return a.match(MatcherSessionFinish, f) }
func (a *Analyzer) DetectLoading(f frame.Frame) bool            { return a.match(MatcherLoading, f) }
func (a *Analyzer) DetectLoadingEnd(f frame.Frame) bool         { return a.match(MatcherLoadingEnd, f) }
func (a *Analyzer) DetectSessionResult(f frame.Frame) bool      { return a.match(MatcherSessionResult, f) }
func (a *Analyzer) DetectSessionJudgement(f frame.Frame) bool   { return a.match(MatcherSessionJudgement, f) }
func (a *Analyzer) DetectCommunicationError(f frame.Frame) bool { return a.match(MatcherCommunicationError, f) }
func (a *Analyzer) DetectScheduleChange(f frame.Frame) bool     { return a.match(MatcherScheduleChange, f) }

func (a *Analyzer) DetectSessionStart(f frame.Frame, mode model.GameMode) bool {
	if mode == model.GameModeSalmon {
		return a.match(MatcherSessionStartSalmon, f)
	}
	return a.match(MatcherSessionStartBattle, f)
}

// recognizeROI crops f to the named ROI (the full frame if undeclared) and
// runs OCR, folding full-width digits/letters (OCR frequently returns them
// from in-game fonts) to half-width and half-width katakana to full-width
// before the caller maps the result onto an enum.
func (a *Analyzer) recognizeROI(name string, f frame.Frame) (string, bool) {
	roi := a.rois[name]
	region := f.Sub(roi.Resolve(f.Width, f.Height))
	text, err := a.ocr.Recognize(region)
	if err != nil || text == "" {
		return "", false
	}
	return strings.TrimSpace(width.Fold.String(text)), true
}

func (a *Analyzer) ExtractGameMode(f frame.Frame) (model.GameMode, bool) {
	text, ok := a.recognizeROI(MatcherGameModeROI, f)
	if !ok {
		return "", false
	}
	switch {
	case strings.Contains(text, "バンカラ"), strings.Contains(text, "レギュラー"), strings.Contains(text, "Xマッチ"):
		return model.GameModeBattle, true
	case strings.Contains(text, "サーモン"):
		return model.GameModeSalmon, true
	default:
		return "", false
	}
}

func (a *Analyzer) ExtractRate(f frame.Frame) (model.Rate, bool) {
	text, ok := a.recognizeROI(MatcherRateROI, f)
	if !ok {
		return model.Rate{}, false
	}
	rate, err := model.ParseRate(text)
	if err != nil {
		return model.Rate{}, false
	}
	return rate, true
}

func (a *Analyzer) ExtractSessionJudgement(f frame.Frame) (model.Judgement, bool) {
	text, ok := a.recognizeROI(MatcherJudgementROI, f)
	if !ok {
		return model.JudgementUnknown, false
	}
	switch {
	case strings.Contains(text, "WIN"), strings.Contains(text, "勝"):
		return model.JudgementWin, true
	case strings.Contains(text, "LOSE"), strings.Contains(text, "負"):
		return model.JudgementLose, true
	default:
		return model.JudgementUnknown, false
	}
}

func (a *Analyzer) ExtractSessionResult(f frame.Frame, mode model.GameMode) (model.Result, bool) {
	if mode == model.GameModeSalmon {
		return a.extractSalmonResult(f)
	}
	return a.extractBattleResult(f)
}

func (a *Analyzer) extractBattleResult(f frame.Frame) (model.Result, bool) {
	matchText, ok1 := a.recognizeROI(MatcherResultBattleMatch, f)
	ruleText, ok2 := a.recognizeROI(MatcherResultBattleRule, f)
	stageText, ok3 := a.recognizeROI(MatcherResultBattleStage, f)
	killText, ok4 := a.recognizeROI(MatcherResultBattleKill, f)
	deathText, ok5 := a.recognizeROI(MatcherResultBattleDeath, f)
	specialText, ok6 := a.recognizeROI(MatcherResultBattleSpecial, f)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return model.Result{}, false
	}
	b, err := model.BattleResultFromDict(map[string]string{
		"match":   matchText,
		"rule":    ruleText,
		"stage":   stageText,
		"kill":    killText,
		"death":   deathText,
		"special": specialText,
	})
	if err != nil {
		return model.Result{}, false
	}
	return model.BattleOf(b), true
}

func (a *Analyzer) extractSalmonResult(f frame.Frame) (model.Result, bool) {
	hazardText, ok1 := a.recognizeROI(MatcherResultSalmonHazard, f)
	stageText, ok2 := a.recognizeROI(MatcherResultSalmonStage, f)
	goldenText, ok3 := a.recognizeROI(MatcherResultSalmonGoldenEgg, f)
	powerText, ok4 := a.recognizeROI(MatcherResultSalmonPowerEgg, f)
	rescueText, ok5 := a.recognizeROI(MatcherResultSalmonRescue, f)
	rescuedText, ok6 := a.recognizeROI(MatcherResultSalmonRescued, f)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return model.Result{}, false
	}
	s, err := model.SalmonResultFromDict(map[string]string{
		"hazard":     hazardText,
		"stage":      stageText,
		"golden_egg": goldenText,
		"power_egg":  powerText,
		"rescue":     rescueText,
		"rescued":    rescuedText,
	})
	if err != nil {
		return model.Result{}, false
	}
	return model.SalmonOf(s), true
}
