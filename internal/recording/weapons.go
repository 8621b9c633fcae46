package recording

import (
	"time"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

// weaponDetectionWindow is how long after battle start the HUD is polled
// for weapon identification (spec §4.G).
const weaponDetectionWindow = 20 * time.Second

// unknownWeaponLabel is assigned to a slot that never resolved.
const unknownWeaponLabel = "unknown"

// SlotResult is one per-slot HUD recognition outcome.
type SlotResult struct {
	Label string
	Score float64
}

// WeaponRecognizer is the OCR/template-matching port that reads the
// four-ally/four-enemy weapon HUD off a frame.
type WeaponRecognizer interface {
	HUDVisible(f frame.Frame) bool
	Recognize(f frame.Frame) (allies, enemies [model.WeaponSlots]SlotResult)
	// RecognizeFinal re-runs recognition on the last HUD-visible frame once
	// the window has elapsed; saveUnmatchedReport requests a diagnostic
	// dump of any slot that still can't be matched.
	RecognizeFinal(f frame.Frame, saveUnmatchedReport bool) (allies, enemies [model.WeaponSlots]SlotResult, unmatchedOutputDir string)
}

// WeaponDetectionService runs the 20-second best-score weapon HUD
// detection window (spec §4.G) and publishes battle.weapons_detected.
type WeaponDetectionService struct {
	recognizer WeaponRecognizer
	eventBus   *bus.EventBus
}

// NewWeaponDetectionService constructs the service bound to its
// recognizer port and the event bus it publishes detections on.
func NewWeaponDetectionService(recognizer WeaponRecognizer, eventBus *bus.EventBus) *WeaponDetectionService {
	return &WeaponDetectionService{recognizer: recognizer, eventBus: eventBus}
}

// Observe runs one detection step for the current frame, given elapsed
// time since battle start. It returns the context with updated
// best-score/attempt bookkeeping.
func (s *WeaponDetectionService) Observe(f frame.Frame, ctx Context, elapsed time.Duration) Context {
	if ctx.WeaponDetectionDone {
		return ctx
	}

	if elapsed > weaponDetectionWindow {
		return s.finalize(f, ctx, elapsed)
	}

	if !s.recognizer.HUDVisible(f) {
		return ctx
	}
	clone := f.Clone()
	ctx.LastHUDFrame = &clone

	allies, enemies := s.recognizer.Recognize(f)
	ctx.WeaponDetectionAttempt++

	changed := false
	for i := 0; i < model.WeaponSlots; i++ {
		if applyBest(&ctx.AllySlotsBest[i], allies[i]) {
			changed = true
		}
		if applyBest(&ctx.EnemySlotsBest[i], enemies[i]) {
			changed = true
		}
	}

	if allSlotsResolved(ctx.AllySlotsBest) && allSlotsResolved(ctx.EnemySlotsBest) {
		ctx.WeaponDetectionDone = true
	}

	if changed {
		ctx = s.publishDetection(ctx, elapsed, false, "")
	}
	return ctx
}

func (s *WeaponDetectionService) finalize(f frame.Frame, ctx Context, elapsed time.Duration) Context {
	source := f
	if ctx.LastHUDFrame != nil {
		source = *ctx.LastHUDFrame
	}

	allies, enemies, unmatchedDir := s.recognizer.RecognizeFinal(source, true)
	ctx.WeaponDetectionAttempt++
	for i := 0; i < model.WeaponSlots; i++ {
		applyBest(&ctx.AllySlotsBest[i], allies[i])
		applyBest(&ctx.EnemySlotsBest[i], enemies[i])
	}
	fillUnknown(&ctx.AllySlotsBest)
	fillUnknown(&ctx.EnemySlotsBest)
	ctx.WeaponDetectionDone = true

	return s.publishDetection(ctx, elapsed, true, unmatchedDir)
}

func (s *WeaponDetectionService) publishDetection(ctx Context, elapsed time.Duration, isFinal bool, unmatchedDir string) Context {
	allies := labelsOf(ctx.AllySlotsBest)
	enemies := labelsOf(ctx.EnemySlotsBest)

	var alliesArr, enemiesArr model.Weapons
	copy(alliesArr[:], allies)
	copy(enemiesArr[:], enemies)
	ctx.Metadata = ctx.Metadata.WithAllies(alliesArr).WithEnemies(enemiesArr)

	if s.eventBus != nil {
		s.eventBus.Publish(events.NewBattleWeaponsDetected(allies, enemies, elapsed.Seconds(), ctx.WeaponDetectionAttempt, isFinal, unmatchedDir))
		s.eventBus.Publish(events.NewRecordingMetadataUpdated("", ctx.Metadata.ToDict()))
	}
	return ctx
}

// applyBest replaces best if candidate strictly beats it; ties keep the
// older label (spec §4.G step 4). Reports whether it changed.
func applyBest(best *weaponSlotBest, candidate SlotResult) bool {
	if candidate.Score > best.Score {
		*best = weaponSlotBest{Label: candidate.Label, Score: candidate.Score}
		return true
	}
	return false
}

func allSlotsResolved(slots [model.WeaponSlots]weaponSlotBest) bool {
	for _, s := range slots {
		if s.Label == "" {
			return false
		}
	}
	return true
}

func fillUnknown(slots *[model.WeaponSlots]weaponSlotBest) {
	for i := range slots {
		if slots[i].Label == "" {
			slots[i].Label = unknownWeaponLabel
		}
	}
}

func labelsOf(slots [model.WeaponSlots]weaponSlotBest) []string {
	out := make([]string, model.WeaponSlots)
	for i, s := range slots {
		if s.Label == "" {
			out[i] = unknownWeaponLabel
		} else {
			out[i] = s.Label
		}
	}
	return out
}
