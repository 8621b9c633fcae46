package recording

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

type fakeRecognizer struct {
	hudVisible bool
	allies     [model.WeaponSlots]SlotResult
	enemies    [model.WeaponSlots]SlotResult
}

func (f fakeRecognizer) HUDVisible(frame.Frame) bool { return f.hudVisible }
func (f fakeRecognizer) Recognize(frame.Frame) (allies, enemies [model.WeaponSlots]SlotResult) {
	return f.allies, f.enemies
}
func (f fakeRecognizer) RecognizeFinal(frame.Frame, bool) (allies, enemies [model.WeaponSlots]SlotResult, unmatchedOutputDir string) {
	return f.allies, f.enemies, ""
}

func TestWeaponDetectionTracksBestScorePerSlot(t *testing.T) {
	r := fakeRecognizer{
		hudVisible: true,
		allies:     [model.WeaponSlots]SlotResult{{Label: "Splattershot", Score: 0.9}, {}, {}, {}},
		enemies:    [model.WeaponSlots]SlotResult{{}, {}, {}, {}},
	}
	svc := NewWeaponDetectionService(r, bus.NewEventBus())
	ctx := NewContext(model.GameModeBattle)

	ctx = svc.Observe(frame.Frame{}, ctx, 2*time.Second)
	require.Equal(t, "Splattershot", ctx.AllySlotsBest[0].Label)

	weaker := r
	weaker.allies[0] = SlotResult{Label: "Charger", Score: 0.5}
	svc2 := NewWeaponDetectionService(weaker, bus.NewEventBus())
	ctx = svc2.Observe(frame.Frame{}, ctx, 3*time.Second)
	assert.Equal(t, "Splattershot", ctx.AllySlotsBest[0].Label, "a weaker score must not replace the running best")
}

func TestWeaponDetectionFinalizesUnknownAfterWindow(t *testing.T) {
	r := fakeRecognizer{hudVisible: true}
	svc := NewWeaponDetectionService(r, bus.NewEventBus())
	ctx := NewContext(model.GameModeBattle)

	ctx = svc.Observe(frame.Frame{}, ctx, 21*time.Second)
	assert.True(t, ctx.WeaponDetectionDone)
	assert.Equal(t, "unknown", ctx.AllySlotsBest[0].Label)
}
