// Package progress implements the task/itemized progress reporter and its
// in-memory ring-buffer store (spec §4.J).
package progress

import (
	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
)

// Reporter publishes ProgressEvents on the bus under progress.<kind>. It
// holds no state of its own: every call is a pure translation to an
// event, matching spec §4.J's "every call constructs a ProgressEvent".
type Reporter struct {
	eventBus *bus.EventBus
}

// NewReporter constructs a Reporter bound to the process event bus.
func NewReporter(eventBus *bus.EventBus) *Reporter {
	return &Reporter{eventBus: eventBus}
}

// StartTask announces the beginning of a named task with a total unit
// count (0 when unknown).
func (r *Reporter) StartTask(taskID, name string, total int) {
	r.publish(events.ProgressStart, map[string]any{"task_id": taskID, "name": name, "total": total})
}

// UpdateTotal revises a task's total unit count mid-flight.
func (r *Reporter) UpdateTotal(taskID string, total int) {
	r.publish(events.ProgressTotal, map[string]any{"task_id": taskID, "total": total})
}

// Stage announces the task has entered a named stage.
func (r *Reporter) Stage(taskID, stage string) {
	r.publish(events.ProgressStage, map[string]any{"task_id": taskID, "stage": stage})
}

// Advance reports n additional units complete.
func (r *Reporter) Advance(taskID string, n int) {
	r.publish(events.ProgressAdvance, map[string]any{"task_id": taskID, "n": n})
}

// Finish announces task completion.
func (r *Reporter) Finish(taskID string, success bool, message string) {
	r.publish(events.ProgressFinish, map[string]any{"task_id": taskID, "success": success, "message": message})
}

// InitItems announces the itemized sub-task list for a task.
func (r *Reporter) InitItems(taskID string, itemIDs []string) {
	r.publish(events.ProgressItems, map[string]any{"task_id": taskID, "item_ids": itemIDs})
}

// ItemStage announces one item has entered a named stage.
func (r *Reporter) ItemStage(taskID, itemID, stage string) {
	r.publish(events.ProgressItemStage, map[string]any{"task_id": taskID, "item_id": itemID, "stage": stage})
}

// ItemFinish announces one item's completion.
func (r *Reporter) ItemFinish(taskID, itemID string, success bool, message string) {
	r.publish(events.ProgressItemFinish, map[string]any{"task_id": taskID, "item_id": itemID, "success": success, "message": message})
}

func (r *Reporter) publish(eventType string, payload map[string]any) {
	if r.eventBus == nil {
		return
	}
	r.eventBus.Publish(bus.NewEvent(eventType, payload))
}
