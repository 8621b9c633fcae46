package events

import "github.com/saw4405/splat-replay/internal/bus"

// Recording session lifecycle constructors.

func NewRecordingStarted(sessionID, gameMode, rate string) bus.Event {
	return bus.NewEvent(RecordingStarted, map[string]any{
		"session_id": sessionID,
		"game_mode":  gameMode,
		"rate":       rate,
	}).WithAggregate(sessionID)
}

func NewRecordingPaused(sessionID, reason string) bus.Event {
	return bus.NewEvent(RecordingPaused, map[string]any{
		"session_id": sessionID,
		"reason":     reason,
	}).WithAggregate(sessionID)
}

func NewRecordingResumed(sessionID string) bus.Event {
	return bus.NewEvent(RecordingResumed, map[string]any{
		"session_id": sessionID,
	}).WithAggregate(sessionID)
}

func NewRecordingStopped(sessionID, videoAssetID string, durationSeconds float64) bus.Event {
	return bus.NewEvent(RecordingStopped, map[string]any{
		"session_id":       sessionID,
		"video_asset_id":   videoAssetID,
		"duration_seconds": durationSeconds,
	}).WithAggregate(sessionID)
}

func NewRecordingCancelled(sessionID, reason string) bus.Event {
	return bus.NewEvent(RecordingCancelled, map[string]any{
		"session_id": sessionID,
		"reason":     reason,
	}).WithAggregate(sessionID)
}

func NewRecordingMetadataUpdated(sessionID string, metadata map[string]any) bus.Event {
	return bus.NewEvent(RecordingMetadataUpdated, map[string]any{
		"metadata": metadata,
	}).WithAggregate(sessionID)
}

func NewPowerOffDetected(consecutiveCount, threshold int, final bool) bus.Event {
	return bus.NewEvent(PowerOffDetected, map[string]any{
		"consecutive_count": consecutiveCount,
		"threshold":         threshold,
		"final":             final,
	})
}

// Asset repository constructors.

func NewAssetRecordedSaved(video string, hasSubtitle, hasThumbnail bool, startedAt string) bus.Event {
	return bus.NewEvent(AssetRecordedSaved, map[string]any{
		"video":         video,
		"has_subtitle":  hasSubtitle,
		"has_thumbnail": hasThumbnail,
		"started_at":    startedAt,
	}).WithAggregate(video)
}

func NewAssetRecordedDeleted(video string) bus.Event {
	return bus.NewEvent(AssetRecordedDeleted, map[string]any{"video": video}).WithAggregate(video)
}

func NewAssetRecordedMetadataUpdated(video string) bus.Event {
	return bus.NewEvent(AssetRecordedMetadataUpdated, map[string]any{"video": video}).WithAggregate(video)
}

func NewAssetRecordedSubtitleUpdated(video string) bus.Event {
	return bus.NewEvent(AssetRecordedSubtitleUpdated, map[string]any{"video": video}).WithAggregate(video)
}

func NewAssetEditedSaved(video string) bus.Event {
	return bus.NewEvent(AssetEditedSaved, map[string]any{"video": video}).WithAggregate(video)
}

func NewAssetEditedDeleted(video string) bus.Event {
	return bus.NewEvent(AssetEditedDeleted, map[string]any{"video": video}).WithAggregate(video)
}

// Battle/session recognition constructors.

func NewBattleMatchingStarted(gameMode, rate string) bus.Event {
	return bus.NewEvent(BattleMatchingStarted, map[string]any{
		"game_mode": gameMode,
		"rate":      rate,
	})
}

func NewBattleStarted(gameMode, rate, stageName string) bus.Event {
	return bus.NewEvent(BattleStarted, map[string]any{
		"game_mode":  gameMode,
		"rate":       rate,
		"stage_name": stageName,
	})
}

func NewBattleInterrupted(reason string) bus.Event {
	return bus.NewEvent(BattleInterrupted, map[string]any{"reason": reason})
}

func NewBattleFinished(durationSeconds float64) bus.Event {
	return bus.NewEvent(BattleFinished, map[string]any{"duration_seconds": durationSeconds})
}

func NewBattleResultDetected(result string) bus.Event {
	return bus.NewEvent(BattleResultDetected, map[string]any{"result": result})
}

// NewBattleWeaponsDetected builds the incremental/final weapon-detection
// event. unmatchedOutputDir carries the diagnostic dump directory used by
// the weapon detection service when a HUD slot could not be matched; it is
// empty when not applicable.
func NewBattleWeaponsDetected(allies, enemies []string, elapsedSeconds float64, attempt int, isFinal bool, unmatchedOutputDir string) bus.Event {
	return bus.NewEvent(BattleWeaponsDetected, map[string]any{
		"allies":               allies,
		"enemies":              enemies,
		"elapsed_seconds":      elapsedSeconds,
		"attempt":              attempt,
		"is_final":             isFinal,
		"unmatched_output_dir": unmatchedOutputDir,
	})
}

func NewBattleScheduleChanged() bus.Event {
	return bus.NewEvent(BattleScheduleChanged, map[string]any{})
}

// Speech transcription constructors.

func NewSpeechListening() bus.Event {
	return bus.NewEvent(SpeechListening, map[string]any{})
}

func NewSpeechRecognized(text string, startSeconds, endSeconds float64) bus.Event {
	return bus.NewEvent(SpeechRecognized, map[string]any{
		"text":          text,
		"start_seconds": startSeconds,
		"end_seconds":   endSeconds,
	})
}

// Auto-process orchestrator constructors.

type EditUploadTrigger string

const (
	TriggerAuto   EditUploadTrigger = "auto"
	TriggerManual EditUploadTrigger = "manual"
)

func NewProcessEditUploadCompleted(success bool, message string, trigger EditUploadTrigger) bus.Event {
	return bus.NewEvent(ProcessEditUploadCompleted, map[string]any{
		"success": success,
		"message": message,
		"trigger": string(trigger),
	})
}

func NewProcessPending(timeoutSeconds float64, message string) bus.Event {
	return bus.NewEvent(ProcessPending, map[string]any{
		"timeout_seconds": timeoutSeconds,
		"message":         message,
	})
}

func NewProcessStarted() bus.Event {
	return bus.NewEvent(ProcessStarted, map[string]any{})
}

func NewProcessSleepPending(timeoutSeconds float64, message string) bus.Event {
	return bus.NewEvent(ProcessSleepPending, map[string]any{
		"timeout_seconds": timeoutSeconds,
		"message":         message,
	})
}

func NewProcessSleepStarted() bus.Event {
	return bus.NewEvent(ProcessSleepStarted, map[string]any{})
}
