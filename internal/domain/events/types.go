// Package events names the exact dotted event types published on the
// bus.EventBus (spec §6) and provides typed constructors for their
// payloads, so publishers never hand-build a map at the call site.
package events

// Recording session lifecycle (component F / C).
const (
	RecordingStarted         = "recording.started"
	RecordingPaused          = "recording.paused"
	RecordingResumed         = "recording.resumed"
	RecordingStopped         = "recording.stopped"
	RecordingCancelled       = "recording.cancelled"
	RecordingMetadataUpdated = "recording.metadata_updated"
	PowerOffDetected         = "recording.power_off_detected"
)

// Asset repository (component H).
const (
	AssetRecordedSaved           = "asset.recorded.saved"
	AssetRecordedDeleted         = "asset.recorded.deleted"
	AssetRecordedMetadataUpdated = "asset.recorded.metadata_updated"
	AssetRecordedSubtitleUpdated = "asset.recorded.subtitle_updated"
	AssetEditedSaved             = "asset.edited.saved"
	AssetEditedDeleted           = "asset.edited.deleted"
)

// Battle/session recognition (components B/C/G).
const (
	BattleMatchingStarted = "battle.matching_started"
	BattleStarted         = "battle.started"
	BattleInterrupted     = "battle.interrupted"
	BattleFinished        = "battle.finished"
	BattleResultDetected  = "battle.result_detected"
	BattleWeaponsDetected = "battle.weapons_detected"
	BattleScheduleChanged = "battle.schedule_changed"
)

// Speech transcription.
const (
	SpeechListening  = "speech.listening"
	SpeechRecognized = "speech.recognized"
)

// Progress reporter (component J).
const (
	ProgressStart      = "progress.start"
	ProgressTotal      = "progress.total"
	ProgressStage      = "progress.stage"
	ProgressAdvance    = "progress.advance"
	ProgressFinish     = "progress.finish"
	ProgressItems      = "progress.items"
	ProgressItemStage  = "progress.item_stage"
	ProgressItemFinish = "progress.item_finish"
)

// Auto-process orchestrator (component M).
const (
	ProcessEditUploadCompleted = "process.edit_upload_completed"
	ProcessPending             = "process.pending"
	ProcessStarted             = "process.started"
	ProcessSleepPending        = "process.sleep.pending"
	ProcessSleepStarted        = "process.sleep.started"
)
