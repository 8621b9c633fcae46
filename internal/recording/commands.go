package recording

// Action is the effect a phase handler asks the use case to carry out.
type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionPause
	ActionResume
	ActionStop
	ActionCancel
	ActionResetMetadata
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "NONE"
	case ActionStart:
		return "START"
	case ActionPause:
		return "PAUSE"
	case ActionResume:
		return "RESUME"
	case ActionStop:
		return "STOP"
	case ActionCancel:
		return "CANCEL"
	case ActionResetMetadata:
		return "RESET_METADATA"
	default:
		return "UNKNOWN"
	}
}

// Command is the result of a phase handler call: the action to execute
// plus the replacement Context the use case should adopt as the new
// single-owner value (spec §4.E).
type Command struct {
	Action         Action
	UpdatedContext Context
	Reason         string
}

func none(ctx Context) Command { return Command{Action: ActionNone, UpdatedContext: ctx} }
