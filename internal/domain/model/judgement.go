package model

// Judgement is the win/lose outcome of a battle.
type Judgement string

const (
	JudgementWin     Judgement = "WIN"
	JudgementLose    Judgement = "LOSE"
	JudgementUnknown Judgement = ""
)
