package domain

// StepKind names the continuation that consumes a chat's next message.
type StepKind string

const (
	StepMatrix        StepKind = "matrix"
	StepRing          StepKind = "ring"
	StepInverseModulo StepKind = "inverse_modulo"
	StepInverseElem   StepKind = "inverse_element"
	StepFactorize     StepKind = "factorize"
	StepEuclid        StepKind = "euclid"
	StepCalc          StepKind = "calc"
	StepLogic         StepKind = "logic"
	StepBroadcast     StepKind = "broadcast"
	StepReportText    StepKind = "report_text"
	StepReportLink    StepKind = "report_link"
)

// Bound argument keys.
const (
	ArgAction   = "action"
	ArgCommand  = "command"
	ArgModulo   = "modulo"
	ArgReportID = "report_id"
)

// PendingStep is a continuation descriptor: the step to run on the chat's
// next message plus the arguments accumulated by earlier steps.
type PendingStep struct {
	ChatID int64             `json:"chat_id"`
	Kind   StepKind          `json:"kind"`
	Args   map[string]string `json:"args,omitempty"`
}

// Arg returns a bound argument or an empty string.
func (s *PendingStep) Arg(key string) string {
	if s == nil || s.Args == nil {
		return ""
	}
	return s.Args[key]
}
