package easel

// History is the capture/commit contract of the undo service. The core
// never looks inside history entries; it only brackets its mutations.
//
// BeginCapture/CommitCapture delimit a general capture with a label.
// BeginStructuralChange starts a capture of stack-order and nesting
// changes. AbortCapture discards an open capture, restoring nothing by
// itself; callers restore their own state first. SaveState/FinishState
// is the lightweight pair for pixel-only captures that need no
// structural bookkeeping.
type History interface {
	BeginCapture(label string)
	BeginStructuralChange()
	CommitCapture()
	AbortCapture()

	SaveState(label string)
	FinishState()
}

// NopHistory is a History that records nothing. It is the default for
// sessions constructed without an undo service.
type NopHistory struct{}

func (NopHistory) BeginCapture(string)    {}
func (NopHistory) BeginStructuralChange() {}
func (NopHistory) CommitCapture()         {}
func (NopHistory) AbortCapture()          {}
func (NopHistory) SaveState(string)       {}
func (NopHistory) FinishState()           {}
