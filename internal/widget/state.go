package widget

import (
	"strings"

	"github.com/mikey/email-threat-widget/internal/core"
)

// Phase enumerates the UI states of the widget. Exactly one phase is
// rendered at a time.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEmptyInput
	PhaseLoading
	PhaseResultSafe
	PhaseResultMediumRisk
	PhaseResultPhishing
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseEmptyInput:
		return "empty-input"
	case PhaseLoading:
		return "loading"
	case PhaseResultSafe:
		return "result-safe"
	case PhaseResultMediumRisk:
		return "result-medium-risk"
	case PhaseResultPhishing:
		return "result-phishing"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the full displayable state of the widget
type State struct {
	Phase  Phase
	Result *core.AnalysisResult
	Err    error

	// Offline marks a verdict produced by the keyword heuristic after a
	// transport failure; Threat carries its three-way classification.
	Offline bool
	Threat  core.ThreatLevel
}

// Event is a message dispatched into the widget's state transition
type Event interface {
	isEvent()
}

// AnalyzeClicked is the explicit user activation carrying the current input
type AnalyzeClicked struct {
	Text string
}

// ResponseReceived carries a well-formed classification result
type ResponseReceived struct {
	Result *core.AnalysisResult
}

// ResponseFailed carries a classification failure
type ResponseFailed struct {
	Err error
}

// FallbackClassified carries the offline heuristic's verdict after a
// transport failure
type FallbackClassified struct {
	Threat core.ThreatLevel
}

func (AnalyzeClicked) isEvent()     {}
func (ResponseReceived) isEvent()   {}
func (ResponseFailed) isEvent()     {}
func (FallbackClassified) isEvent() {}

// Transition maps an event to the next widget state. The widget keeps no
// history: the next state depends only on the most recent event.
func Transition(ev Event) State {
	switch e := ev.(type) {
	case AnalyzeClicked:
		if strings.TrimSpace(e.Text) == "" {
			return State{Phase: PhaseEmptyInput}
		}
		return State{Phase: PhaseLoading}
	case ResponseReceived:
		return resultState(e.Result)
	case ResponseFailed:
		return State{Phase: PhaseError, Err: e.Err}
	case FallbackClassified:
		return offlineState(e.Threat)
	default:
		return State{Phase: PhaseIdle}
	}
}

func resultState(result *core.AnalysisResult) State {
	switch {
	case result.IsPhishing():
		return State{Phase: PhaseResultPhishing, Result: result}
	case result.RiskLevel == core.RiskMedium:
		return State{Phase: PhaseResultMediumRisk, Result: result}
	default:
		// LOW and any unrecognized risk level both land on the safe
		// rendering; the renderer drops the confidence figure for the
		// unrecognized case.
		return State{Phase: PhaseResultSafe, Result: result}
	}
}

func offlineState(threat core.ThreatLevel) State {
	state := State{Offline: true, Threat: threat}
	switch threat {
	case core.ThreatHigh:
		state.Phase = PhaseResultPhishing
	case core.ThreatLow:
		state.Phase = PhaseResultSafe
	default:
		state.Phase = PhaseResultMediumRisk
	}
	return state
}
