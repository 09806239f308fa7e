package widget

import (
	"fmt"
	"math"

	"github.com/mikey/email-threat-widget/internal/core"
)

// Indicator offsets on the fixed 0-130 horizontal scale
const (
	IndicatorLow    = 0
	IndicatorMedium = 65
	IndicatorHigh   = 130
)

// ViewModel is what a presenter draws: the indicator offset and the message
type ViewModel struct {
	IndicatorOffset int
	Message         string
}

// Render maps a widget state to its view model. It is a pure function; all
// rendering policy lives here.
func Render(s State) ViewModel {
	if s.Offline {
		return renderOffline(s.Threat)
	}

	switch s.Phase {
	case PhaseEmptyInput:
		return ViewModel{
			IndicatorOffset: IndicatorMedium,
			Message:         "Please paste some email text before analyzing.",
		}
	case PhaseLoading:
		return ViewModel{
			IndicatorOffset: IndicatorMedium,
			Message:         "Analyzing email...",
		}
	case PhaseResultPhishing:
		return ViewModel{
			IndicatorOffset: IndicatorHigh,
			Message: fmt.Sprintf(
				"Warning: this email looks like a phishing attempt. Confidence: %d%% (risk level: %s)",
				percent(s.Result.Confidence.Phishing), s.Result.RiskLevel),
		}
	case PhaseResultMediumRisk:
		return ViewModel{
			IndicatorOffset: IndicatorMedium,
			Message: fmt.Sprintf(
				"This email shows some suspicious traits. Phishing probability: %d%%",
				percent(s.Result.Confidence.Phishing)),
		}
	case PhaseResultSafe:
		if s.Result.RiskLevel == core.RiskLow {
			return ViewModel{
				IndicatorOffset: IndicatorLow,
				Message: fmt.Sprintf(
					"This email looks safe. Confidence: %d%% (risk level: %s)",
					percent(s.Result.Confidence.Safe), s.Result.RiskLevel),
			}
		}
		// Unrecognized risk level: generic safe message, no confidence figure
		return ViewModel{
			IndicatorOffset: IndicatorLow,
			Message:         "This email looks safe.",
		}
	case PhaseError:
		return ViewModel{
			IndicatorOffset: IndicatorMedium,
			Message:         fmt.Sprintf("Analysis failed: %v", s.Err),
		}
	default:
		return ViewModel{
			IndicatorOffset: IndicatorMedium,
			Message:         "Paste email text above to check it for phishing.",
		}
	}
}

func renderOffline(threat core.ThreatLevel) ViewModel {
	switch threat {
	case core.ThreatHigh:
		return ViewModel{
			IndicatorOffset: IndicatorHigh,
			Message:         "Suspicious keywords detected. Treat this email with caution. (offline analysis)",
		}
	case core.ThreatLow:
		return ViewModel{
			IndicatorOffset: IndicatorLow,
			Message:         "Content looks like routine correspondence. (offline analysis)",
		}
	default:
		return ViewModel{
			IndicatorOffset: IndicatorMedium,
			Message:         "Unable to classify this content without the analysis service. (offline analysis)",
		}
	}
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}
