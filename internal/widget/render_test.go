package widget

import (
	"errors"
	"strings"
	"testing"

	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestRenderResultMapping(t *testing.T) {
	tests := []struct {
		name         string
		result       *core.AnalysisResult
		wantOffset   int
		wantContains string
	}{
		{
			name: "phishing far right with phishing confidence",
			result: &core.AnalysisResult{
				Prediction: 1,
				Confidence: core.Confidence{Phishing: 0.876, Safe: 0.124},
				RiskLevel:  core.RiskHigh,
			},
			wantOffset:   IndicatorHigh,
			wantContains: "88%",
		},
		{
			name: "safe low risk far left with safe confidence",
			result: &core.AnalysisResult{
				Prediction: 0,
				Confidence: core.Confidence{Phishing: 0.087, Safe: 0.913},
				RiskLevel:  core.RiskLow,
			},
			wantOffset:   IndicatorLow,
			wantContains: "91%",
		},
		{
			name: "medium risk centered with phishing confidence",
			result: &core.AnalysisResult{
				Prediction: 0,
				Confidence: core.Confidence{Phishing: 0.42, Safe: 0.58},
				RiskLevel:  core.RiskMedium,
			},
			wantOffset:   IndicatorMedium,
			wantContains: "42%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := Render(Transition(ResponseReceived{Result: tt.result}))
			assert.Equal(t, tt.wantOffset, vm.IndicatorOffset)
			assert.Contains(t, vm.Message, tt.wantContains)
		})
	}
}

func TestRenderPhishingIncludesRiskLevel(t *testing.T) {
	vm := Render(Transition(ResponseReceived{Result: &core.AnalysisResult{
		Prediction: 1,
		Confidence: core.Confidence{Phishing: 0.876},
		RiskLevel:  core.RiskHigh,
	}}))
	assert.Contains(t, vm.Message, "HIGH")
}

func TestRenderUnrecognizedRiskLevel(t *testing.T) {
	vm := Render(Transition(ResponseReceived{Result: &core.AnalysisResult{
		Prediction: 0,
		Confidence: core.Confidence{Phishing: 0.3, Safe: 0.7},
		RiskLevel:  core.RiskLevel("WEIRD"),
	}}))

	// Generic safe rendering: far left, no confidence figure
	assert.Equal(t, IndicatorLow, vm.IndicatorOffset)
	assert.NotContains(t, vm.Message, "%")
}

func TestRenderNonResultPhases(t *testing.T) {
	emptyInput := Render(State{Phase: PhaseEmptyInput})
	assert.Equal(t, IndicatorMedium, emptyInput.IndicatorOffset)
	assert.Contains(t, strings.ToLower(emptyInput.Message), "paste")

	loading := Render(State{Phase: PhaseLoading})
	assert.Equal(t, IndicatorMedium, loading.IndicatorOffset)
	assert.Contains(t, strings.ToLower(loading.Message), "analyzing")

	failed := Render(State{Phase: PhaseError, Err: errors.New("boom")})
	assert.Contains(t, failed.Message, "boom")
}

func TestRenderOfflineStates(t *testing.T) {
	tests := []struct {
		threat     core.ThreatLevel
		wantOffset int
	}{
		{core.ThreatHigh, IndicatorHigh},
		{core.ThreatLow, IndicatorLow},
		{core.ThreatMedium, IndicatorMedium},
	}

	for _, tt := range tests {
		vm := Render(Transition(FallbackClassified{Threat: tt.threat}))
		assert.Equal(t, tt.wantOffset, vm.IndicatorOffset)
		assert.Contains(t, vm.Message, "(offline analysis)")
	}
}

func TestTransitionEmptyInput(t *testing.T) {
	assert.Equal(t, PhaseEmptyInput, Transition(AnalyzeClicked{Text: ""}).Phase)
	assert.Equal(t, PhaseEmptyInput, Transition(AnalyzeClicked{Text: "   \n\t "}).Phase)
	assert.Equal(t, PhaseLoading, Transition(AnalyzeClicked{Text: "hello"}).Phase)
}
