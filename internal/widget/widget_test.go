package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/heuristic"
	"github.com/mikey/email-threat-widget/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClassifier struct {
	fn func(ctx context.Context, emailText string) (*core.AnalysisResult, error)
}

func (s *stubClassifier) Classify(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
	return s.fn(ctx, emailText)
}

type stubHealthChecker struct {
	status *core.HealthStatus
	err    error
}

func (s *stubHealthChecker) CheckHealth(ctx context.Context) (*core.HealthStatus, error) {
	return s.status, s.err
}

type recordingPresenter struct {
	mu  sync.Mutex
	vms []ViewModel
}

func (p *recordingPresenter) Present(vm ViewModel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vms = append(p.vms, vm)
}

func (p *recordingPresenter) rendered() []ViewModel {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ViewModel, len(p.vms))
	copy(out, p.vms)
	return out
}

func (p *recordingPresenter) last() ViewModel {
	vms := p.rendered()
	if len(vms) == 0 {
		return ViewModel{}
	}
	return vms[len(vms)-1]
}

func newTestWidget(classifier core.Classifier, health core.HealthChecker) (*Widget, *recordingPresenter) {
	logger := zap.NewNop()
	service := core.NewAnalysisService(classifier, nil, nil, logger, false, 0)
	fallback := heuristic.NewClassifier(utils.NewTextProcessor(logger), logger)
	presenter := &recordingPresenter{}
	return New(service, fallback, health, presenter, logger), presenter
}

func TestAnalyzeEmptyInputSkipsNetwork(t *testing.T) {
	classified := false
	classifier := &stubClassifier{fn: func(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
		classified = true
		return nil, errors.New("should not be called")
	}}
	w, presenter := newTestWidget(classifier, nil)

	w.Analyze(context.Background(), "   \n\t  ")

	assert.False(t, classified, "empty input must not reach the classifier")
	require.Len(t, presenter.rendered(), 1)
	assert.Equal(t, IndicatorMedium, presenter.last().IndicatorOffset)
	assert.Equal(t, PhaseEmptyInput, w.State().Phase)
}

func TestAnalyzeRendersLoadingThenResult(t *testing.T) {
	result := &core.AnalysisResult{
		Prediction: 1,
		Confidence: core.Confidence{Phishing: 0.876, Safe: 0.124},
		RiskLevel:  core.RiskHigh,
	}
	classifier := &stubClassifier{fn: func(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
		return result, nil
	}}
	w, presenter := newTestWidget(classifier, nil)

	w.Analyze(context.Background(), "dear customer, act now")

	vms := presenter.rendered()
	require.Len(t, vms, 2)
	assert.Equal(t, IndicatorMedium, vms[0].IndicatorOffset)
	assert.Contains(t, vms[0].Message, "Analyzing")
	assert.Equal(t, IndicatorHigh, vms[1].IndicatorOffset)
	assert.Contains(t, vms[1].Message, "88%")
	assert.Equal(t, PhaseResultPhishing, w.State().Phase)
}

func TestAnalyzeTransportFailureRunsFallback(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantOffset int
	}{
		{"phishing keywords", "please click here to verify, urgent!", IndicatorHigh},
		{"benign keywords", "let's schedule a lunch meeting", IndicatorLow},
		{"unknown content", "random unrelated text", IndicatorMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &stubClassifier{fn: func(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
				return nil, &core.TransportError{Op: "predict", Err: errors.New("connection refused")}
			}}
			w, presenter := newTestWidget(classifier, nil)

			w.Analyze(context.Background(), tt.text)

			// Loading, then the error render, then the fallback render
			// that is left visible.
			vms := presenter.rendered()
			require.Len(t, vms, 3)
			assert.Contains(t, vms[1].Message, "Analysis failed")
			assert.Equal(t, tt.wantOffset, vms[2].IndicatorOffset)
			assert.Contains(t, vms[2].Message, "(offline analysis)")
			assert.True(t, w.State().Offline)
		})
	}
}

func TestAnalyzeServiceErrorDoesNotRunFallback(t *testing.T) {
	classifier := &stubClassifier{fn: func(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
		return nil, &core.ServiceError{Op: "predict", StatusCode: 500, Err: errors.New("internal error")}
	}}
	w, presenter := newTestWidget(classifier, nil)

	w.Analyze(context.Background(), "please click here to verify, urgent!")

	vms := presenter.rendered()
	require.Len(t, vms, 2)
	assert.Contains(t, vms[1].Message, "Analysis failed")
	assert.Equal(t, PhaseError, w.State().Phase)
	assert.False(t, w.State().Offline)
}

func TestOverlappingAnalysesLastResolutionWins(t *testing.T) {
	resultA := &core.AnalysisResult{Prediction: 1, Confidence: core.Confidence{Phishing: 0.9}, RiskLevel: core.RiskHigh}
	resultB := &core.AnalysisResult{Prediction: 0, Confidence: core.Confidence{Safe: 0.8}, RiskLevel: core.RiskLow}

	started := make(chan string, 2)
	release := map[string]chan struct{}{
		"email a": make(chan struct{}),
		"email b": make(chan struct{}),
	}
	results := map[string]*core.AnalysisResult{
		"email a": resultA,
		"email b": resultB,
	}

	classifier := &stubClassifier{fn: func(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
		started <- emailText
		<-release[emailText]
		return results[emailText], nil
	}}
	w, presenter := newTestWidget(classifier, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.Analyze(context.Background(), "email a")
	}()
	go func() {
		defer wg.Done()
		w.Analyze(context.Background(), "email b")
	}()

	// Both analyses in flight
	<-started
	<-started

	// Resolve B first, then A: the widget keeps whatever resolved last
	close(release["email b"])
	require.Eventually(t, func() bool {
		return presenter.last().IndicatorOffset == IndicatorLow
	}, time.Second, 5*time.Millisecond)

	close(release["email a"])
	wg.Wait()

	assert.Equal(t, PhaseResultPhishing, w.State().Phase)
	assert.Equal(t, IndicatorHigh, presenter.last().IndicatorOffset)
}

func TestProbeHealthNeverTouchesWidgetState(t *testing.T) {
	classifier := &stubClassifier{fn: func(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
		return &core.AnalysisResult{Prediction: 0, RiskLevel: core.RiskLow, Confidence: core.Confidence{Safe: 0.9}}, nil
	}}

	tests := []struct {
		name   string
		health core.HealthChecker
	}{
		{"probe fails", &stubHealthChecker{err: &core.TransportError{Op: "health", Err: errors.New("refused")}}},
		{"probe reports unhealthy", &stubHealthChecker{status: &core.HealthStatus{Status: "degraded"}}},
		{"no health checker", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, presenter := newTestWidget(classifier, tt.health)

			w.ProbeHealth(context.Background())

			assert.Equal(t, PhaseIdle, w.State().Phase)
			assert.Empty(t, presenter.rendered())

			// A failed probe never blocks a later analyze
			w.Analyze(context.Background(), "quarterly report attached")
			assert.Equal(t, PhaseResultSafe, w.State().Phase)
		})
	}
}
