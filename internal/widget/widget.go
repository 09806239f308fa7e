package widget

import (
	"context"
	"sync"

	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/heuristic"
	"go.uber.org/zap"
)

// Presenter writes a view model to whatever UI surface is in use
type Presenter interface {
	Present(vm ViewModel)
}

// Widget owns the analysis trigger: it validates input, drives the state
// machine, and hands each state's view model to the presenter. Overlapping
// Analyze calls are not serialized; the last one to resolve determines the
// visible state.
type Widget struct {
	service   *core.AnalysisService
	fallback  *heuristic.Classifier
	health    core.HealthChecker
	presenter Presenter
	logger    *zap.Logger

	// Guards state writes and keeps each state/render pair atomic. It is
	// not held across the network call.
	mu    sync.Mutex
	state State
}

// New creates a new widget. health may be nil when no probe is wanted.
func New(
	service *core.AnalysisService,
	fallback *heuristic.Classifier,
	health core.HealthChecker,
	presenter Presenter,
	logger *zap.Logger,
) *Widget {
	return &Widget{
		service:   service,
		fallback:  fallback,
		health:    health,
		presenter: presenter,
		logger:    logger,
		state:     State{Phase: PhaseIdle},
	}
}

// Analyze handles one user activation: empty input renders a prompt and
// issues no network call; otherwise the loading state is rendered, the
// classification runs, and the outcome is rendered. A transport failure
// renders the error state and then the offline heuristic's verdict, which
// stays visible.
func (w *Widget) Analyze(ctx context.Context, text string) {
	state := w.apply(Transition(AnalyzeClicked{Text: text}))
	if state.Phase == PhaseEmptyInput {
		return
	}

	result, err := w.service.Analyze(ctx, text)
	if err != nil {
		w.logger.Warn("Analysis failed", zap.Error(err))
		w.apply(Transition(ResponseFailed{Err: err}))
		if core.IsTransportError(err) {
			w.apply(Transition(FallbackClassified{Threat: w.fallback.ThreatLevel(text)}))
		}
		return
	}

	w.apply(Transition(ResponseReceived{Result: result}))
}

// ProbeHealth performs one advisory health probe. Failures are logged and
// swallowed; the widget state never changes.
func (w *Widget) ProbeHealth(ctx context.Context) {
	if w.health == nil {
		return
	}

	status, err := w.health.CheckHealth(ctx)
	if err != nil {
		w.logger.Warn("Health probe failed", zap.Error(err))
		return
	}
	if !status.Healthy() {
		w.logger.Warn("Prediction service reports unhealthy status",
			zap.String("status", status.Status))
		return
	}
	w.logger.Info("Prediction service is healthy", zap.String("status", status.Status))
}

// State returns the most recently rendered state
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Widget) apply(s State) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = s
	w.presenter.Present(Render(s))
	return s
}
