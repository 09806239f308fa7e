package di

import (
	"os"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-threat-widget/internal/adapters/term"
	"github.com/mikey/email-threat-widget/internal/config"
	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/factory"
	"github.com/mikey/email-threat-widget/internal/heuristic"
	"github.com/mikey/email-threat-widget/internal/logging"
	"github.com/mikey/email-threat-widget/internal/ports"
	"github.com/mikey/email-threat-widget/internal/utils"
	"github.com/mikey/email-threat-widget/internal/widget"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register the health checker. Only the remote predictor has a health
	// endpoint; other providers leave the probe disabled.
	if err := container.Provide(func(classifier core.Classifier) core.HealthChecker {
		if checker, ok := classifier.(core.HealthChecker); ok {
			return checker
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register cache TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register result notifier
	if err := container.Provide(func(f *factory.NotifierFactory) (core.ResultNotifier, error) {
		return f.CreateResultNotifier()
	}); err != nil {
		return nil, err
	}

	// Register analysis service
	if err := container.Provide(core.NewAnalysisService); err != nil {
		return nil, err
	}

	// Register offline heuristic
	if err := container.Provide(heuristic.NewClassifier); err != nil {
		return nil, err
	}

	// Register terminal presenter
	if err := container.Provide(func() widget.Presenter {
		return term.NewPresenter(os.Stdout)
	}); err != nil {
		return nil, err
	}

	// Register widget
	if err := container.Provide(widget.New); err != nil {
		return nil, err
	}

	// Register terminal frontend
	if err := container.Provide(func(w *widget.Widget, logger *zap.Logger) ports.Frontend {
		return term.NewFrontend(w, os.Stdin, os.Stdout, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
