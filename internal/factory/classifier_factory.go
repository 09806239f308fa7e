package factory

import (
	"fmt"
	"time"

	"github.com/mikey/email-threat-widget/internal/adapters/bedrock"
	"github.com/mikey/email-threat-widget/internal/adapters/gemini"
	"github.com/mikey/email-threat-widget/internal/adapters/openai"
	"github.com/mikey/email-threat-widget/internal/adapters/predictor"
	"github.com/mikey/email-threat-widget/internal/config"
	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/heuristic"
	"github.com/mikey/email-threat-widget/internal/utils"
	"go.uber.org/zap"
)

// ClassifierFactory creates classifier backends
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a classifier based on the configuration. The
// default provider is the remote prediction service; the LLM providers and
// the offline heuristic can stand in when it is not deployed.
func (f *ClassifierFactory) CreateClassifier() (core.Classifier, error) {
	providerConfig := f.cfg.GetClassifier()

	switch providerConfig.Provider {
	case "remote":
		svc := f.cfg.GetService()
		timeout, err := time.ParseDuration(svc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid service timeout: %w", err)
		}
		return predictor.NewClient(svc.BaseURL, timeout, f.logger)
	case "openai":
		return openai.NewFactory(f.cfg.GetOpenAI(), f.textProcessor, f.logger).CreateClassifier()
	case "gemini":
		return gemini.NewFactory(f.cfg.GetGemini(), f.textProcessor, f.logger).CreateClassifier()
	case "bedrock":
		return bedrock.NewFactory(f.cfg.GetBedrock(), f.textProcessor, f.logger).CreateClassifier()
	case "offline":
		return heuristic.NewClassifier(f.textProcessor, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", providerConfig.Provider)
	}
}
