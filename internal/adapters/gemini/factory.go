package gemini

import (
	"github.com/mikey/email-threat-widget/internal/config"
	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/utils"
	"go.uber.org/zap"
)

// Factory creates new instances of the Gemini classifier
type Factory struct {
	cfg           config.GeminiConfig
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewFactory creates a new factory for Gemini classifiers
func NewFactory(cfg config.GeminiConfig, textProcessor *utils.TextProcessor, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:           cfg,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// CreateClassifier creates a new Gemini classifier
func (f *Factory) CreateClassifier() (core.Classifier, error) {
	return NewClient(
		f.cfg.APIKey,
		f.cfg.ModelName,
		f.cfg.MaxTokens,
		f.cfg.Temperature,
		f.cfg.TopP,
		f.cfg.MaxTextSize,
		f.textProcessor,
		f.logger,
	)
}
