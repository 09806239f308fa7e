package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/email-threat-widget/internal/config"
	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/utils"
	"go.uber.org/zap"
)

// Factory creates new instances of the Bedrock classifier
type Factory struct {
	cfg           config.BedrockConfig
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewFactory creates a new factory for Bedrock classifiers
func NewFactory(cfg config.BedrockConfig, textProcessor *utils.TextProcessor, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:           cfg,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// CreateClassifier creates a new Bedrock classifier
func (f *Factory) CreateClassifier() (core.Classifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(f.cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)

	return NewClient(
		client,
		f.cfg.ModelID,
		f.cfg.MaxTokens,
		f.cfg.Temperature,
		f.cfg.TopP,
		f.cfg.MaxTextSize,
		f.textProcessor,
		f.logger,
	), nil
}
