package factory

import (
	"fmt"

	"github.com/mikey/email-threat-widget/internal/adapters/notify"
	"github.com/mikey/email-threat-widget/internal/config"
	"github.com/mikey/email-threat-widget/internal/core"
	"go.uber.org/zap"
)

// NotifierFactory creates result notifiers based on configuration
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResultNotifier creates a result notifier. Notifications are off by
// default; the no-op notifier keeps the analysis pipeline unconditional.
func (f *NotifierFactory) CreateResultNotifier() (core.ResultNotifier, error) {
	notifyConfig := f.cfg.GetNotify()
	if !notifyConfig.Enabled {
		return notify.NewNoopNotifier(), nil
	}

	client, err := notify.NewClient(notifyConfig.URL, notifyConfig.Exchange, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AMQP client: %w", err)
	}

	return notify.NewAMQPNotifier(client, notifyConfig.Exchange, f.logger), nil
}
