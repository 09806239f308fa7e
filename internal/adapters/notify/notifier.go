package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/email-threat-widget/internal/core"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Routing key for completed analyses
const RoutingKeyEmailAnalyzed = "email.analyzed"

// AMQPNotifier publishes analysis events to a RabbitMQ exchange. It
// implements core.ResultNotifier.
type AMQPNotifier struct {
	client   *Client
	exchange string
	logger   *zap.Logger
}

// NewAMQPNotifier creates a new AMQP-backed result notifier
func NewAMQPNotifier(client *Client, exchange string, logger *zap.Logger) *AMQPNotifier {
	return &AMQPNotifier{
		client:   client,
		exchange: exchange,
		logger:   logger,
	}
}

// NotifyAnalyzed publishes one event for a completed analysis
func (n *AMQPNotifier) NotifyAnalyzed(ctx context.Context, event *core.AnalysisEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis event: %w", err)
	}

	// Publishing must not hang an analysis
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	err = n.client.Channel().PublishWithContext(
		ctx,
		n.exchange,
		RoutingKeyEmailAnalyzed,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish analysis event to exchange %q: %w", n.exchange, err)
	}

	n.logger.Debug("Analysis event published",
		zap.String("exchange", n.exchange),
		zap.String("routing_key", RoutingKeyEmailAnalyzed),
		zap.String("processing_id", event.ProcessingID))

	return nil
}

// Close closes the underlying AMQP client
func (n *AMQPNotifier) Close() error {
	return n.client.Close()
}

// NoopNotifier discards analysis events. Used when notifications are
// disabled.
type NoopNotifier struct{}

// NewNoopNotifier creates a notifier that does nothing
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// NotifyAnalyzed discards the event
func (n *NoopNotifier) NotifyAnalyzed(ctx context.Context, event *core.AnalysisEvent) error {
	return nil
}
