package notify

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Client manages the RabbitMQ connection and channel
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.RWMutex
	url     string
	logger  *zap.Logger
}

// NewClient creates a new AMQP client and declares the exchange analysis
// events are published to
func NewClient(url, exchange string, logger *zap.Logger) (*Client, error) {
	client := &Client{
		url:    url,
		logger: logger,
	}

	if err := client.connect(); err != nil {
		return nil, fmt.Errorf("failed to create AMQP client: %w", err)
	}

	if err := client.channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}

	return client, nil
}

// connect establishes connection and channel
func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	c.conn = conn
	c.channel = ch

	go c.handleConnectionClose()

	c.logger.Info("AMQP client connected")
	return nil
}

// handleConnectionClose listens for connection close events
func (c *Client) handleConnectionClose() {
	closeErr := make(chan *amqp.Error)
	c.conn.NotifyClose(closeErr)

	if err := <-closeErr; err != nil {
		c.logger.Error("AMQP connection closed", zap.Error(err))
	}
}

// Channel returns the current channel
func (c *Client) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close closes the channel and connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("Failed to close AMQP channel", zap.Error(err))
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
