package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// ActivityQueue receives every activity event the service publishes.
const ActivityQueue = "activity_queue"

// ErrNoChannel is returned when the client has no open channel.
var ErrNoChannel = errors.New("RabbitMQ channel is not available")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // guards channel; amqp channels are not safe for concurrent publishing
	log     *logrus.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, sets up a channel and declares the activity queue.
func NewClient(cfg Config, log *logrus.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareActivityQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Infof("RabbitMQ client connected and %s declared", ActivityQueue)

	return &Client{
		conn:    conn,
		channel: ch,
		log:     log,
	}, nil
}

func declareActivityQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		ActivityQueue, // name
		true,          // durable (persists messages across broker restarts)
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", ActivityQueue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		c.conn = nil
	}
	return errors.Join(errs...)
}

// Publish sends payload as a persistent JSON message on the activity queue.
// The event name travels in the message Type.
func (c *Client) Publish(eventType string, payload interface{}) error {
	if c == nil {
		return ErrNoChannel
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event to JSON: %w", eventType, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return ErrNoChannel
	}

	err = c.channel.Publish(
		"",            // exchange: default exchange
		ActivityQueue, // routing key: the queue name
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	c.log.Debugf(" [x] Sent %s event: %s", eventType, body)
	return nil
}

// ConsumeActivityEvents starts a goroutine that feeds every message on the
// activity queue to messageHandler. Messages are acked on success and
// requeued once on failure.
func (c *Client) ConsumeActivityEvents(messageHandler func(msg amqp.Delivery) error) error {
	if c == nil {
		return ErrNoChannel
	}

	c.mu.Lock()
	if c.channel == nil {
		c.mu.Unlock()
		return ErrNoChannel
	}
	queue, err := declareActivityQueue(c.channel)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack: messages are acknowledged manually
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Infof(" [*] Waiting for activity events on %s", queue.Name)

	go func() {
		for msg := range msgs {
			HandleDelivery(msg, messageHandler, c.log)
		}
	}()

	return nil
}

// Acknowledger is the part of amqp.Delivery that settles a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// HandleDelivery runs handler on msg and settles it. A message that already
// failed once (Redelivered) is dropped instead of requeued.
func HandleDelivery(msg amqp.Delivery, handler func(amqp.Delivery) error, log *logrus.Logger) {
	settle(msg, msg.Redelivered, handler(msg), msg.DeliveryTag, log)
}

func settle(ack Acknowledger, redelivered bool, handlerErr error, tag uint64, log *logrus.Logger) {
	if handlerErr != nil {
		log.WithError(handlerErr).Warnf("Error processing message %d", tag)
		if err := ack.Nack(false, !redelivered); err != nil {
			log.WithError(err).Errorf("Error nacking message %d", tag)
		}
		return
	}
	if err := ack.Ack(false); err != nil {
		log.WithError(err).Errorf("Error acking message %d", tag)
	}
}

// Event is a decoded activity message.
type Event struct {
	Type      string
	Timestamp time.Time
	Payload   map[string]interface{}
}

// DecodeEvent parses an activity message.
func DecodeEvent(msg amqp.Delivery) (Event, error) {
	ev := Event{Type: msg.Type, Timestamp: msg.Timestamp}
	if err := json.Unmarshal(msg.Body, &ev.Payload); err != nil {
		return ev, fmt.Errorf("failed to decode %s event: %w", msg.Type, err)
	}
	return ev, nil
}

// LogActivityEvent is a message handler that records each event in the log.
func LogActivityEvent(log *logrus.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		ev, err := DecodeEvent(msg)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields(ev.Payload)).WithField("event", ev.Type).Info("Activity event received")
		return nil
	}
}
