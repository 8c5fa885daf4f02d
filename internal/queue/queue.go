package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func New(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) EnsureExchange(name string, kind string) error {
	if kind == "" {
		kind = amqp.ExchangeTopic
	}
	return c.ch.ExchangeDeclare(name, kind, true, false, false, false, nil)
}

func (c *Client) EnsureQueue(name string, args amqp.Table) (amqp.Queue, error) {
	return c.ch.QueueDeclare(name, true, false, false, false, args)
}

func (c *Client) BindQueue(queueName, exchange, routingKey string) error {
	return c.ch.QueueBind(queueName, routingKey, exchange, false, nil)
}

// Topology describes a durable consumer queue bound to a topic exchange,
// with rejected messages dead-lettered to "<queue>.dlq".
type Topology struct {
	Exchange   string
	Queue      string
	BindingKey string
}

func (t Topology) DeadLetterExchange() string { return t.Queue + ".dead" }
func (t Topology) DeadLetterQueue() string    { return t.Queue + ".dlq" }

// DeclareTopology declares the exchanges, queues and bindings of t.
func (c *Client) DeclareTopology(t Topology) error {
	if err := c.EnsureExchange(t.Exchange, amqp.ExchangeTopic); err != nil {
		return err
	}
	if err := c.EnsureExchange(t.DeadLetterExchange(), amqp.ExchangeDirect); err != nil {
		return err
	}
	if _, err := c.EnsureQueue(t.DeadLetterQueue(), nil); err != nil {
		return err
	}
	if err := c.BindQueue(t.DeadLetterQueue(), t.DeadLetterExchange(), deadRoutingKey); err != nil {
		return err
	}
	_, err := c.EnsureQueue(t.Queue, amqp.Table{
		"x-dead-letter-exchange":    t.DeadLetterExchange(),
		"x-dead-letter-routing-key": deadRoutingKey,
	})
	if err != nil {
		return err
	}
	return c.BindQueue(t.Queue, t.Exchange, t.BindingKey)
}

const deadRoutingKey = "dead"

func (c *Client) PublishJSON(ctx context.Context, exchange, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	})
}
