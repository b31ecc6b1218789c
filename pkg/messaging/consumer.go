package messaging

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"fulfillment/pkg/metrics"
)

// Action is the terminal decision for a delivery. There is no reject-without-
// requeue path: a message is either done or redelivered.
type Action int

const (
	Ack Action = iota
	Requeue
)

// Handler processes one message body and decides its fate.
type Handler interface {
	Handle(ctx context.Context, body []byte) Action
}

type ConsumerConfig struct {
	Workers  int
	Prefetch int
}

// Consumer pulls deliveries from the warehouse queue with manual
// acknowledgements and fans them out to a pool of workers. Each delivery goes
// to exactly one worker. When the broker drops the channel the consumer
// reconnects and resumes until the context is cancelled.
type Consumer struct {
	conn     *Connection
	topology Topology
	config   ConsumerConfig
	handler  Handler
	metrics  *metrics.Messaging
}

func NewConsumer(conn *Connection, topology Topology, config ConsumerConfig, handler Handler, m *metrics.Messaging) *Consumer {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Prefetch <= 0 {
		config.Prefetch = config.Workers
	}

	return &Consumer{
		conn:     conn,
		topology: topology,
		config:   config,
		handler:  handler,
		metrics:  m,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := c.consume(ctx); err != nil {
			log.WithError(err).Error("consumer stopped, reconnecting")
		}

		select {
		case <-ctx.Done():
			log.Info("stopping warehouse consumer")
			return nil
		case <-time.After(time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	channel, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()

	if err := c.topology.Declare(channel); err != nil {
		return err
	}

	if err := channel.Qos(c.config.Prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := channel.Consume(
		c.topology.Queue,
		"",    // consumer tag
		false, // autoAck: acks are issued by the workers
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"queue":   c.topology.Queue,
		"workers": c.config.Workers,
	}).Info("consuming from warehouse queue")

	var wg sync.WaitGroup
	for i := 0; i < c.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for delivery := range deliveries {
				c.process(ctx, delivery)
			}
		}()
	}

	// The delivery channel closes when the broker channel dies; cancelling the
	// context closes the channel explicitly so the workers drain and exit.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		_ = channel.Close()
		<-done
		return nil
	case <-done:
		return nil
	}
}

func (c *Consumer) process(ctx context.Context, delivery amqp.Delivery) {
	c.metrics.Consumed.Inc()

	switch c.handler.Handle(ctx, delivery.Body) {
	case Ack:
		if err := delivery.Ack(false); err != nil {
			// The broker redelivers unacked messages on disconnect.
			log.WithError(err).Error("cannot ack message")
			return
		}
		c.metrics.Acked.Inc()
	case Requeue:
		if err := delivery.Nack(false, true); err != nil {
			log.WithError(err).Error("cannot nack message")
			return
		}
		c.metrics.Requeued.Inc()
	}
}
