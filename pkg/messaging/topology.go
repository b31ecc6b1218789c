package messaging

import (
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// Topology names the single durable queue, the direct exchange and the fixed
// routing key connecting the cart service to the warehouse.
type Topology struct {
	Queue      string
	Exchange   string
	RoutingKey string
}

// Declare sets up the queue, the exchange and the binding. It is idempotent
// and both the producer and the consumer call it on startup.
func (t Topology) Declare(channel *amqp.Channel) error {
	if _, err := channel.QueueDeclare(
		t.Queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return errors.Wrapf(err, "cannot declare queue %q", t.Queue)
	}

	if err := channel.ExchangeDeclare(
		t.Exchange,
		"direct",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		return errors.Wrapf(err, "cannot declare exchange %q", t.Exchange)
	}

	if err := channel.QueueBind(t.Queue, t.RoutingKey, t.Exchange, false, nil); err != nil {
		return errors.Wrapf(err, "cannot bind queue %q to exchange %q", t.Queue, t.Exchange)
	}

	log.WithFields(log.Fields{
		"queue":      t.Queue,
		"exchange":   t.Exchange,
		"routingKey": t.RoutingKey,
	}).Info("AMQP topology declared")

	return nil
}
