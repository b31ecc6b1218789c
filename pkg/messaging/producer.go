package messaging

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"fulfillment/pkg/cart/model"
	"fulfillment/pkg/metrics"
)

// Producer publishes orders to the warehouse queue. The channel runs in
// confirm mode with mandatory publishing; confirms and returns are drained
// asynchronously and only logged, so Publish never waits for the broker's
// verdict. A failed publish is never retried.
type Producer struct {
	conn     *Connection
	topology Topology
	metrics  *metrics.Messaging

	mu      sync.Mutex
	channel *amqp.Channel
}

func NewProducer(conn *Connection, topology Topology, m *metrics.Messaging) (*Producer, error) {
	p := &Producer{
		conn:     conn,
		topology: topology,
		metrics:  m,
	}

	if _, err := p.ensureChannel(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Producer) Publish(order model.Order) error {
	channel, err := p.ensureChannel()
	if err != nil {
		return err
	}

	body, err := json.Marshal(NewOrderMessage(order))
	if err != nil {
		return errors.Wrap(err, "cannot marshal order message")
	}

	err = channel.Publish(
		p.topology.Exchange,
		p.topology.RoutingKey,
		true,  // mandatory: unroutable messages come back on NotifyReturn
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Body:         body,
		},
	)
	if err != nil {
		p.dropChannel(channel)
		return errors.Wrapf(err, "cannot publish order %d", order.ID)
	}

	p.metrics.Published.Inc()
	log.WithFields(log.Fields{
		"orderID": order.ID,
		"cartID":  order.ShoppingCartID,
		"items":   len(order.Items),
	}).Info("order sent to warehouse queue")

	return nil
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return nil
	}
	channel := p.channel
	p.channel = nil
	return channel.Close()
}

func (p *Producer) ensureChannel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil && !p.channel.IsClosed() {
		return p.channel, nil
	}

	channel, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := p.topology.Declare(channel); err != nil {
		_ = channel.Close()
		return nil, err
	}

	if err := channel.Confirm(false); err != nil {
		_ = channel.Close()
		return nil, errors.Wrap(err, "cannot put channel into confirm mode")
	}

	go p.drainConfirms(channel.NotifyPublish(make(chan amqp.Confirmation, 16)))
	go p.drainReturns(channel.NotifyReturn(make(chan amqp.Return, 16)))

	p.channel = channel
	return channel, nil
}

func (p *Producer) dropChannel(channel *amqp.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == channel {
		p.channel = nil
	}
}

// drainConfirms logs broker confirms. They are advisory only: by the time a
// nack arrives the publish has already been reported as attempted.
func (p *Producer) drainConfirms(confirms <-chan amqp.Confirmation) {
	for confirm := range confirms {
		if confirm.Ack {
			p.metrics.Confirmed.Inc()
			log.WithField("deliveryTag", confirm.DeliveryTag).Debug("message confirmed by broker")
		} else {
			log.WithField("deliveryTag", confirm.DeliveryTag).Error("message not confirmed by broker")
		}
	}
}

// drainReturns logs messages the broker could not route to any queue.
func (p *Producer) drainReturns(returns <-chan amqp.Return) {
	for ret := range returns {
		p.metrics.Returned.Inc()
		log.WithFields(log.Fields{
			"exchange":   ret.Exchange,
			"routingKey": ret.RoutingKey,
			"replyCode":  ret.ReplyCode,
			"replyText":  ret.ReplyText,
		}).Error("message returned as unroutable")
	}
}
