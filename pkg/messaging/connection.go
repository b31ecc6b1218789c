package messaging

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// Connection wraps a single AMQP connection and redials it with exponential
// backoff when the broker drops it. Channels are always opened through it.
type Connection struct {
	uri string

	mu     sync.Mutex
	conn   *amqp.Connection
	closed bool
}

func Dial(uri string) (*Connection, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to AMQP broker")
	}

	log.Info("connected to AMQP broker")
	return &Connection{uri: uri, conn: conn}, nil
}

// Channel opens a channel, reconnecting first if the underlying connection
// has been lost.
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("connection is closed")
	}

	if c.conn == nil || c.conn.IsClosed() {
		if err := c.reconnect(); err != nil {
			return nil, err
		}
	}

	channel, err := c.conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "cannot open AMQP channel")
	}
	return channel, nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}

// reconnect is called with c.mu held.
func (c *Connection) reconnect() error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		conn, err := amqp.Dial(c.uri)
		if err != nil {
			log.WithError(err).Error("cannot reconnect to AMQP broker, retrying")
			return err
		}
		c.conn = conn
		log.Info("reconnected to AMQP broker")
		return nil
	}, policy)
}
