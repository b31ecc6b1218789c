package warehouse

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"fulfillment/pkg/messaging"
)

// OrderProcessor validates incoming order messages and feeds the statistics.
// A message is validated in full before any counter is touched, so a
// redelivered message never leaves partial per-item totals behind. Rejected
// messages are requeued without bound; there is no dead-letter path.
type OrderProcessor struct {
	statistics *Statistics
}

func NewOrderProcessor(statistics *Statistics) *OrderProcessor {
	return &OrderProcessor{statistics: statistics}
}

var _ messaging.Handler = (*OrderProcessor)(nil)

func (p *OrderProcessor) Handle(_ context.Context, body []byte) messaging.Action {
	var msg messaging.OrderMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		log.WithError(err).Error("cannot decode order message, requeueing")
		return messaging.Requeue
	}

	if msg.OrderID == nil {
		log.Error("order message has no order_id, requeueing")
		return messaging.Requeue
	}

	logger := log.WithFields(log.Fields{
		"orderID":    *msg.OrderID,
		"cartID":     msg.ShoppingCartID,
		"customerID": msg.CustomerID,
		"items":      len(msg.Items),
	})
	logger.Info("received order from queue")

	for _, item := range msg.Items {
		if item.ProductID == nil || item.Quantity == nil {
			logger.Error("order contains an invalid item, requeueing")
			return messaging.Requeue
		}
	}

	if len(msg.Items) == 0 {
		logger.Warn("order has no items, acknowledging anyway")
	}

	for _, item := range msg.Items {
		p.statistics.RecordProduct(*msg.OrderID, *item.ProductID, *item.Quantity)
	}
	p.statistics.IncrementOrderCount()

	logger.Info("order processed")
	return messaging.Ack
}
