package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Messaging holds the counters for the order queue on both sides of the wire.
type Messaging struct {
	Published prometheus.Counter
	Confirmed prometheus.Counter
	Returned  prometheus.Counter

	Consumed prometheus.Counter
	Acked    prometheus.Counter
	Requeued prometheus.Counter
}

func NewMessaging(reg prometheus.Registerer) *Messaging {
	factory := promauto.With(reg)

	return &Messaging{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "order_messages_published_total",
			Help: "Order messages handed to the broker.",
		}),
		Confirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "order_messages_confirmed_total",
			Help: "Order messages confirmed as persisted by the broker.",
		}),
		Returned: factory.NewCounter(prometheus.CounterOpts{
			Name: "order_messages_returned_total",
			Help: "Order messages returned by the broker as unroutable.",
		}),
		Consumed: factory.NewCounter(prometheus.CounterOpts{
			Name: "order_messages_consumed_total",
			Help: "Order messages delivered to the warehouse consumer.",
		}),
		Acked: factory.NewCounter(prometheus.CounterOpts{
			Name: "order_messages_acked_total",
			Help: "Order messages acknowledged after successful processing.",
		}),
		Requeued: factory.NewCounter(prometheus.CounterOpts{
			Name: "order_messages_requeued_total",
			Help: "Order messages rejected and requeued for redelivery.",
		}),
	}
}
