package warehouse

import (
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Statistics keeps process-wide running totals over processed orders. All
// counters are independent atomics so concurrent workers never contend on a
// shared lock; per-product counters are created on first use.
type Statistics struct {
	totalOrders       atomic.Int64
	productQuantities sync.Map // productID int64 -> *atomic.Int64
}

func NewStatistics() *Statistics {
	return &Statistics{}
}

// RecordProduct adds quantity to the running total for productID.
func (s *Statistics) RecordProduct(orderID, productID, quantity int64) {
	counter, _ := s.productQuantities.LoadOrStore(productID, &atomic.Int64{})
	counter.(*atomic.Int64).Add(quantity)

	log.WithFields(log.Fields{
		"orderID":   orderID,
		"productID": productID,
		"quantity":  quantity,
	}).Debug("recorded product")
}

func (s *Statistics) IncrementOrderCount() {
	s.totalOrders.Add(1)
}

func (s *Statistics) TotalOrders() int64 {
	return s.totalOrders.Load()
}

func (s *Statistics) ProductQuantity(productID int64) int64 {
	counter, ok := s.productQuantities.Load(productID)
	if !ok {
		return 0
	}
	return counter.(*atomic.Int64).Load()
}

func (s *Statistics) UniqueProducts() int {
	count := 0
	s.productQuantities.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (s *Statistics) TotalQuantity() int64 {
	var total int64
	s.productQuantities.Range(func(_, v any) bool {
		total += v.(*atomic.Int64).Load()
		return true
	})
	return total
}

// Reset clears all counters. Test and ops escape hatch only.
func (s *Statistics) Reset() {
	s.totalOrders.Store(0)
	s.productQuantities.Range(func(k, _ any) bool {
		s.productQuantities.Delete(k)
		return true
	})
	log.Info("warehouse statistics reset")
}

// LogSummary reports the totals, called on shutdown.
func (s *Statistics) LogSummary() {
	log.WithFields(log.Fields{
		"totalOrders":    s.TotalOrders(),
		"uniqueProducts": s.UniqueProducts(),
		"totalQuantity":  s.TotalQuantity(),
	}).Info("warehouse statistics summary")
}
