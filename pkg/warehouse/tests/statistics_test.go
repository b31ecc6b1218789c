package tests

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"fulfillment/pkg/warehouse"
)

func TestStatisticsRecording(t *testing.T) {
	statistics := warehouse.NewStatistics()

	statistics.RecordProduct(1000, 5, 3)
	statistics.RecordProduct(1000, 5, 2)
	statistics.RecordProduct(1001, 7, 1)
	statistics.IncrementOrderCount()
	statistics.IncrementOrderCount()

	assert.Equal(t, int64(2), statistics.TotalOrders())
	assert.Equal(t, int64(5), statistics.ProductQuantity(5))
	assert.Equal(t, int64(1), statistics.ProductQuantity(7))
	assert.Equal(t, int64(0), statistics.ProductQuantity(42))
	assert.Equal(t, 2, statistics.UniqueProducts())
	assert.Equal(t, int64(6), statistics.TotalQuantity())
}

func TestStatisticsConcurrentUpdates(t *testing.T) {
	statistics := warehouse.NewStatistics()

	const workers = 16
	const perWorker = 500

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				statistics.RecordProduct(1000, 5, 1)
				statistics.IncrementOrderCount()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers*perWorker), statistics.ProductQuantity(5))
	assert.Equal(t, int64(workers*perWorker), statistics.TotalOrders())
}

func TestStatisticsReset(t *testing.T) {
	statistics := warehouse.NewStatistics()

	statistics.RecordProduct(1000, 5, 3)
	statistics.IncrementOrderCount()
	statistics.Reset()

	assert.Equal(t, int64(0), statistics.TotalOrders())
	assert.Equal(t, int64(0), statistics.ProductQuantity(5))
	assert.Equal(t, 0, statistics.UniqueProducts())
}
