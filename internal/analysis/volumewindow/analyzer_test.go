package volumewindow

import (
	"math"
	"testing"
	"time"

	"github.com/skalibog/bspa/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestAggregateSplitsSides(t *testing.T) {
	now := time.Now().UnixMilli()
	trades := []models.Trade{
		{Timestamp: now, Price: 10.00, Quantity: 5, IsSellInitiated: false},
		{Timestamp: now - 1000, Price: 9.50, Quantity: 3, IsSellInitiated: true},
	}

	window := Aggregate(trades, now-5000, now)

	assert.Equal(t, 50.0, window.BuyValue)
	assert.Equal(t, 28.5, window.SellValue)
	assert.Equal(t, 5.0, window.BuyQuantity)
	assert.Equal(t, 3.0, window.SellQuantity)
	assert.Equal(t, 2, window.TradeCount)
}

func TestAggregateEmptyInputIsZeroWindow(t *testing.T) {
	now := time.Now().UnixMilli()

	window := Aggregate(nil, now-1000, now)

	assert.Zero(t, window.BuyValue)
	assert.Zero(t, window.SellValue)
	assert.Zero(t, window.BuyQuantity)
	assert.Zero(t, window.SellQuantity)
}

func TestAggregateSkipsInvalidAndFutureTrades(t *testing.T) {
	now := time.Now().UnixMilli()
	trades := []models.Trade{
		{Timestamp: 0, Price: 10, Quantity: 1},                    // нет метки времени
		{Timestamp: now, Price: math.NaN(), Quantity: 1},          // нечисловая цена
		{Timestamp: now, Price: 10, Quantity: -1},                 // отрицательное количество
		{Timestamp: now + 60000, Price: 10, Quantity: 1},          // сделка из будущего
		{Timestamp: now - 10_000_000, Price: 10, Quantity: 1},     // старше окна
		{Timestamp: now - 1000, Price: 10, Quantity: 2},           // единственная валидная
	}

	window := Aggregate(trades, now-5000, now)

	assert.Equal(t, 20.0, window.BuyValue)
	assert.Equal(t, 1, window.TradeCount)
}

func TestAggregateNonNegativeTotals(t *testing.T) {
	now := time.Now().UnixMilli()
	trades := []models.Trade{
		{Timestamp: now - 100, Price: 0, Quantity: 0},
		{Timestamp: now - 200, Price: 1.5, Quantity: 2.5, IsSellInitiated: true},
		{Timestamp: now - 300, Price: 3.1, Quantity: 0.7},
	}

	window := Aggregate(trades, 0, now)

	assert.GreaterOrEqual(t, window.BuyValue, 0.0)
	assert.GreaterOrEqual(t, window.SellValue, 0.0)
	assert.GreaterOrEqual(t, window.BuyQuantity, 0.0)
	assert.GreaterOrEqual(t, window.SellQuantity, 0.0)
}

func TestAggregateIdempotent(t *testing.T) {
	now := time.Now().UnixMilli()
	trades := []models.Trade{
		{Timestamp: now - 100, Price: 2, Quantity: 3},
		{Timestamp: now - 200, Price: 4, Quantity: 5, IsSellInitiated: true},
	}

	first := Aggregate(trades, now-1000, now)
	second := Aggregate(trades, now-1000, now)

	assert.Equal(t, first, second)
}

func TestAggregateWiderWindowDominates(t *testing.T) {
	// Широкое окно включает узкое: итоги не могут быть меньше
	now := time.Now().UnixMilli()
	trades := []models.Trade{
		{Timestamp: now - 3_000_000, Price: 10, Quantity: 1},
		{Timestamp: now - 600_000, Price: 11, Quantity: 2, IsSellInitiated: true},
		{Timestamp: now - 30_000, Price: 12, Quantity: 3},
	}

	wide := Aggregate(trades, now-3600_000, now)
	narrow := Aggregate(trades, now-900_000, now)

	assert.GreaterOrEqual(t, wide.BuyValue, narrow.BuyValue)
	assert.GreaterOrEqual(t, wide.SellValue, narrow.SellValue)
	assert.GreaterOrEqual(t, wide.BuyQuantity, narrow.BuyQuantity)
	assert.GreaterOrEqual(t, wide.SellQuantity, narrow.SellQuantity)
}
