package aggregator

import (
	"testing"
	"time"

	"github.com/skalibog/bspa/internal/analysis"
	"github.com/skalibog/bspa/internal/config"
	"github.com/skalibog/bspa/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(config.Default().Analysis)
}

func sparseSnapshot(now int64) models.MarketSnapshot {
	// Разреженная история: десяток сделок за последний час
	var trades []models.Trade
	for i := 0; i < 10; i++ {
		trades = append(trades, models.Trade{
			Timestamp:       now - int64(i)*300_000,
			Price:           100 + float64(i),
			Quantity:        2,
			IsSellInitiated: i%2 == 1,
		})
	}
	return models.MarketSnapshot{
		Symbol:    "BTCUSDT",
		Now:       now,
		Trades:    trades,
		Book:      nil,
		Volume24h: 1_000_000,
		LastPrice: 100,
	}
}

func TestBuildReportSparseHistoryUsesEstimates(t *testing.T) {
	now := time.Now().UnixMilli()

	report, err := newTestAnalyzer().BuildReport(sparseSnapshot(now))
	require.NoError(t, err)

	// Сделок меньше минимума: каждое окно помечено как оценка
	require.Len(t, report.Windows, 4)
	for _, stats := range report.Windows {
		assert.True(t, stats.Estimated, "окно %s", stats.Window)
		assert.GreaterOrEqual(t, stats.BuyValue, 0.0)
		assert.GreaterOrEqual(t, stats.SellValue, 0.0)
	}

	assert.Len(t, report.Changes, 4)
	assert.NotEmpty(t, report.Signal.Message)
	assert.LessOrEqual(t, len(report.Zones), 3)
	assert.Equal(t, "BTCUSDT", report.Symbol)
	assert.Equal(t, 100.0, report.CurrentPrice)
}

func TestBuildReportEmptyTradesFails(t *testing.T) {
	_, err := newTestAnalyzer().BuildReport(models.MarketSnapshot{
		Symbol: "BTCUSDT",
		Now:    time.Now().UnixMilli(),
	})

	assert.ErrorIs(t, err, analysis.ErrEmptyInput)
}

func TestBuildReportFallsBackToLatestTradePrice(t *testing.T) {
	now := time.Now().UnixMilli()
	snapshot := sparseSnapshot(now)
	// Тикер недоступен: опорной становится цена свежайшей сделки
	snapshot.LastPrice = 0

	report, err := newTestAnalyzer().BuildReport(snapshot)
	require.NoError(t, err)

	assert.Equal(t, 100.0, report.CurrentPrice)
}

func TestBuildReportNoPriceAnywhereFails(t *testing.T) {
	now := time.Now().UnixMilli()
	snapshot := models.MarketSnapshot{
		Symbol: "BTCUSDT",
		Now:    now,
		Trades: []models.Trade{
			{Timestamp: now + 600_000, Price: 100, Quantity: 1}, // только будущее
		},
	}

	_, err := newTestAnalyzer().BuildReport(snapshot)

	assert.ErrorIs(t, err, analysis.ErrPrecondition)
}

func TestBuildReportChangesOrderedByWindow(t *testing.T) {
	now := time.Now().UnixMilli()

	report, err := newTestAnalyzer().BuildReport(sparseSnapshot(now))
	require.NoError(t, err)

	require.Len(t, report.Changes, len(models.Windows))
	for i, window := range models.Windows {
		assert.Equal(t, window, report.Changes[i].Window)
	}
}
