package telegram

import (
	"testing"
	"time"

	"github.com/skalibog/bspa/pkg/models"
	"github.com/stretchr/testify/assert"
)

func testReport() models.Report {
	return models.Report{
		Symbol:       "BTCUSDT",
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		CurrentPrice: 65_432.10,
		Volume24h:    1_234_567,
		Signal: models.SignalResult{
			Window:        models.Window1h,
			PercentChange: 3.4,
			Message:       "умеренный рост, активный рынок",
			BuySellRatio:  1.8,
			TotalVolume:   60_000,
		},
		Changes: []models.PriceChange{
			{Window: models.Window15m, Percent: 0.8},
			{Window: models.Window1h, Percent: 3.4},
		},
		Windows: []models.WindowStats{
			{Window: models.Window15m, VolumeWindow: models.VolumeWindow{BuyValue: 9000, SellValue: 5000}, Estimated: true},
			{Window: models.Window1h, VolumeWindow: models.VolumeWindow{BuyValue: 40_000, SellValue: 20_000}},
		},
		Zones: []models.BuyZone{
			{Price: 65_000, Quantity: 1.5, Value: 97_500},
			{Price: 64_000, Quantity: 1.0, Value: 64_000},
		},
		TrendNote: "цена держится выше скользящей средней",
	}
}

func TestFormatReportContainsSignalAndPrice(t *testing.T) {
	text := FormatReport(testReport())

	assert.Contains(t, text, "BTCUSDT")
	assert.Contains(t, text, "умеренный рост")
	assert.Contains(t, text, "65432.1")
	assert.Contains(t, text, "🟢")
}

func TestFormatReportMarksEstimatedWindows(t *testing.T) {
	text := FormatReport(testReport())

	assert.Contains(t, text, "≈")
}

func TestFormatReportShowsSignedChanges(t *testing.T) {
	text := FormatReport(testReport())

	assert.Contains(t, text, "+3.4%")
}

func TestFormatReportNegativeSignalIcon(t *testing.T) {
	report := testReport()
	report.Signal.PercentChange = -5.1

	assert.Contains(t, FormatReport(report), "🔴")
}

func TestFormatZonesSyntheticFallbackText(t *testing.T) {
	report := testReport()
	report.SyntheticZones = true

	text := FormatZones(report)

	assert.Contains(t, text, "Значимые зоны покупок не найдены")
}

func TestFormatReportIncludesTrendNote(t *testing.T) {
	assert.Contains(t, FormatReport(testReport()), "скользящей средней")
}
