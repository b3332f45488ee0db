package models

import (
	"time"
)

// Trade представляет одну сделку с биржи (метка времени в миллисекундах epoch)
type Trade struct {
	Timestamp int64
	Price     float64
	Quantity  float64
	// IsSellInitiated: true = тейкером был продавец (isBuyerMaker на Binance)
	IsSellInitiated bool
}

// OrderBookLevel представляет уровень стакана
type OrderBookLevel struct {
	Price    float64
	Quantity float64
}

// OrderBook представляет снапшот стакана заявок.
// Порядок уровней фидом не гарантируется.
type OrderBook struct {
	Symbol    string
	Timestamp time.Time
	Bids      []OrderBookLevel
	Asks      []OrderBookLevel
}

// Window представляет метку окна анализа
type Window string

const (
	Window15m Window = "15m"
	Window30m Window = "30m"
	Window1h  Window = "1h"
	Window4h  Window = "4h"
)

// Windows содержит все окна в порядке от короткого к длинному
var Windows = []Window{Window15m, Window30m, Window1h, Window4h}

// Duration возвращает длительность окна
func (w Window) Duration() time.Duration {
	switch w {
	case Window15m:
		return 15 * time.Minute
	case Window30m:
		return 30 * time.Minute
	case Window1h:
		return time.Hour
	case Window4h:
		return 4 * time.Hour
	}
	return 0
}

// VolumeWindow представляет разбивку объема окна на покупки и продажи
type VolumeWindow struct {
	BuyValue     float64
	SellValue    float64
	BuyQuantity  float64
	SellQuantity float64
	TradeCount   int
}

// TotalValue возвращает суммарный оборот окна в котируемой валюте
func (w VolumeWindow) TotalValue() float64 {
	return w.BuyValue + w.SellValue
}

// WindowStats представляет итог по окну с признаком источника данных
type WindowStats struct {
	Window Window
	VolumeWindow
	// Estimated: true, если фактические данные были заменены оценкой
	Estimated bool
}

// BuyZone представляет зону покупок ниже текущей цены
type BuyZone struct {
	Price    float64
	Quantity float64
	Value    float64
}

// PriceChange представляет процентное изменение цены за окно
type PriceChange struct {
	Window  Window
	Percent float64
}

// PriceChanges содержит изменения цены по всем окнам
type PriceChanges map[Window]float64

// TimeframeCandidate представляет кандидата таймфрейма для классификатора
type TimeframeCandidate struct {
	Window        Window
	PercentChange float64
	Stats         VolumeWindow
}

// SignalResult представляет результат классификации сигнала
type SignalResult struct {
	Window        Window
	PercentChange float64
	Message       string
	BuySellRatio  float64
	TotalVolume   float64
}

// MarketSnapshot представляет данные внешних фидов на момент цикла.
// Book равен nil при недоступном стакане, Volume24h равен нулю при
// недоступном тикере; история сделок обязательна.
type MarketSnapshot struct {
	Symbol    string
	Now       int64
	Trades    []Trade
	Book      *OrderBook
	Volume24h float64
	LastPrice float64
}

// Report представляет полный результат одного цикла анализа.
// Содержит все числа, нужные рендереру, без повторных расчетов.
type Report struct {
	Symbol       string
	Timestamp    time.Time
	CurrentPrice float64
	Volume24h    float64
	Signal       SignalResult
	Changes      []PriceChange
	Windows      []WindowStats
	Zones        []BuyZone
	// SyntheticZones: true, если зоны полностью синтетические (нет реальных данных)
	SyntheticZones bool
	TrendNote      string
}
