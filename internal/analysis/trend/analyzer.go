package trend

import (
	"sort"

	"github.com/markcheno/go-talib"
	"github.com/skalibog/bspa/internal/config"
	"github.com/skalibog/bspa/pkg/models"
)

// Analyzer реализует трендовую пометку по минутным ценам закрытия,
// пересобранным из истории сделок. Пометка сугубо вспомогательная:
// при нехватке истории она просто отсутствует.
type Analyzer struct {
	config config.TrendConfig
}

// NewAnalyzer создает новый трендовый анализатор
func NewAnalyzer(cfg config.TrendConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// Note возвращает текстовую пометку о тренде или пустую строку
func (a *Analyzer) Note(trades []models.Trade, now int64) string {
	if !a.config.Enabled {
		return ""
	}

	closes := minuteCloses(trades, now)
	need := a.config.SMAPeriod
	if a.config.RSIPeriod+1 > need {
		need = a.config.RSIPeriod + 1
	}
	if len(closes) < need {
		return ""
	}

	sma := talib.Sma(closes, a.config.SMAPeriod)
	rsi := talib.Rsi(closes, a.config.RSIPeriod)

	lastClose := closes[len(closes)-1]
	lastSMA := sma[len(sma)-1]
	lastRSI := rsi[len(rsi)-1]

	switch {
	case lastRSI >= 70 && lastClose > lastSMA:
		return "перекупленность, цена выше средней"
	case lastRSI <= 30 && lastClose < lastSMA:
		return "перепроданность, цена ниже средней"
	case lastClose > lastSMA:
		return "цена держится выше скользящей средней"
	case lastClose < lastSMA:
		return "цена держится ниже скользящей средней"
	default:
		return ""
	}
}

// minuteCloses пересобирает минутные закрытия из сделок (по возрастанию минут)
func minuteCloses(trades []models.Trade, now int64) []float64 {
	type last struct {
		ts    int64
		price float64
	}
	byMinute := make(map[int64]last)

	for _, trade := range trades {
		if trade.Timestamp <= 0 || trade.Timestamp > now || trade.Price <= 0 {
			continue
		}
		minute := trade.Timestamp / 60000
		if prev, ok := byMinute[minute]; !ok || trade.Timestamp >= prev.ts {
			byMinute[minute] = last{ts: trade.Timestamp, price: trade.Price}
		}
	}

	minutes := make([]int64, 0, len(byMinute))
	for minute := range byMinute {
		minutes = append(minutes, minute)
	}
	sort.Slice(minutes, func(i, j int) bool { return minutes[i] < minutes[j] })

	closes := make([]float64, 0, len(minutes))
	for _, minute := range minutes {
		closes = append(closes, byMinute[minute].price)
	}
	return closes
}
