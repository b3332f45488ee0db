package aggregator

import (
	"sync"
	"time"

	"github.com/skalibog/bspa/internal/analysis"
	"github.com/skalibog/bspa/internal/analysis/buyzone"
	"github.com/skalibog/bspa/internal/analysis/estimator"
	"github.com/skalibog/bspa/internal/analysis/signalclass"
	"github.com/skalibog/bspa/internal/analysis/trend"
	"github.com/skalibog/bspa/internal/analysis/volumewindow"
	"github.com/skalibog/bspa/internal/config"
	"github.com/skalibog/bspa/pkg/logger"
	"github.com/skalibog/bspa/pkg/models"
	"go.uber.org/zap"
)

// Analyzer объединяет все аналитические компоненты в один цикл отчета
type Analyzer struct {
	config        config.AnalysisConfig
	estimatorAnal *estimator.Analyzer
	buyzoneAnal   *buyzone.Analyzer
	signalAnal    *signalclass.Analyzer
	trendAnal     *trend.Analyzer
}

// NewAnalyzer создает новый агрегирующий анализатор
func NewAnalyzer(cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{
		config:        cfg,
		estimatorAnal: estimator.NewAnalyzer(cfg.Estimator),
		buyzoneAnal:   buyzone.NewAnalyzer(cfg.BuyZone),
		signalAnal:    signalclass.NewAnalyzer(cfg.Signal),
		trendAnal:     trend.NewAnalyzer(cfg.Trend),
	}
}

// BuildReport строит полный отчет по снапшоту рыночных данных.
// История сделок обязательна; отсутствующий стакан и нулевой суточный
// объем переживаются штатно.
func (a *Analyzer) BuildReport(snapshot models.MarketSnapshot) (models.Report, error) {
	if len(snapshot.Trades) == 0 {
		return models.Report{}, analysis.ErrEmptyInput.WithContext("история сделок %s", snapshot.Symbol)
	}

	currentPrice := snapshot.LastPrice
	if currentPrice <= 0 {
		// Тикер недоступен: берем цену самой свежей сделки
		currentPrice = latestTradePrice(snapshot.Trades, snapshot.Now)
	}
	if currentPrice <= 0 {
		return models.Report{}, analysis.ErrPrecondition.WithContext("нет опорной цены %s", snapshot.Symbol)
	}

	// Фактические окна и проценты изменения
	actuals := make(map[models.Window]models.VolumeWindow, len(models.Windows))
	changes := make(models.PriceChanges, len(models.Windows))
	for _, window := range models.Windows {
		since := snapshot.Now - window.Duration().Milliseconds()
		actuals[window] = volumewindow.Aggregate(snapshot.Trades, since, snapshot.Now)

		prev, ok := volumewindow.PriceAt(snapshot.Trades, since)
		if !ok || prev <= 0 {
			prev = currentPrice
		}
		changes[window] = (currentPrice - prev) / prev * 100
	}

	estimates, err := a.estimatorAnal.Estimate(snapshot.Volume24h, changes, currentPrice)
	if err != nil {
		return models.Report{}, err
	}

	// Сверка: неправдоподобный факт заменяется оценкой
	stats := make([]models.WindowStats, 0, len(models.Windows))
	candidates := make([]models.TimeframeCandidate, 0, len(models.Windows))
	var shorter *models.VolumeWindow
	for _, window := range models.Windows {
		actual := actuals[window]
		chosen := actual
		estimated := false
		if a.estimatorAnal.NeedsEstimate(actual, shorter, snapshot.Volume24h, len(snapshot.Trades)) {
			chosen = estimates[window]
			estimated = true
			logger.Debug("Факт окна заменен оценкой",
				zap.String("symbol", snapshot.Symbol),
				zap.String("window", string(window)),
				zap.Float64("actual_value", actual.TotalValue()),
				zap.Float64("volume24h", snapshot.Volume24h),
				zap.Int("trades", len(snapshot.Trades)))
		}
		prevActual := actual
		shorter = &prevActual

		stats = append(stats, models.WindowStats{
			Window:       window,
			VolumeWindow: chosen,
			Estimated:    estimated,
		})
		candidates = append(candidates, models.TimeframeCandidate{
			Window:        window,
			PercentChange: changes[window],
			Stats:         chosen,
		})
	}

	// Зоны покупок и трендовая пометка независимы, считаем параллельно
	var (
		wg        sync.WaitGroup
		zones     []models.BuyZone
		zonesErr  error
		synthetic bool
		trendNote string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		zones, synthetic, zonesErr = a.buyzoneAnal.FindZones(snapshot.Trades, snapshot.Book, currentPrice, snapshot.Volume24h, snapshot.Now)
	}()
	go func() {
		defer wg.Done()
		trendNote = a.trendAnal.Note(snapshot.Trades, snapshot.Now)
	}()
	wg.Wait()

	if zonesErr != nil {
		return models.Report{}, zonesErr
	}

	signal, err := a.signalAnal.Classify(candidates)
	if err != nil {
		return models.Report{}, err
	}

	priceChanges := make([]models.PriceChange, 0, len(models.Windows))
	for _, window := range models.Windows {
		priceChanges = append(priceChanges, models.PriceChange{
			Window:  window,
			Percent: changes[window],
		})
	}

	return models.Report{
		Symbol:         snapshot.Symbol,
		Timestamp:      time.UnixMilli(snapshot.Now),
		CurrentPrice:   currentPrice,
		Volume24h:      snapshot.Volume24h,
		Signal:         signal,
		Changes:        priceChanges,
		Windows:        stats,
		Zones:          zones,
		SyntheticZones: synthetic,
		TrendNote:      trendNote,
	}, nil
}

// latestTradePrice возвращает цену самой свежей валидной сделки не из будущего
func latestTradePrice(trades []models.Trade, now int64) float64 {
	var bestTS int64
	var price float64
	for _, trade := range trades {
		if trade.Timestamp <= 0 || trade.Timestamp > now || trade.Price <= 0 {
			continue
		}
		if trade.Timestamp > bestTS {
			bestTS = trade.Timestamp
			price = trade.Price
		}
	}
	return price
}
