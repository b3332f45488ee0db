// internal/analysis/estimator/analyzer.go
package estimator

import (
	"math"

	"github.com/skalibog/bspa/internal/analysis"
	"github.com/skalibog/bspa/internal/config"
	"github.com/skalibog/bspa/pkg/models"
)

// Analyzer реализует оценщик объемов окон по 24-часовому обороту.
// История сделок с API часто слишком разрежена (лимиты страниц), чтобы
// представлять реальный объем коротких окон; оценщик синтезирует
// правдоподобную замену, привязанную к более надежному суточному итогу.
type Analyzer struct {
	config config.EstimatorConfig
}

// NewAnalyzer создает новый оценщик объемов
func NewAnalyzer(cfg config.EstimatorConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// Estimate рассчитывает оценку разбивки объема для всех окон.
// currentPrice должен быть > 0, иначе деление при расчете количеств
// дало бы NaN/Inf.
func (a *Analyzer) Estimate(volume24h float64, changes models.PriceChanges, currentPrice float64) (map[models.Window]models.VolumeWindow, error) {
	if currentPrice <= 0 {
		return nil, analysis.ErrPrecondition.WithContext("текущая цена %v", currentPrice)
	}
	if math.IsNaN(volume24h) || math.IsInf(volume24h, 0) || volume24h < 0 {
		return nil, analysis.ErrInvalidInput.WithContext("объем за 24ч %v", volume24h)
	}

	result := make(map[models.Window]models.VolumeWindow, len(models.Windows))
	for _, window := range models.Windows {
		change := changes[window]
		if math.IsNaN(change) || math.IsInf(change, 0) {
			return nil, analysis.ErrInvalidInput.WithContext("изменение цены %s", window)
		}

		// Доля окна от суточного объема: на росте объем исторически выше
		share := a.config.Share(string(window))
		windowVolume := volume24h * share.Down
		if change > 0 {
			windowVolume = volume24h * share.Up
		}

		ratio := buyRatio(change)
		buyValue := windowVolume * ratio
		sellValue := windowVolume * (1 - ratio)

		result[window] = models.VolumeWindow{
			BuyValue:     buyValue,
			SellValue:    sellValue,
			BuyQuantity:  math.Round(buyValue / currentPrice),
			SellQuantity: math.Round(sellValue / currentPrice),
		}
	}

	return result, nil
}

// buyRatio возвращает долю покупок как ступенчатую функцию процента изменения.
// Монотонна, симметрична относительно нуля, ограничена [0.2, 0.8],
// нейтральная полоса вокруг нуля дает 0.5.
func buyRatio(change float64) float64 {
	switch {
	case change >= 5:
		return 0.80
	case change >= 3:
		return 0.72
	case change >= 1.5:
		return 0.65
	case change >= 0.5:
		return 0.58
	case change > -0.5:
		return 0.50
	case change > -1.5:
		return 0.42
	case change > -3:
		return 0.35
	case change > -5:
		return 0.28
	default:
		return 0.20
	}
}

// NeedsEstimate решает, заменять ли фактические данные окна оценкой.
// Факт отвергается, когда его суммарный оборот неправдоподобно мал
// относительно 24-часового, когда нарушена монотонность вложенных окон
// (итог более длинного окна обязан быть не меньше итога короткого на тех же
// данных) или когда сделок в истории слишком мало.
func (a *Analyzer) NeedsEstimate(actual models.VolumeWindow, shorter *models.VolumeWindow, volume24h float64, tradeCount int) bool {
	if volume24h > 0 && actual.TotalValue() < volume24h*a.config.MinActualFraction {
		return true
	}
	if shorter != nil {
		if actual.BuyValue < shorter.BuyValue || actual.SellValue < shorter.SellValue ||
			actual.BuyQuantity < shorter.BuyQuantity || actual.SellQuantity < shorter.SellQuantity {
			return true
		}
	}
	if tradeCount < a.config.MinTradeCount {
		return true
	}
	return false
}
