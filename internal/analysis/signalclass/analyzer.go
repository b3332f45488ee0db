package signalclass

import (
	"math"
	"strings"

	"github.com/skalibog/bspa/internal/analysis"
	"github.com/skalibog/bspa/internal/config"
	"github.com/skalibog/bspa/pkg/models"
)

// Analyzer реализует классификатор сигнала по таймфреймам
type Analyzer struct {
	config config.SignalConfig
}

// NewAnalyzer создает новый классификатор сигнала
func NewAnalyzer(cfg config.SignalConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// tier описывает ярус величины изменения. Границы проверяются строго
// по убыванию модуля, подходит только первый ярус.
type tier struct {
	threshold float64
	rise      string
	fall      string
}

var tiers = []tier{
	{20, "мощнейший взлет", "обвал"},
	{15, "очень сильный рост", "очень сильное падение"},
	{10, "сильный рост", "сильное падение"},
	{7, "уверенный рост", "уверенное снижение"},
	{5, "заметный рост", "заметное снижение"},
	{3, "умеренный рост", "умеренное снижение"},
	{2, "небольшой рост", "небольшое снижение"},
	{1, "слабый рост", "слабое снижение"},
	{0.5, "незначительный рост", "незначительное снижение"},
	{0.2, "минимальный рост", "минимальное снижение"},
}

const neutralPhrase = "консолидация, боковое движение"

// Classify выбирает доминирующий таймфрейм и возвращает категориальный сигнал.
// Основной таймфрейм — с наибольшим модулем изменения, при равенстве
// побеждает первый во входном порядке.
func (a *Analyzer) Classify(candidates []models.TimeframeCandidate) (models.SignalResult, error) {
	if len(candidates) == 0 {
		return models.SignalResult{}, analysis.ErrEmptyInput.WithContext("нет кандидатов таймфреймов")
	}

	primary := candidates[0]
	for _, candidate := range candidates {
		if math.IsNaN(candidate.PercentChange) || math.IsInf(candidate.PercentChange, 0) {
			return models.SignalResult{}, analysis.ErrInvalidInput.WithContext("изменение цены %s", candidate.Window)
		}
		if math.Abs(candidate.PercentChange) > math.Abs(primary.PercentChange) {
			primary = candidate
		}
	}

	ratio := buySellRatio(primary.Stats)
	totalVolume := primary.Stats.TotalValue()

	var parts []string
	parts = append(parts, tierPhrase(primary.PercentChange))
	if note := a.volumeNote(ratio, totalVolume); note != "" {
		parts = append(parts, note)
	}

	return models.SignalResult{
		Window:        primary.Window,
		PercentChange: primary.PercentChange,
		Message:       strings.Join(parts, ", "),
		BuySellRatio:  ratio,
		TotalVolume:   totalVolume,
	}, nil
}

// buySellRatio возвращает отношение покупок к продажам.
// Нулевые продажи дают ровно 1 — намеренный разрыв вместо бесконечности.
func buySellRatio(window models.VolumeWindow) float64 {
	if window.SellValue == 0 {
		return 1
	}
	return window.BuyValue / window.SellValue
}

// tierPhrase подбирает фразу яруса для процента изменения
func tierPhrase(change float64) string {
	magnitude := math.Abs(change)
	for _, t := range tiers {
		if magnitude >= t.threshold {
			if change > 0 {
				return t.rise
			}
			return t.fall
		}
	}
	return neutralPhrase
}

// volumeNote добавляет аннотацию по соотношению покупок/продаж и обороту.
// Аннотации аддитивны и не зависят от яруса величины.
func (a *Analyzer) volumeNote(ratio, totalVolume float64) string {
	if totalVolume < a.config.HighVolumeValue {
		return ""
	}
	switch {
	case ratio >= a.config.StrongRatio:
		return "агрессивный набор позиций покупателями"
	case ratio <= a.config.WeakRatio:
		return "дистрибуция, давление продавцов"
	default:
		return "активный рынок"
	}
}
