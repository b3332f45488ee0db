// internal/analysis/volumewindow/analyzer.go
package volumewindow

import (
	"math"

	"github.com/skalibog/bspa/pkg/logger"
	"github.com/skalibog/bspa/pkg/models"
	"go.uber.org/zap"
)

// Aggregate сводит список сделок в разбивку объема окна на покупки и продажи.
// Сделка учитывается, только если она валидна и ее время лежит в [since, now]:
// сделки из будущего означают испорченные данные фида и пропускаются.
// Пустой или полностью невалидный вход дает нулевое окно, это не ошибка.
func Aggregate(trades []models.Trade, since, now int64) models.VolumeWindow {
	var window models.VolumeWindow
	skipped := 0

	for _, trade := range trades {
		if !valid(trade) {
			skipped++
			continue
		}
		if trade.Timestamp < since || trade.Timestamp > now {
			continue
		}

		value := trade.Price * trade.Quantity
		if trade.IsSellInitiated {
			window.SellValue += value
			window.SellQuantity += trade.Quantity
		} else {
			window.BuyValue += value
			window.BuyQuantity += trade.Quantity
		}
		window.TradeCount++
	}

	if skipped > 0 {
		logger.Debug("Пропущены невалидные сделки", zap.Int("skipped", skipped))
	}

	return window
}

// valid проверяет пригодность записи о сделке
func valid(trade models.Trade) bool {
	if trade.Timestamp <= 0 {
		return false
	}
	if math.IsNaN(trade.Price) || math.IsInf(trade.Price, 0) || trade.Price < 0 {
		return false
	}
	if math.IsNaN(trade.Quantity) || math.IsInf(trade.Quantity, 0) || trade.Quantity < 0 {
		return false
	}
	return true
}
