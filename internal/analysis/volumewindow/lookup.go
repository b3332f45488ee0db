package volumewindow

import (
	"github.com/skalibog/bspa/pkg/models"
)

// PriceAt возвращает цену сделки, ближайшей по времени к target среди сделок
// с меткой не позже target. Если таких нет, берется цена самой старой сделки
// (грубая оценка, вызывающий обязан считать ее приближенной). При равном
// удалении выбирается более ранняя сделка. ok=false только для пустого
// (или полностью невалидного) списка: вызывающий подставляет текущую цену,
// чтобы не делить на ноль в расчете процентов.
func PriceAt(trades []models.Trade, target int64) (float64, bool) {
	var (
		bestPrice   float64
		bestDist    int64 = -1
		bestTS      int64
		oldestPrice float64
		oldestTS    int64 = -1
	)

	for _, trade := range trades {
		if !valid(trade) {
			continue
		}

		if oldestTS < 0 || trade.Timestamp < oldestTS {
			oldestTS = trade.Timestamp
			oldestPrice = trade.Price
		}

		if trade.Timestamp > target {
			continue
		}

		dist := target - trade.Timestamp
		// При равном удалении предпочитаем более раннюю метку
		if bestDist < 0 || dist < bestDist || (dist == bestDist && trade.Timestamp < bestTS) {
			bestDist = dist
			bestTS = trade.Timestamp
			bestPrice = trade.Price
		}
	}

	if bestDist >= 0 {
		return bestPrice, true
	}
	if oldestTS >= 0 {
		return oldestPrice, true
	}
	return 0, false
}
