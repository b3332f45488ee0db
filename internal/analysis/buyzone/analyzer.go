package buyzone

import (
	"math"
	"sort"

	"github.com/skalibog/bspa/internal/analysis"
	"github.com/skalibog/bspa/internal/config"
	"github.com/skalibog/bspa/pkg/models"
)

// Analyzer реализует поиск зон покупок по стакану и истории сделок.
// Это эвристическое ранжирование: контракт — детерминизм и ограниченность
// результата, а не предсказание реальных уровней поддержки.
type Analyzer struct {
	config config.BuyZoneConfig
}

// NewAnalyzer создает новый поисковик зон покупок
func NewAnalyzer(cfg config.BuyZoneConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// FindZones возвращает до трех зон покупок, отсортированных по убыванию цены.
// Приоритет источников: биды стакана, затем кластеры покупок из истории
// сделок, затем синтетические зоны. Второй результат — признак того, что
// сработал последний вариант и все уровни синтетические; он вычисляется
// на том же пути, что и сами зоны, и не может с ними разойтись.
func (a *Analyzer) FindZones(trades []models.Trade, book *models.OrderBook, currentPrice, volume24h float64, now int64) ([]models.BuyZone, bool, error) {
	if currentPrice <= 0 {
		return nil, false, analysis.ErrPrecondition.WithContext("текущая цена %v", currentPrice)
	}

	var zones []models.BuyZone

	if book != nil && len(book.Bids) > 0 {
		zones = a.zonesFromBook(book.Bids, currentPrice, volume24h)
	}
	if zones == nil {
		zones = a.zonesFromTrades(trades, currentPrice, volume24h, now)
	}
	if zones == nil {
		return a.syntheticZones(currentPrice, volume24h), true, nil
	}

	zones = a.mergeDefaults(zones, currentPrice, volume24h)

	sort.Slice(zones, func(i, j int) bool {
		return zones[i].Price > zones[j].Price
	})
	if len(zones) > 3 {
		zones = zones[:3]
	}
	return zones, false, nil
}

// zonesFromBook кластеризует биды стакана в ценовые корзины и ранжирует их
func (a *Analyzer) zonesFromBook(bids []models.OrderBookLevel, currentPrice, volume24h float64) []models.BuyZone {
	step := bucketStep(currentPrice)
	buckets := make(map[int64]*models.BuyZone)

	// Сортированность бидов фидом не гарантируется, корзины ее не требуют
	for _, bid := range bids {
		if bid.Price <= 0 || bid.Quantity < 0 {
			continue
		}
		key := int64(math.Floor(bid.Price / step))
		bucket, ok := buckets[key]
		if !ok {
			bucket = &models.BuyZone{Price: float64(key) * step}
			buckets[key] = bucket
		}
		bucket.Quantity += bid.Quantity
		bucket.Value = bucket.Price * bucket.Quantity
	}

	var candidates []models.BuyZone
	for _, bucket := range buckets {
		// Мелкие корзины и уровни глубже 10% от цены — устаревшая глубина
		if bucket.Value < a.config.MinBucketValue {
			continue
		}
		if bucket.Price < currentPrice*a.config.MaxBelowPrice {
			continue
		}
		// Фильтр значимости относительно суточного оборота
		if volume24h > 0 && bucket.Value <= volume24h*a.config.SignificanceFraction {
			continue
		}
		candidates = append(candidates, *bucket)
	}

	if len(candidates) == 0 {
		return nil
	}

	a.rank(candidates, currentPrice)
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}
	return candidates
}

// zonesFromTrades кластеризует покупки из недавней истории сделок.
// Требуется минимум сделок, иначе кластеризация не предпринимается.
func (a *Analyzer) zonesFromTrades(trades []models.Trade, currentPrice, volume24h float64, now int64) []models.BuyZone {
	if a.countFallbackTrades(trades, currentPrice, now) < a.config.MinFallbackTrades {
		return nil
	}

	cutoff := now - int64(a.config.FallbackWindowHours)*3600*1000
	step := bucketStep(currentPrice)
	buckets := make(map[int64]*models.BuyZone)

	for _, trade := range trades {
		if !a.fallbackEligible(trade, currentPrice, cutoff, now) {
			continue
		}
		key := int64(math.Floor(trade.Price / step))
		bucket, ok := buckets[key]
		if !ok {
			bucket = &models.BuyZone{Price: float64(key) * step}
			buckets[key] = bucket
		}
		bucket.Quantity += trade.Quantity
		bucket.Value = bucket.Price * bucket.Quantity
	}

	var candidates []models.BuyZone
	for _, bucket := range buckets {
		if bucket.Value < a.config.MinBucketValue {
			continue
		}
		if bucket.Price < currentPrice*a.config.MaxBelowPrice {
			continue
		}
		if volume24h > 0 && bucket.Value <= volume24h*a.config.SignificanceFraction {
			continue
		}
		candidates = append(candidates, *bucket)
	}

	if len(candidates) == 0 {
		return nil
	}

	a.rank(candidates, currentPrice)
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}
	return candidates
}

// rank упорядочивает корзины: уровни ближе 5% к цене — по убыванию объема,
// дальние — по возрастанию удаленности, ближние всегда впереди
func (a *Analyzer) rank(zones []models.BuyZone, currentPrice float64) {
	near := func(zone models.BuyZone) bool {
		return math.Abs(currentPrice-zone.Price) <= currentPrice*a.config.NearBand
	}
	sort.SliceStable(zones, func(i, j int) bool {
		ni, nj := near(zones[i]), near(zones[j])
		if ni != nj {
			return ni
		}
		if ni {
			return zones[i].Value > zones[j].Value
		}
		di := math.Abs(currentPrice - zones[i].Price)
		dj := math.Abs(currentPrice - zones[j].Price)
		return di < dj
	})
}

// mergeDefaults добавляет до двух стандартных зон, избегая почти-дубликатов
func (a *Analyzer) mergeDefaults(zones []models.BuyZone, currentPrice, volume24h float64) []models.BuyZone {
	defaults := []models.BuyZone{
		zoneAt(currentPrice*0.99, volume24h*0.003),
		zoneAt(currentPrice*0.97, volume24h*0.002),
	}

	for _, def := range defaults {
		if len(zones) >= 3 {
			break
		}
		duplicate := false
		for _, zone := range zones {
			if math.Abs(zone.Price-def.Price) <= def.Price*a.config.DefaultZoneGap {
				duplicate = true
				break
			}
		}
		if !duplicate {
			zones = append(zones, def)
		}
	}
	return zones
}

// syntheticZones возвращает три фиксированные зоны при полном отсутствии данных
func (a *Analyzer) syntheticZones(currentPrice, volume24h float64) []models.BuyZone {
	return []models.BuyZone{
		zoneAt(currentPrice*0.995, volume24h*0.004),
		zoneAt(currentPrice*0.985, volume24h*0.003),
		zoneAt(currentPrice*0.970, volume24h*0.002),
	}
}

// fallbackEligible проверяет пригодность сделки для кластеризации:
// покупка за последние часы в пределах полосы от текущей цены
func (a *Analyzer) fallbackEligible(trade models.Trade, currentPrice float64, cutoff, now int64) bool {
	if trade.IsSellInitiated {
		return false
	}
	if trade.Timestamp < cutoff || trade.Timestamp > now {
		return false
	}
	if trade.Price <= 0 || trade.Quantity < 0 {
		return false
	}
	return math.Abs(trade.Price-currentPrice) <= currentPrice*a.config.FallbackBand
}

// countFallbackTrades считает пригодные для кластеризации сделки
func (a *Analyzer) countFallbackTrades(trades []models.Trade, currentPrice float64, now int64) int {
	cutoff := now - int64(a.config.FallbackWindowHours)*3600*1000
	count := 0
	for _, trade := range trades {
		if a.fallbackEligible(trade, currentPrice, cutoff, now) {
			count++
		}
	}
	return count
}

// bucketStep подбирает размер ценовой корзины под порядок величины цены:
// крупнее для дорогих инструментов, мельче для субцентовых
func bucketStep(price float64) float64 {
	if price <= 0 {
		return 0.0001
	}
	exp := math.Floor(math.Log10(price)) - 2
	return math.Pow(10, exp)
}

// zoneAt строит зону с согласованными ценой, количеством и оборотом
func zoneAt(price, value float64) models.BuyZone {
	quantity := 0.0
	if price > 0 {
		quantity = value / price
	}
	return models.BuyZone{
		Price:    price,
		Quantity: quantity,
		Value:    value,
	}
}
