package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/jpillora/backoff"
	"github.com/shopspring/decimal"
	"github.com/skalibog/bspa/internal/config"
	"github.com/skalibog/bspa/pkg/logger"
	"github.com/skalibog/bspa/pkg/models"
	"go.uber.org/zap"
)

// retryAttempts число попыток на один запрос к бирже
const retryAttempts = 3

// BinanceClient клиент для взаимодействия со спотовым рынком Binance
type BinanceClient struct {
	spot       *binance.Client
	tradeLimit int
	depthLimit int
}

// NewBinanceClient создает новый клиент Binance
func NewBinanceClient(cfg config.BinanceConfig) (*BinanceClient, error) {
	spotClient := binance.NewClient(cfg.APIKey, cfg.APISecret)

	if cfg.Testnet {
		spotClient.SetApiEndpoint("https://testnet.binance.vision")
	}

	return &BinanceClient{
		spot:       spotClient,
		tradeLimit: cfg.TradeLimit,
		depthLimit: cfg.DepthLimit,
	}, nil
}

// GetTrades получает последние агрегированные сделки.
// Записи с неразбираемыми ценой или количеством пропускаются, а не
// роняют весь запрос.
func (c *BinanceClient) GetTrades(ctx context.Context, symbol string) ([]models.Trade, error) {
	var raw []*binance.AggTrade
	err := withRetry(ctx, func() error {
		var err error
		raw, err = c.spot.NewAggTradesService().
			Symbol(symbol).
			Limit(c.tradeLimit).
			Do(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сделок: %w", err)
	}

	trades := make([]models.Trade, 0, len(raw))
	skipped := 0
	for _, t := range raw {
		price, ok := parseDecimal(t.Price)
		if !ok {
			skipped++
			continue
		}
		quantity, ok := parseDecimal(t.Quantity)
		if !ok {
			skipped++
			continue
		}
		trades = append(trades, models.Trade{
			Timestamp: t.Timestamp,
			Price:     price,
			Quantity:  quantity,
			// isBuyerMaker: покупатель был мейкером, значит тейкер продавал
			IsSellInitiated: t.IsBuyerMaker,
		})
	}

	if skipped > 0 {
		logger.Warn("Пропущены сделки с неразбираемыми полями",
			zap.String("symbol", symbol), zap.Int("skipped", skipped))
	}

	return trades, nil
}

// GetOrderBook получает снапшот стакана заявок
func (c *BinanceClient) GetOrderBook(ctx context.Context, symbol string) (*models.OrderBook, error) {
	var raw *binance.DepthResponse
	err := withRetry(ctx, func() error {
		var err error
		raw, err = c.spot.NewDepthService().
			Symbol(symbol).
			Limit(c.depthLimit).
			Do(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения стакана: %w", err)
	}

	orderBook := &models.OrderBook{
		Symbol:    symbol,
		Timestamp: time.Now(),
		Bids:      make([]models.OrderBookLevel, 0, len(raw.Bids)),
		Asks:      make([]models.OrderBookLevel, 0, len(raw.Asks)),
	}

	for _, bid := range raw.Bids {
		if level, ok := parseLevel(bid.Price, bid.Quantity); ok {
			orderBook.Bids = append(orderBook.Bids, level)
		}
	}
	for _, ask := range raw.Asks {
		if level, ok := parseLevel(ask.Price, ask.Quantity); ok {
			orderBook.Asks = append(orderBook.Asks, level)
		}
	}

	return orderBook, nil
}

// GetTicker24h получает суточный оборот в котируемой валюте и последнюю цену
func (c *BinanceClient) GetTicker24h(ctx context.Context, symbol string) (volume24h, lastPrice float64, err error) {
	var raw []*binance.PriceChangeStats
	err = withRetry(ctx, func() error {
		var err error
		raw, err = c.spot.NewListPriceChangeStatsService().
			Symbol(symbol).
			Do(ctx)
		return err
	})
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка получения суточной статистики: %w", err)
	}
	if len(raw) == 0 {
		return 0, 0, fmt.Errorf("нет суточной статистики для %s", symbol)
	}

	volume24h, ok := parseDecimal(raw[0].QuoteVolume)
	if !ok {
		return 0, 0, fmt.Errorf("неразбираемый суточный объем для %s", symbol)
	}
	lastPrice, ok = parseDecimal(raw[0].LastPrice)
	if !ok {
		return 0, 0, fmt.Errorf("неразбираемая последняя цена для %s", symbol)
	}

	return volume24h, lastPrice, nil
}

// withRetry выполняет запрос с экспоненциальной паузой между попытками
func withRetry(ctx context.Context, fn func() error) error {
	b := &backoff.Backoff{
		Min:    250 * time.Millisecond,
		Max:    4 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
	return err
}

// parseDecimal разбирает строковое число API в float64
func parseDecimal(s string) (float64, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// parseLevel разбирает уровень стакана
func parseLevel(price, quantity string) (models.OrderBookLevel, bool) {
	p, ok := parseDecimal(price)
	if !ok {
		return models.OrderBookLevel{}, false
	}
	q, ok := parseDecimal(quantity)
	if !ok {
		return models.OrderBookLevel{}, false
	}
	return models.OrderBookLevel{Price: p, Quantity: q}, true
}
