package market

import (
	"context"
	"fmt"
	"time"

	"github.com/skalibog/bspa/internal/exchange"
	"github.com/skalibog/bspa/pkg/logger"
	"github.com/skalibog/bspa/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fetcher собирает снапшот рыночных данных для одного цикла анализа
type Fetcher struct {
	client *exchange.BinanceClient
	symbol string
}

// NewFetcher создает новый сборщик рыночных данных
func NewFetcher(client *exchange.BinanceClient, symbol string) *Fetcher {
	return &Fetcher{
		client: client,
		symbol: symbol,
	}
}

// Snapshot запрашивает все три фида параллельно.
// Частичные отказы переживаются: недоступный стакан дает nil,
// недоступный тикер — нулевой объем; без истории сделок осмысленный
// результат невозможен, это жесткая ошибка цикла.
func (f *Fetcher) Snapshot(ctx context.Context) (models.MarketSnapshot, error) {
	var (
		trades    []models.Trade
		book      *models.OrderBook
		volume24h float64
		lastPrice float64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		trades, err = f.client.GetTrades(gctx, f.symbol)
		if err != nil {
			return fmt.Errorf("история сделок: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		book, err = f.client.GetOrderBook(gctx, f.symbol)
		if err != nil {
			logger.Warn("Стакан недоступен, зоны будут искаться по сделкам",
				zap.String("symbol", f.symbol), zap.Error(err))
			book = nil
		}
		return nil
	})

	g.Go(func() error {
		var err error
		volume24h, lastPrice, err = f.client.GetTicker24h(gctx, f.symbol)
		if err != nil {
			logger.Warn("Суточная статистика недоступна",
				zap.String("symbol", f.symbol), zap.Error(err))
			volume24h, lastPrice = 0, 0
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.MarketSnapshot{}, err
	}

	return models.MarketSnapshot{
		Symbol:    f.symbol,
		Now:       time.Now().UnixMilli(),
		Trades:    trades,
		Book:      book,
		Volume24h: volume24h,
		LastPrice: lastPrice,
	}, nil
}
