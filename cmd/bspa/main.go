package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skalibog/bspa/internal/analysis/aggregator"
	"github.com/skalibog/bspa/internal/config"
	"github.com/skalibog/bspa/internal/exchange"
	"github.com/skalibog/bspa/internal/market"
	"github.com/skalibog/bspa/internal/scheduler"
	"github.com/skalibog/bspa/internal/telegram"
	"github.com/skalibog/bspa/pkg/logger"
	"github.com/skalibog/bspa/pkg/models"
	"go.uber.org/zap"
)

func main() {
	logger.Init()
	defer logger.GetLogger().Sync()

	// Обработка флагов командной строки
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	flag.Parse()

	// Проверяем наличие файла конфигурации
	logger.Info("Проверка наличия файла конфигурации", zap.String("path", *configPath))
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Fatal("Файл конфигурации не найден", zap.String("path", *configPath))
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}
	if cfg.Telegram.Token == "" {
		logger.Fatal("Не задан токен Telegram (config или TELEGRAM_TOKEN)")
	}

	// Создаем контекст с возможностью отмены через горутину
	ctx, cancel := context.WithCancel(context.Background())

	// Настраиваем обработку сигналов завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nЗавершение работы...")
		cancel()
		time.Sleep(3 * time.Second) // Даем горутинам время на завершение
		os.Exit(0)
	}()

	// Инициализируем клиент биржи
	client, err := exchange.NewBinanceClient(cfg.Binance)
	if err != nil {
		logger.Fatal("Ошибка инициализации клиента биржи", zap.Error(err))
	}

	// Сборщик рыночных данных и агрегатор аналитики
	fetcher := market.NewFetcher(client, cfg.Trading.Symbol)
	analyzer := aggregator.NewAnalyzer(cfg.Analysis)

	buildReport := func(ctx context.Context) (models.Report, error) {
		snapshot, err := fetcher.Snapshot(ctx)
		if err != nil {
			return models.Report{}, err
		}
		return analyzer.BuildReport(snapshot)
	}

	// Telegram-бот
	tgClient := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.PollTimeoutSec)
	bot := telegram.NewBot(tgClient, cfg.Telegram, buildReport)

	// Планировщик периодических отчетов
	state := scheduler.NewCycleState()
	sched := scheduler.New(
		time.Duration(cfg.Analysis.IntervalSeconds)*time.Second,
		state,
		buildReport,
		telegram.FormatReport,
		bot.Send,
	)
	go sched.Run(ctx)

	logger.Info("BSPA запущен",
		zap.String("symbol", cfg.Trading.Symbol),
		zap.Int("interval_sec", cfg.Analysis.IntervalSeconds))

	// Цикл команд в основном потоке (блокирующий вызов)
	bot.Run(ctx)
}
