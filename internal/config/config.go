package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/skalibog/bspa/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Binance  BinanceConfig  `yaml:"binance"`
	Trading  TradingConfig  `yaml:"trading"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// TelegramConfig содержит настройки Telegram-бота
type TelegramConfig struct {
	Token          string  `yaml:"token"`
	ChatID         int64   `yaml:"chat_id"`
	AllowedChats   []int64 `yaml:"allowed_chats"`
	PollTimeoutSec int     `yaml:"poll_timeout_sec"`
}

// BinanceConfig содержит настройки подключения к Binance
type BinanceConfig struct {
	APIKey     string `yaml:"api_key"`
	APISecret  string `yaml:"api_secret"`
	Testnet    bool   `yaml:"testnet"`
	TradeLimit int    `yaml:"trade_limit"`
	DepthLimit int    `yaml:"depth_limit"`
}

// TradingConfig содержит настройки торгуемого инструмента
type TradingConfig struct {
	Symbol string `yaml:"symbol"`
}

// AnalysisConfig содержит настройки аналитических модулей
type AnalysisConfig struct {
	IntervalSeconds int             `yaml:"interval_seconds"`
	Estimator       EstimatorConfig `yaml:"estimator"`
	BuyZone         BuyZoneConfig   `yaml:"buyzone"`
	Signal          SignalConfig    `yaml:"signal"`
	Trend           TrendConfig     `yaml:"trend"`
}

// WindowShare доли 24-часового объема для окна при росте и при падении
type WindowShare struct {
	Up   float64 `yaml:"up"`
	Down float64 `yaml:"down"`
}

// EstimatorConfig настройки оценщика объемов и политики сверки
type EstimatorConfig struct {
	// MinActualFraction: минимальная правдоподобная доля фактического
	// объема окна от 24-часового, ниже — берется оценка
	MinActualFraction float64 `yaml:"min_actual_fraction"`
	// MinTradeCount: минимальное число сделок в истории для доверия факту
	MinTradeCount int `yaml:"min_trade_count"`
	// Shares: доли 24h объема по окнам ("15m", "30m", "1h", "4h")
	Shares map[string]WindowShare `yaml:"shares"`
}

// BuyZoneConfig настройки поиска зон покупок
type BuyZoneConfig struct {
	MinBucketValue       float64 `yaml:"min_bucket_value"`
	MaxBelowPrice        float64 `yaml:"max_below_price"`
	SignificanceFraction float64 `yaml:"significance_fraction"`
	NearBand             float64 `yaml:"near_band"`
	DefaultZoneGap       float64 `yaml:"default_zone_gap"`
	FallbackWindowHours  int     `yaml:"fallback_window_hours"`
	FallbackBand         float64 `yaml:"fallback_band"`
	MinFallbackTrades    int     `yaml:"min_fallback_trades"`
}

// SignalConfig пороговые значения для аннотаций сигнала
type SignalConfig struct {
	HighVolumeValue float64 `yaml:"high_volume_value"`
	StrongRatio     float64 `yaml:"strong_ratio"`
	WeakRatio       float64 `yaml:"weak_ratio"`
}

// TrendConfig настройки трендовой пометки
type TrendConfig struct {
	Enabled   bool `yaml:"enabled"`
	SMAPeriod int  `yaml:"sma_period"`
	RSIPeriod int  `yaml:"rsi_period"`
}

// Default возвращает конфигурацию с документированными значениями по умолчанию.
// Все разбросанные по вариантам константы собраны здесь.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeoutSec: 30,
		},
		Binance: BinanceConfig{
			TradeLimit: 1000,
			DepthLimit: 500,
		},
		Trading: TradingConfig{
			Symbol: "BTCUSDT",
		},
		Analysis: AnalysisConfig{
			IntervalSeconds: 900,
			Estimator: EstimatorConfig{
				MinActualFraction: 0.02,
				MinTradeCount:     100,
				Shares: map[string]WindowShare{
					"15m": {Up: 0.015, Down: 0.011},
					"30m": {Up: 0.028, Down: 0.022},
					"1h":  {Up: 0.060, Down: 0.045},
					"4h":  {Up: 0.200, Down: 0.160},
				},
			},
			BuyZone: BuyZoneConfig{
				MinBucketValue:       50,
				MaxBelowPrice:        0.90,
				SignificanceFraction: 0.001,
				NearBand:             0.05,
				DefaultZoneGap:       0.02,
				FallbackWindowHours:  3,
				FallbackBand:         0.10,
				MinFallbackTrades:    5,
			},
			Signal: SignalConfig{
				HighVolumeValue: 50000,
				StrongRatio:     3.0,
				WeakRatio:       1.0 / 3.0,
			},
			Trend: TrendConfig{
				Enabled:   true,
				SMAPeriod: 20,
				RSIPeriod: 14,
			},
		},
	}
}

// Load загружает конфигурацию из файла поверх значений по умолчанию.
// Секреты можно переопределить через окружение (.env поддерживается).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("Ошибка чтения файла конфигурации", zap.Error(err))
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		logger.Fatal("Ошибка разбора файла конфигурации", zap.Error(err))
	}

	applyEnvOverrides(config)

	logger.Debug("Загружена конфигурация", zap.String("path", path))
	logger.Info("Загружена конфигурация",
		zap.String("symbol", config.Trading.Symbol),
		zap.Int64("chat_id", config.Telegram.ChatID))
	return config, nil
}

// applyEnvOverrides переопределяет секреты из окружения
func applyEnvOverrides(config *Config) {
	// .env необязателен, ошибки загрузки игнорируются
	_ = godotenv.Load()

	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}
	if key := os.Getenv("BINANCE_API_KEY"); key != "" {
		config.Binance.APIKey = key
	}
	if secret := os.Getenv("BINANCE_API_SECRET"); secret != "" {
		config.Binance.APISecret = secret
	}
}

// Share возвращает доли окна, при отсутствии в конфиге — значения по умолчанию
func (c EstimatorConfig) Share(window string) WindowShare {
	if share, ok := c.Shares[window]; ok {
		return share
	}
	return Default().Analysis.Estimator.Shares[window]
}
