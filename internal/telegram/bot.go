package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/skalibog/bspa/internal/config"
	"github.com/skalibog/bspa/pkg/logger"
	"github.com/skalibog/bspa/pkg/models"
	"go.uber.org/zap"
)

// ReportFunc строит свежий отчет по запросу команды
type ReportFunc func(ctx context.Context) (models.Report, error)

// Bot обрабатывает команды чата и отправляет отчеты
type Bot struct {
	client      *Client
	config      config.TelegramConfig
	buildReport ReportFunc
}

// NewBot создает нового бота
func NewBot(client *Client, cfg config.TelegramConfig, buildReport ReportFunc) *Bot {
	return &Bot{
		client:      client,
		config:      cfg,
		buildReport: buildReport,
	}
}

// Send отправляет сообщение в основной чат
func (b *Bot) Send(ctx context.Context, text string) error {
	return b.client.SendMessage(ctx, b.config.ChatID, text)
}

// Run запускает long-poll цикл обработки команд. Блокирует до отмены контекста.
func (b *Bot) Run(ctx context.Context) {
	var offset int64

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset, b.config.PollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("Ошибка получения обновлений", zap.Error(err))
			time.Sleep(3 * time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage маршрутизирует одну команду
func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	if !b.allowed(msg.Chat.ID) {
		logger.Debug("Сообщение из неразрешенного чата", zap.Int64("chat_id", msg.Chat.ID))
		return
	}

	command := parseCommand(msg.Text)

	switch command {
	case "/signal", "/start":
		b.reply(ctx, msg.Chat.ID, func(report models.Report) string {
			return FormatReport(report)
		})
	case "/zones":
		b.reply(ctx, msg.Chat.ID, func(report models.Report) string {
			return FormatZones(report)
		})
	case "/help":
		help := "Команды:\n/signal — полный отчет по сигналу\n/zones — зоны покупок\n/help — эта справка"
		if err := b.client.SendMessage(ctx, msg.Chat.ID, help); err != nil {
			logger.Warn("Ошибка отправки справки", zap.Error(err))
		}
	}
}

// parseCommand выделяет команду из текста сообщения: первый токен,
// хвостовые аргументы и @botname групповых чатов отбрасываются
func parseCommand(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return ""
	}
	command := fields[0]
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	return command
}

// reply строит отчет и отвечает в чат; ошибки фидов отдаются одним сообщением
func (b *Bot) reply(ctx context.Context, chatID int64, render func(models.Report) string) {
	report, err := b.buildReport(ctx)
	if err != nil {
		logger.Error("Ошибка построения отчета по команде", zap.Error(err))
		if sendErr := b.client.SendMessage(ctx, chatID, "⚠️ Не удалось получить рыночные данные, попробуйте позже"); sendErr != nil {
			logger.Warn("Ошибка отправки сообщения об ошибке", zap.Error(sendErr))
		}
		return
	}
	if err := b.client.SendMessage(ctx, chatID, render(report)); err != nil {
		logger.Warn("Ошибка отправки отчета", zap.Error(err))
	}
}

// allowed проверяет чат по списку разрешенных
func (b *Bot) allowed(chatID int64) bool {
	if len(b.config.AllowedChats) == 0 {
		return chatID == b.config.ChatID
	}
	for _, id := range b.config.AllowedChats {
		if id == chatID {
			return true
		}
	}
	return false
}
