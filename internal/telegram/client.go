package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Client клиент для работы с Telegram Bot API
type Client struct {
	httpClient *http.Client
	pollClient *http.Client
	baseURL    string
}

// NewClient создает новый клиент Telegram. pollTimeoutSec — таймаут
// long-polling на стороне Telegram, HTTP-таймаут выводится из него с запасом.
func NewClient(token string, pollTimeoutSec int) *Client {
	if pollTimeoutSec <= 0 {
		pollTimeoutSec = 30
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pollClient: &http.Client{
			Timeout: time.Duration(pollTimeoutSec+5) * time.Second,
		},
		baseURL: "https://api.telegram.org/bot" + token + "/",
	}
}

// Update обновление от Telegram
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message входящее сообщение
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Chat чат-отправитель
type Chat struct {
	ID int64 `json:"id"`
}

// apiResponse обертка ответа Bot API
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// SendMessage отправляет HTML-сообщение в чат
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("ошибка сериализации сообщения: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"sendMessage", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки сообщения: %w", err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("ошибка разбора ответа: %w", err)
	}
	if !api.OK {
		return fmt.Errorf("telegram отклонил сообщение: %s", api.Description)
	}
	return nil
}

// GetUpdates выполняет long-poll запрос обновлений
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	url := c.baseURL + "getUpdates?offset=" + strconv.FormatInt(offset, 10) +
		"&timeout=" + strconv.Itoa(timeoutSec)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := c.pollClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса обновлений: %w", err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа: %w", err)
	}
	if !api.OK {
		return nil, fmt.Errorf("telegram отклонил запрос: %s", api.Description)
	}

	var updates []Update
	if err := json.Unmarshal(api.Result, &updates); err != nil {
		return nil, fmt.Errorf("ошибка разбора обновлений: %w", err)
	}
	return updates, nil
}
