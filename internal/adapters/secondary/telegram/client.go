package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// Client клиент Telegram Bot API поверх net/http
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

func NewClient(cfg *Config, log *slog.Logger) *Client {
	apiBase := strings.TrimRight(cfg.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = defaultAPIBaseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    apiBase + "/bot" + cfg.BotToken,
		log:        log,
	}
}

type inlineKeyboardButton struct {
	Text   string      `json:"text"`
	URL    string      `json:"url,omitempty"`
	WebApp *webAppInfo `json:"web_app,omitempty"`
}

type webAppInfo struct {
	URL string `json:"url"`
}

type inlineKeyboardMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

// SendMessageRequest тело sendMessage
type SendMessageRequest struct {
	ChatID                int64                 `json:"chat_id"`
	MessageThreadID       *int64                `json:"message_thread_id,omitempty"`
	Text                  string                `json:"text"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *inlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage каждая кнопка занимает отдельный ряд inline-клавиатуры
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, buttons ...domain.InlineButton) error {
	req := SendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	}
	if len(buttons) > 0 {
		req.ReplyMarkup = &inlineKeyboardMarkup{InlineKeyboard: keyboardRows(buttons)}
	}

	_, err := c.SendMessageWithRequest(ctx, req)
	return err
}

// SendMessageWithRequest возвращает message_id отправленного сообщения
func (c *Client) SendMessageWithRequest(ctx context.Context, req SendMessageRequest) (int64, error) {
	var result struct {
		MessageID int64 `json:"message_id"`
	}
	if err := c.call(ctx, "sendMessage", req, &result); err != nil {
		return 0, err
	}

	c.log.Debug("message sent", "chat_id", req.ChatID, "message_id", result.MessageID)
	return result.MessageID, nil
}

func keyboardRows(buttons []domain.InlineButton) [][]inlineKeyboardButton {
	rows := make([][]inlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		btn := inlineKeyboardButton{Text: b.Text}
		if b.WebApp {
			btn.WebApp = &webAppInfo{URL: b.URL}
		} else {
			btn.URL = b.URL
		}
		rows = append(rows, []inlineKeyboardButton{btn})
	}
	return rows
}

func (c *Client) SetMyCommands(ctx context.Context, commands []domain.BotCommand) error {
	req := struct {
		Commands []domain.BotCommand `json:"commands"`
	}{Commands: commands}

	if err := c.call(ctx, "setMyCommands", req, nil); err != nil {
		return err
	}
	c.log.Info("bot commands registered", "commands_count", len(commands))
	return nil
}

// BotInfo результат getMe
type BotInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (c *Client) GetMe(ctx context.Context) (*BotInfo, error) {
	var info BotInfo
	if err := c.call(ctx, "getMe", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SetWebhook secret приходит обратно в заголовке X-Telegram-Bot-Api-Secret-Token
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	req := struct {
		URL            string   `json:"url"`
		SecretToken    string   `json:"secret_token,omitempty"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{URL: url, SecretToken: secret, AllowedUpdates: []string{"message"}}

	if err := c.call(ctx, "setWebhook", req, nil); err != nil {
		return err
	}
	c.log.Info("webhook set", "url", url)
	return nil
}

// DeleteWebhook нужен перед запуском long polling
func (c *Client) DeleteWebhook(ctx context.Context) error {
	req := struct {
		DropPendingUpdates bool `json:"drop_pending_updates"`
	}{}
	return c.call(ctx, "deleteWebhook", req, nil)
}

// call POST /<method> с JSON-телом; result заполняется из поля result ответа
func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	return c.callWith(ctx, c.httpClient, method, payload, result)
}

func (c *Client) callWith(ctx context.Context, httpClient *http.Client, method string, payload interface{}, result interface{}) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		c.log.Error("failed to unmarshal response",
			"error", err,
			"method", method,
			"status_code", resp.StatusCode,
			"body", string(raw),
		)
		return fmt.Errorf("failed to unmarshal %s response: %w", method, err)
	}

	if !apiResp.OK {
		return &APIError{Method: method, Code: apiResp.ErrorCode, Description: apiResp.Description}
	}

	if result != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}
