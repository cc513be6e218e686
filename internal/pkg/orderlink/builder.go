// Package orderlink строит deep-link ссылки t.me, в которых закодировано
// намерение купить один товар. Заказ нигде не хранится, только в ссылке.
package orderlink

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/admin/tg-bots/organic-shop/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://t.me"
	startPrefix    = "buy_"
	currency       = "UZS"
)

// Mode способ оформления заказа, выбирается один раз при загрузке конфигурации
type Mode int

const (
	// ModeNone канал заказа не настроен, ссылки нет
	ModeNone Mode = iota
	// ModeDirectMessage личное сообщение администратору с готовым текстом
	ModeDirectMessage
	// ModeBotStart команда /start боту с payload buy_<id>
	ModeBotStart
)

func (m Mode) String() string {
	switch m {
	case ModeDirectMessage:
		return "direct_message"
	case ModeBotStart:
		return "bot_start"
	default:
		return "none"
	}
}

type Config struct {
	AdminUsername string `envconfig:"ADMIN_USERNAME"`
	BotUsername   string `envconfig:"BOT_USERNAME"`
	BaseURL       string `envconfig:"LINK_BASE_URL" default:"https://t.me"`
}

// Builder строит ссылку на заказ. Нулевой или nil Builder ссылок не строит.
type Builder struct {
	mode    Mode
	handle  string
	baseURL string
}

// New определяет режим: хэндл администратора важнее хэндла бота
func New(cfg Config) *Builder {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	b := &Builder{baseURL: baseURL}
	if admin := normalizeHandle(cfg.AdminUsername); admin != "" {
		b.mode = ModeDirectMessage
		b.handle = admin
	} else if bot := normalizeHandle(cfg.BotUsername); bot != "" {
		b.mode = ModeBotStart
		b.handle = bot
	}
	return b
}

func (b *Builder) Mode() Mode {
	if b == nil {
		return ModeNone
	}
	return b.mode
}

// Build возвращает ссылку и false, если канал заказа не настроен
func (b *Builder) Build(name string, id int64, price decimal.Decimal) (string, bool) {
	switch b.Mode() {
	case ModeDirectMessage:
		return fmt.Sprintf("%s/%s?text=%s", b.baseURL, b.handle, queryEscape(OrderText(name, id, price))), true
	case ModeBotStart:
		return fmt.Sprintf("%s/%s?start=%s", b.baseURL, b.handle, queryEscape(StartPayload(id))), true
	default:
		return "", false
	}
}

// OrderText человекочитаемый текст заказа.
// Имя товара подставляется как есть, без экранирования разметки Telegram.
func OrderText(name string, id int64, price decimal.Decimal) string {
	return fmt.Sprintf("Buyurtma: %s (ID: %d) narxi: %s %s", name, id, domain.FormatPrice(price), currency)
}

// StartPayload payload для /start в режиме ModeBotStart
func StartPayload(id int64) string {
	return startPrefix + strconv.FormatInt(id, 10)
}

// ParseStartPayload разбирает buy_<id>
func ParseStartPayload(payload string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(payload), startPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func normalizeHandle(h string) string {
	return strings.TrimPrefix(strings.TrimSpace(h), "@")
}

// queryEscape как url.QueryEscape, но пробел кодируется %20: "+" Telegram оставляет как есть
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
