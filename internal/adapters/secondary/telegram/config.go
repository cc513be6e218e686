package telegram

import "time"

type Config struct {
	BotToken             string        `envconfig:"BOT_TOKEN" required:"true"`
	APIBaseURL           string        `envconfig:"API_BASE_URL" default:"https://api.telegram.org"`
	UseWebhook           bool          `envconfig:"USE_WEBHOOK" default:"false"`
	WebhookURL           string        `envconfig:"WEBHOOK_URL"`
	WebhookSecret        string        `envconfig:"WEBHOOK_SECRET"`
	PollingTimeout       int           `envconfig:"POLLING_TIMEOUT" default:"30"` // секунды long polling
	MaxConcurrentUpdates int           `envconfig:"MAX_CONCURRENT_UPDATES" default:"32"`
	RequestTimeout       time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}
