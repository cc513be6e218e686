package alerter

type Config struct {
	BotToken        string `envconfig:"BOT_TOKEN"`
	ChatID          int64  `envconfig:"CHAT_ID"`
	MessageThreadID *int64 `envconfig:"MESSAGE_THREAD_ID"`
	APIBaseURL      string `envconfig:"API_BASE_URL" default:"https://api.telegram.org"`
}

// Enabled алерты включены, только если заданы и токен, и чат
func (c *Config) Enabled() bool {
	return c != nil && c.BotToken != "" && c.ChatID != 0
}
