package domain

// дока - https://core.telegram.org/bots/api

// Update - входящее обновление от Telegram Bot API
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message - сообщение от Telegram Bot API
type Message struct {
	MessageID int64         `json:"message_id"`
	From      *TelegramUser `json:"from,omitempty"`
	Chat      *Chat         `json:"chat"`
	Date      int64         `json:"date"`
	Text      *string       `json:"text,omitempty"`
	Entities  []Entity      `json:"entities,omitempty"`
}

// TelegramUser - пользователь Telegram (не domain.User)
type TelegramUser struct {
	ID           int64   `json:"id"`
	IsBot        bool    `json:"is_bot"`
	FirstName    string  `json:"first_name"`
	LastName     *string `json:"last_name,omitempty"`
	Username     *string `json:"username,omitempty"`
	LanguageCode *string `json:"language_code,omitempty"`
}

// ToUpsert данные для регистрации пользователя в каталоге
func (u *TelegramUser) ToUpsert() UserUpsert {
	return UserUpsert{
		ExternalID:  u.ID,
		Handle:      u.Username,
		DisplayName: JoinName(u.FirstName, u.LastName),
		Locale:      u.LanguageCode,
	}
}

// Chat - чат в Telegram
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"` // "private", "group", "supergroup", "channel"
}

// Entity - сущность в сообщении (команда, упоминание и т.д.)
type Entity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// InlineButton кнопка inline-клавиатуры: либо обычная ссылка, либо mini app
type InlineButton struct {
	Text   string
	URL    string
	WebApp bool
}

// BotCommand пункт меню команд бота
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}
