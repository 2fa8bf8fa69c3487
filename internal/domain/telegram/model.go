package telegram

import "github.com/faeln1/alerta-roja/internal/domain/community"

// RegisterCommand is the chat text that asks the bot for the id button.
const RegisterCommand = "MIREGISTRO"

// Update is the subset of a Bot API update the webhook reacts to.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	From      *User  `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`
}

type Chat struct {
	ID   community.TelegramID `json:"id"`
	Type string               `json:"type,omitempty"`
}

type User struct {
	ID        community.TelegramID `json:"id"`
	FirstName string               `json:"first_name,omitempty"`
	Username  string               `json:"username,omitempty"`
}

// RegisterInput is posted by the mini-app once it learns the user's Telegram id.
type RegisterInput struct {
	TelegramID community.TelegramID `json:"telegram_id"`
	UserInfo   map[string]any       `json:"user_info,omitempty"`
}

// InlineButton opens the mini-app at URL when pressed.
type InlineButton struct {
	Text   string  `json:"text"`
	WebApp *WebApp `json:"web_app,omitempty"`
	URL    string  `json:"url,omitempty"`
}

type WebApp struct {
	URL string `json:"url"`
}

type ReplyMarkup struct {
	InlineKeyboard [][]InlineButton `json:"inline_keyboard"`
}

// SendMessageRequest is the body of the Bot API sendMessage method.
type SendMessageRequest struct {
	ChatID                community.TelegramID `json:"chat_id"`
	Text                  string               `json:"text"`
	ParseMode             string               `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool                 `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *ReplyMarkup         `json:"reply_markup,omitempty"`
}

// APIResponse is the envelope every Bot API method answers with.
type APIResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}
