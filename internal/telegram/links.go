package telegram

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// MessageLink returns the t.me permalink for a message in a channel or
// supergroup. Telegram addresses those by the internal chat id with the
// -100 prefix dropped.
func MessageLink(chatID int64, messageID int) string {
	internal := strings.TrimPrefix(strconv.FormatInt(chatID, 10), "-100")
	return fmt.Sprintf("https://t.me/c/%s/%d", internal, messageID)
}

// UserMention returns an HTML mention deep-linking to a user by id, so it
// works for users without a public username.
func UserMention(telegramID int64, name string) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, telegramID, html.EscapeString(name))
}

// Link returns an HTML anchor with an escaped label.
func Link(url, label string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, url, html.EscapeString(label))
}

// Bold returns escaped text wrapped in HTML bold tags.
func Bold(s string) string {
	return "<b>" + html.EscapeString(s) + "</b>"
}

// Escape escapes text for inclusion in an HTML-parse-mode message.
func Escape(s string) string {
	return html.EscapeString(s)
}
