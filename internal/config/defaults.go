package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultDBPath = "askbridge.db"

	DefaultDailyPublishLimit = 3
	DefaultEditRoomBacklink  = true

	DefaultSessionBackend = "memory"
	DefaultSessionTTL     = 2 * time.Hour
	DefaultRedisAddr      = "localhost:6379"
)

// DefaultMessages provides English defaults for every user-facing string.
// Operators localize by overriding individual keys in config.yaml.
var DefaultMessages = MessagesConfig{
	Welcome: "Hi! Let's compose your question. Pick a field on the keyboard, " +
		"fill in at least the title and the body, then hit Finish.",
	Help: "I collect questions and post them to the community question channel. " +
		"Send /start to begin composing a question, /cancel to abort.",
	NotMember: "I couldn't find a club member linked to your Telegram account. " +
		"Link your account in your profile settings and try again.",
	Banned:          "You are banned until %s and cannot post questions.",
	RateLimited:     "You've already published %d questions in the last 24 hours. Give others a chance and come back tomorrow.",
	Menu:            "Your draft so far:\n\n%s\nPick a field to fill in, or hit Finish when you're done.",
	PromptTitle:     "Send me the question title (a single short sentence).",
	PromptBody:      "Now describe your question in detail.",
	PromptTags:      "Send a few tags separated by commas, e.g. \"career, relocation\".",
	PromptRoom:      "Pick a room to cross-post your question to, or choose not to.",
	Confirm:         "Here's what will be published:\n\n%s\nPublish it?",
	Published:       "Done! Your question is live: %s",
	PublishFailed:   "Something went wrong while publishing your question. It was not posted — please try again later.",
	Cancelled:       "Okay, scrapped. Send /start whenever you want to ask something.",
	NothingToCancel: "Nothing to cancel — you have no question in progress.",
	TitleMissing:    "The question needs a title before it can be published.",
	BodyMissing:     "The question needs a body before it can be published.",
	TitleTooLong:    "The title is too long: keep it under %d characters.",
	BodyTooLong:     "The body is too long: keep it under %d characters.",
	Fallback:        "I didn't get that. Use the keyboard below.",
	GeneralError:    "Something went wrong on my side. The conversation was reset — send /start to try again.",
	NotAuthorized:   "You are not allowed to use this command.",
	RoomsReloaded:   "Room directory reloaded: %d rooms.",
}
