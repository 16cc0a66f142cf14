// Package config manages application configuration from config.yaml,
// ASKBRIDGE_* environment variables, and default values.
package config

import (
	"errors"
	"time"

	"github.com/go-telegram/bot/models"
)

// ErrConfiguration indicates a configuration loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration. Values can be set via
// config.yaml or environment variables prefixed with ASKBRIDGE_
// (e.g. ASKBRIDGE_TELEGRAM_TOKEN).
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls log verbosity and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// TelegramConfig holds the bot token and the fixed chat surfaces the
// question pipeline publishes to.
type TelegramConfig struct {
	Token       string `mapstructure:"token"    validate:"required"`
	AdminUserID int64  `mapstructure:"admin_id" validate:"required,gt=0"`

	// ChannelID is the public question channel every question is posted to.
	ChannelID int64 `mapstructure:"channel_id" validate:"required,lt=0"`
	// DiscussionChatID is the channel's linked discussion group, where the
	// platform auto-forwards channel posts. Zero disables discussion routing.
	DiscussionChatID int64 `mapstructure:"discussion_chat_id"`

	// BotInfo is populated at startup via GetMe, not from configuration.
	BotInfo *models.User `mapstructure:"-"`
}

// BotConfig holds behavior toggles and all user-facing message strings.
type BotConfig struct {
	// DailyPublishLimit caps how many questions a single user may publish
	// in a trailing 24 hour window.
	DailyPublishLimit int `mapstructure:"daily_publish_limit" validate:"required,min=1"`
	// EditRoomBacklink controls whether a room-chat post is edited in place
	// to append a link to the channel copy once both message ids are known.
	EditRoomBacklink bool `mapstructure:"edit_room_backlink"`

	Messages MessagesConfig `mapstructure:"messages"`
}

// MessagesConfig defines every user-facing message the bot sends.
// Strings containing %s or %d are format templates.
type MessagesConfig struct {
	Welcome         string `mapstructure:"welcome"           validate:"required"`
	Help            string `mapstructure:"help"              validate:"required"`
	NotMember       string `mapstructure:"not_member"        validate:"required"`
	Banned          string `mapstructure:"banned"            validate:"required"`
	RateLimited     string `mapstructure:"rate_limited"      validate:"required"`
	Menu            string `mapstructure:"menu"              validate:"required"`
	PromptTitle     string `mapstructure:"prompt_title"      validate:"required"`
	PromptBody      string `mapstructure:"prompt_body"       validate:"required"`
	PromptTags      string `mapstructure:"prompt_tags"       validate:"required"`
	PromptRoom      string `mapstructure:"prompt_room"       validate:"required"`
	Confirm         string `mapstructure:"confirm"           validate:"required"`
	Published       string `mapstructure:"published"         validate:"required"`
	PublishFailed   string `mapstructure:"publish_failed"    validate:"required"`
	Cancelled       string `mapstructure:"cancelled"         validate:"required"`
	NothingToCancel string `mapstructure:"nothing_to_cancel" validate:"required"`
	TitleMissing    string `mapstructure:"title_missing"     validate:"required"`
	BodyMissing     string `mapstructure:"body_missing"      validate:"required"`
	TitleTooLong    string `mapstructure:"title_too_long"    validate:"required"`
	BodyTooLong     string `mapstructure:"body_too_long"     validate:"required"`
	Fallback        string `mapstructure:"fallback"          validate:"required"`
	GeneralError    string `mapstructure:"general_error"     validate:"required"`
	NotAuthorized   string `mapstructure:"not_authorized"    validate:"required"`
	RoomsReloaded   string `mapstructure:"rooms_reloaded"    validate:"required"`
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SessionConfig selects and configures the conversation session store.
type SessionConfig struct {
	Backend string        `mapstructure:"backend" validate:"required,oneof=memory redis"`
	TTL     time.Duration `mapstructure:"ttl"     validate:"required,min=1m,max=24h"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds connection settings for the redis session backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named scheduled task with a cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}
