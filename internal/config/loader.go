package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads and validates configuration from, in increasing precedence:
// 1. Default values
// 2. The config file at path (yaml; optional unless explicitly given)
// 3. ASKBRIDGE_* environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("ASKBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
		// Missing config file is fine, defaults plus env must carry it.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("bot.daily_publish_limit", DefaultDailyPublishLimit)
	v.SetDefault("bot.edit_room_backlink", DefaultEditRoomBacklink)

	v.SetDefault("session.backend", DefaultSessionBackend)
	v.SetDefault("session.ttl", DefaultSessionTTL)
	v.SetDefault("session.redis.addr", DefaultRedisAddr)

	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"sql_maintenance": {Enabled: true, Schedule: "0 4 * * *"},
		"session_sweep":   {Enabled: true, Schedule: "*/10 * * * *"},
	})

	v.SetDefault("bot.messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("bot.messages.help", DefaultMessages.Help)
	v.SetDefault("bot.messages.not_member", DefaultMessages.NotMember)
	v.SetDefault("bot.messages.banned", DefaultMessages.Banned)
	v.SetDefault("bot.messages.rate_limited", DefaultMessages.RateLimited)
	v.SetDefault("bot.messages.menu", DefaultMessages.Menu)
	v.SetDefault("bot.messages.prompt_title", DefaultMessages.PromptTitle)
	v.SetDefault("bot.messages.prompt_body", DefaultMessages.PromptBody)
	v.SetDefault("bot.messages.prompt_tags", DefaultMessages.PromptTags)
	v.SetDefault("bot.messages.prompt_room", DefaultMessages.PromptRoom)
	v.SetDefault("bot.messages.confirm", DefaultMessages.Confirm)
	v.SetDefault("bot.messages.published", DefaultMessages.Published)
	v.SetDefault("bot.messages.publish_failed", DefaultMessages.PublishFailed)
	v.SetDefault("bot.messages.cancelled", DefaultMessages.Cancelled)
	v.SetDefault("bot.messages.nothing_to_cancel", DefaultMessages.NothingToCancel)
	v.SetDefault("bot.messages.title_missing", DefaultMessages.TitleMissing)
	v.SetDefault("bot.messages.body_missing", DefaultMessages.BodyMissing)
	v.SetDefault("bot.messages.title_too_long", DefaultMessages.TitleTooLong)
	v.SetDefault("bot.messages.body_too_long", DefaultMessages.BodyTooLong)
	v.SetDefault("bot.messages.fallback", DefaultMessages.Fallback)
	v.SetDefault("bot.messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("bot.messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("bot.messages.rooms_reloaded", DefaultMessages.RoomsReloaded)
}
