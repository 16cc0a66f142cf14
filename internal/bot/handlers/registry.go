package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/clubware/askbridge/internal/telegram"
)

// RegisterAllCommands builds the registration map for every bot command.
// The catch-all dispatch handler is installed separately as the bot's
// default handler.
func RegisterAllCommands(deps HandlerDeps) map[string]telegram.Registration {
	adminOnly := []tgbot.Middleware{AdminOnly(deps)}

	return map[string]telegram.Registration{
		"/start": {
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "start",
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Handler:     NewStartHandler(deps),
		},
		"/cancel": {
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "cancel",
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Handler:     NewCancelHandler(deps),
		},
		"/help": {
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "help",
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Handler:     NewHelpHandler(deps),
		},
		"/ban": {
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "ban",
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Handler:     NewBanHandler(deps),
			Middleware:  adminOnly,
		},
		"/unban": {
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "unban",
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Handler:     NewUnbanHandler(deps),
			Middleware:  adminOnly,
		},
		"/add_room": {
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "add_room",
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Handler:     NewAddRoomHandler(deps),
			Middleware:  adminOnly,
		},
		"/reload_rooms": {
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     "reload_rooms",
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Handler:     NewReloadRoomsHandler(deps),
			Middleware:  adminOnly,
		},
	}
}
