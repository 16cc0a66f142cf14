package handlers

import (
	"log/slog"

	"github.com/clubware/askbridge/internal/config"
	"github.com/clubware/askbridge/internal/conversation"
	"github.com/clubware/askbridge/internal/database"
	"github.com/clubware/askbridge/internal/directory"
	"github.com/clubware/askbridge/internal/publish"
	"github.com/clubware/askbridge/internal/router"
	"github.com/clubware/askbridge/internal/session"
	"github.com/clubware/askbridge/internal/telegram"
)

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Sessions  session.Store
	Machine   *conversation.Machine
	Publisher *publish.Publisher
	Router    *router.Router
	Relay     *router.Relay
	Rooms     *directory.Rooms
	Sender    telegram.Sender
}
