// Package main contains the entrypoint for the askbridge Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/redis/go-redis/v9"

	"github.com/clubware/askbridge/internal/bot"
	"github.com/clubware/askbridge/internal/bot/handlers"
	"github.com/clubware/askbridge/internal/bot/tasks"
	"github.com/clubware/askbridge/internal/config"
	"github.com/clubware/askbridge/internal/conversation"
	"github.com/clubware/askbridge/internal/database"
	"github.com/clubware/askbridge/internal/directory"
	"github.com/clubware/askbridge/internal/logger"
	"github.com/clubware/askbridge/internal/publish"
	"github.com/clubware/askbridge/internal/router"
	"github.com/clubware/askbridge/internal/session"
	"github.com/clubware/askbridge/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components in dependency order, starts the bot, and
// returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var (
		sessions   session.Store
		memorySess *session.Memory
	)
	switch cfg.Session.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.Redis.Addr,
			Password: cfg.Session.Redis.Password,
			DB:       cfg.Session.Redis.DB,
		})
		defer client.Close()

		redisSess, err := session.NewRedis(ctx, client, cfg.Session.TTL)
		if err != nil {
			log.Error("Failed to connect to redis session store", "addr", cfg.Session.Redis.Addr, "error", err)
			return 1
		}
		sessions = redisSess
		log.Info("Using redis session store", "addr", cfg.Session.Redis.Addr, "ttl", cfg.Session.TTL)
	default:
		memorySess = session.NewMemory(cfg.Session.TTL)
		sessions = memorySess
		log.Info("Using in-memory session store", "ttl", cfg.Session.TTL)
	}

	rooms, err := directory.NewRooms(ctx, store, log)
	if err != nil {
		log.Error("Failed to load room directory", "error", err)
		return 1
	}

	// The dispatch handler needs the sender, which wraps the bot; bind the
	// dependencies after construction. Handlers only fire once the bot
	// starts, so the late binding is safe.
	var deps handlers.HandlerDeps
	defaultHandler := func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		handlers.NewDispatchHandler(deps)(ctx, b, update)
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(defaultHandler),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	sender := telegram.NewSender(tg, log)
	machine := conversation.NewMachine(rooms, conversationTexts(cfg.Bot.Messages))
	publisher := publish.NewPublisher(store, sender, rooms, cfg.Telegram.ChannelID, cfg.Bot.EditRoomBacklink, log)
	replyRouter := router.NewRouter(store, sender, rooms, cfg.Telegram.ChannelID, cfg.Telegram.DiscussionChatID, log)
	relay := router.NewRelay(store, cfg.Telegram.ChannelID, cfg.Telegram.DiscussionChatID, log)

	deps = handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Sessions:  sessions,
		Machine:   machine,
		Publisher: publisher,
		Router:    replyRouter,
		Relay:     relay,
		Rooms:     rooms,
		Sender:    sender,
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(deps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	taskDeps := tasks.TaskDeps{
		Logger:         log,
		Store:          store,
		Config:         cfg,
		MemorySessions: memorySess,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(taskDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}

// conversationTexts maps the configured message strings onto the state
// machine's text set.
func conversationTexts(m config.MessagesConfig) conversation.Texts {
	return conversation.Texts{
		Menu:         m.Menu,
		PromptTitle:  m.PromptTitle,
		PromptBody:   m.PromptBody,
		PromptTags:   m.PromptTags,
		PromptRoom:   m.PromptRoom,
		Confirm:      m.Confirm,
		TitleMissing: m.TitleMissing,
		BodyMissing:  m.BodyMissing,
		TitleTooLong: m.TitleTooLong,
		BodyTooLong:  m.BodyTooLong,
		Fallback:     m.Fallback,
		Cancelled:    m.Cancelled,
	}
}
