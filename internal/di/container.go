package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/samber/do/v2"
	"github.com/samber/oops"

	alertRepo "github.com/campwatch/campsite-telegram-bot/internal/modules/alert/repository"
	feedService "github.com/campwatch/campsite-telegram-bot/internal/modules/feed/service"
	lookupDomain "github.com/campwatch/campsite-telegram-bot/internal/modules/lookup/domain"
	"github.com/campwatch/campsite-telegram-bot/internal/modules/lookup/recgov"
	monitorService "github.com/campwatch/campsite-telegram-bot/internal/modules/monitor/service"
	searchRepo "github.com/campwatch/campsite-telegram-bot/internal/modules/search/repository"
	searchService "github.com/campwatch/campsite-telegram-bot/internal/modules/search/service"
	"github.com/campwatch/campsite-telegram-bot/internal/shared/config"
	httpServer "github.com/campwatch/campsite-telegram-bot/internal/transport/http"
	telegramTransport "github.com/campwatch/campsite-telegram-bot/internal/transport/telegram"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Search Repository
	do.Provide(injector, func(i do.Injector) (searchRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := searchRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize search repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Alert Repository
	do.Provide(injector, func(i do.Injector) (alertRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := alertRepo.NewFileStorage(cfg.StoragePath, cfg.AlertHistorySize)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize alert repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Search Service
	do.Provide(injector, func(i do.Injector) (*searchService.Service, error) {
		repo := do.MustInvoke[searchRepo.Repository](i)
		return searchService.New(repo), nil
	})

	// Register Availability Checker (recreation.gov client)
	do.Provide(injector, func(i do.Injector) (lookupDomain.Checker, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return recgov.New(cfg.RecGovAPIURL, time.Duration(cfg.RequestTimeout)*time.Second), nil
	})

	// Register Monitor Service
	do.Provide(injector, func(i do.Injector) (*monitorService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sRepo := do.MustInvoke[searchRepo.Repository](i)
		sSvc := do.MustInvoke[*searchService.Service](i)
		checker := do.MustInvoke[lookupDomain.Checker](i)
		aRepo := do.MustInvoke[alertRepo.Repository](i)
		return monitorService.New(cfg, sRepo, sSvc, checker, aRepo), nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		aRepo := do.MustInvoke[alertRepo.Repository](i)
		return feedService.New(aRepo), nil
	})

	// Register Telegram Notifier
	do.Provide(injector, func(i do.Injector) (*telegramTransport.Notifier, error) {
		return telegramTransport.NewNotifier(), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramTransport.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sSvc := do.MustInvoke[*searchService.Service](i)
		mSvc := do.MustInvoke[*monitorService.Service](i)
		return telegramTransport.NewHandler(cfg, sSvc, mSvc), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		fSvc := do.MustInvoke[*feedService.Service](i)
		server := httpServer.New(cfg, fSvc)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Bot (needs to be initialized after handlers are ready)
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegramTransport.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		// Register bot commands
		handler.RegisterCommands(b)

		// Wire the notifier into the monitor once the bot exists
		notifier := do.MustInvoke[*telegramTransport.Notifier](i)
		notifier.SetBot(b)
		do.MustInvoke[*monitorService.Service](i).SetNotifier(notifier)

		return b, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx := context.Background()

	// Shutdown bot if it exists
	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		b.Close(ctx)
	}

	// Shutdown monitor service if it exists
	if monitorSvc, err := do.Invoke[*monitorService.Service](injector); err == nil && monitorSvc != nil {
		monitorSvc.Stop()
	}

	return nil
}
