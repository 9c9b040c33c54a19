package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cashier/api"
	"cashier/config"
	"cashier/database"
	"cashier/events"
	"cashier/repository"
	"cashier/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run database migrations and start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Environment == "production" {
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.DebugLevel)
	}

	log.WithField("environment", cfg.Environment).Info("Starting cashier")

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return err
	}

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	eventBus := events.NewBus()
	subscribeEventLoggers(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	ledgerService := service.NewLedgerService(uowFactory)
	accountService := service.NewAccountService(uowFactory, ledgerService, cfg)
	requestService := service.NewRequestService(uowFactory, ledgerService, cfg)
	bettingService := service.NewBettingService(uowFactory, ledgerService,
		service.StreakDampenedProbability(0.48, 3, 0.03))

	var cache *service.ReportCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		cache = service.NewReportCache(redis.NewClient(opts), 5*time.Minute)
		log.Info("Dashboard report cache enabled")
	}
	reportingService := service.NewReportingService(uowFactory, cache)

	tokens := api.NewTokenService(cfg.JWTSecret)
	server := api.NewServer(cfg.HTTPAddr, tokens,
		accountService, requestService, ledgerService, bettingService, reportingService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// subscribeEventLoggers attaches audit logging to the domain events so
// every balance movement and decision leaves a trace in the logs even
// when no other consumer is registered.
func subscribeEventLoggers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.BalanceChangeEvent); ok {
			log.WithFields(log.Fields{
				"accountID":    ev.AccountID,
				"entryType":    ev.EntryType,
				"changeAmount": ev.ChangeAmount,
				"newBalance":   ev.NewBalance,
			}).Info("Balance changed")
		}
	})
	bus.Subscribe(events.EventTypeRequestDecided, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.RequestDecidedEvent); ok {
			log.WithFields(log.Fields{
				"requestID": ev.RequestID,
				"accountID": ev.AccountID,
				"kind":      ev.Kind,
				"status":    ev.Status,
				"decidedBy": ev.DecidedBy,
			}).Info("Request decided")
		}
	})
	bus.Subscribe(events.EventTypeReferralBonus, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.ReferralBonusEvent); ok {
			log.WithFields(log.Fields{
				"referrerID":  ev.ReferrerID,
				"referredID":  ev.ReferredID,
				"bonusAmount": ev.BonusAmount,
			}).Info("Referral bonus credited")
		}
	})
}
