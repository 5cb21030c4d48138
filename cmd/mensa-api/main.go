// README: Entry point; loads config, wires infra and services, starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"mensa/internal/config"
	"mensa/internal/events"
	httptransport "mensa/internal/http"
	"mensa/internal/infra"
	"mensa/internal/maps"
	"mensa/internal/modules/cart"
	"mensa/internal/modules/catalog"
	"mensa/internal/modules/session"
	"mensa/internal/modules/ticket"
	"mensa/internal/telegram"
	"mensa/internal/types"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		log.Warnf("invalid MENSA_LOG_LEVEL %q, using %s", cfg.LogLevel, level)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Bot.Token == "" {
		log.Fatal("MENSA_BOT_TOKEN is required")
	}
	gateway, err := telegram.NewGateway(cfg.Bot.Token, types.ChatID(cfg.Chat.AuditChatID), log)
	if err != nil {
		log.Fatalf("telegram init: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	natsConn, err := infra.NewNATS(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats init: %v", err)
	}
	publisher := events.NewPublisher(natsConn)
	defer publisher.Close()

	var estimator ticket.Estimator
	if cfg.Maps.APIKey != "" {
		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		estimator = routeSvc
	}

	catalogStore := catalog.NewStore(dbPool)
	profileStore := session.NewStore(redisClient)
	customerCart := cart.New()

	ticketStore := ticket.NewPGStore(dbPool)
	ticketSvc := ticket.NewService(ticket.Deps{
		Store:       ticketStore,
		Gateway:     gateway,
		Resolver:    catalogStore,
		Profiles:    profileStore,
		Cart:        customerCart,
		Broadcaster: ticket.NewBroadcaster(gateway, ticketStore, log),
		Auditor:     ticket.NewAuditor(gateway, cfg.Chat, log),
		Publisher:   publisher,
		Estimator:   estimator,
		Chat:        cfg.Chat,
		Log:         log,
	})

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Tickets:       ticketSvc,
		Cart:          customerCart,
		Resolver:      catalogStore,
		Profiles:      profileStore,
		WebhookSecret: cfg.Bot.WebhookSecret,
		Log:           log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Infof("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
