package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"fulfillment/pkg/cart/model"
	"fulfillment/pkg/cart/service"
	"fulfillment/pkg/cca"
	"fulfillment/pkg/config"
	"fulfillment/pkg/messaging"
	"fulfillment/pkg/metrics"
	"fulfillment/pkg/transport"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:   "cartservice",
		Usage:  "shopping cart and checkout service",
		Action: runCartService,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("cart service failed")
	}
}

func runCartService(_ *cli.Context) error {
	cfg, err := config.LoadCartService()
	if err != nil {
		return err
	}

	m := metrics.NewMessaging(prometheus.DefaultRegisterer)

	var publisher service.OrderPublisher = nopPublisher{}
	if cfg.PublishEnabled {
		conn, err := messaging.Dial(cfg.AMQP.URI)
		if err != nil {
			return err
		}
		defer conn.Close()

		producer, err := messaging.NewProducer(conn, messaging.Topology{
			Queue:      cfg.AMQP.Queue,
			Exchange:   cfg.AMQP.Exchange,
			RoutingKey: cfg.AMQP.RoutingKey,
		}, m)
		if err != nil {
			return err
		}
		defer producer.Close()

		publisher = producer
	} else {
		log.Warn("publishing is disabled, orders will not reach the warehouse")
	}

	store := service.NewCartStore()
	authorizer := cca.NewClient(cfg.CCAURL, cfg.CCATimeout)
	checkout := service.NewCheckoutService(store, authorizer, publisher, cfg.FirstOrderID)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: transport.Router(store, checkout),
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("starting cart service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	waitForKillSignal()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type nopPublisher struct{}

func (nopPublisher) Publish(order model.Order) error {
	log.WithField("orderID", order.ID).Warn("publishing disabled, order not sent to warehouse")
	return nil
}

func waitForKillSignal() {
	killSignalChan := make(chan os.Signal, 1)
	signal.Notify(killSignalChan, os.Interrupt, syscall.SIGTERM)

	switch <-killSignalChan {
	case os.Interrupt:
		log.Info("got SIGINT...")
	case syscall.SIGTERM:
		log.Info("got SIGTERM...")
	}
}
