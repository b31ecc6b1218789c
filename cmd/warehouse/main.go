package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"fulfillment/pkg/config"
	"fulfillment/pkg/messaging"
	"fulfillment/pkg/metrics"
	"fulfillment/pkg/warehouse"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:   "warehouse",
		Usage:  "warehouse order consumer",
		Action: runWarehouse,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("warehouse service failed")
	}
}

func runWarehouse(_ *cli.Context) error {
	cfg, err := config.LoadWarehouse()
	if err != nil {
		return err
	}

	conn, err := messaging.Dial(cfg.AMQP.URI)
	if err != nil {
		return err
	}
	defer conn.Close()

	statistics := warehouse.NewStatistics()
	m := metrics.NewMessaging(prometheus.DefaultRegisterer)

	consumer := messaging.NewConsumer(
		conn,
		messaging.Topology{
			Queue:      cfg.AMQP.Queue,
			Exchange:   cfg.AMQP.Exchange,
			RoutingKey: cfg.AMQP.RoutingKey,
		},
		messaging.ConsumerConfig{Workers: cfg.Workers, Prefetch: cfg.Prefetch},
		warehouse.NewOrderProcessor(statistics),
		m,
	)

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.WithField("addr", cfg.HTTPAddr).Info("serving metrics")
		if err := http.ListenAndServe(cfg.HTTPAddr, nil); err != nil {
			log.WithError(err).Error("metrics server stopped")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitForKillSignal()
		cancel()
	}()

	err = consumer.Run(ctx)
	statistics.LogSummary()
	return err
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
