package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/rjoostens/basalt/config"
	"github.com/rjoostens/basalt/http"
	"github.com/rjoostens/basalt/static"
	"github.com/rjoostens/basalt/telemetry"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logger, shutdown, err := telemetry.Setup(ctx, "basalt")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		return err
	}

	resolver, err := static.NewResolver(cfg.Root)
	if err != nil {
		return err
	}

	server := http.NewServer(cfg, resolver, logger)
	if err := server.Listen(); err != nil {
		return err
	}

	return server.Serve(ctx)
}
