package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/fogeapi-client/account"
	"github.com/jrsteele09/fogeapi-client/api"
	"github.com/jrsteele09/fogeapi-client/auth"
	"github.com/jrsteele09/fogeapi-client/credentials"
	"github.com/jrsteele09/fogeapi-client/credentials/storagefactory"
	"github.com/jrsteele09/fogeapi-client/internal/config"
	"github.com/jrsteele09/fogeapi-client/server"
	"github.com/jrsteele09/fogeapi-client/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := storagefactory.Open(ctx, c)
	if err != nil {
		return fmt.Errorf("storagefactory.Open: %w", err)
	}
	store := credentials.NewStore(storage)
	defer func() {
		if err := store.Close(); err != nil {
			log.Err(err).Msg("[main] closing credential storage")
		}
	}()

	httpClient := &http.Client{Timeout: c.GetRequestTimeout()}
	authClient := api.NewAuthClient(c.GetAPIBaseURL(), httpClient)
	navigator := server.NewNavigator()

	controller, err := auth.NewController(store, authClient,
		auth.WithLeeway(c.GetTokenLeeway()),
		auth.WithNavigator(navigator),
		auth.WithSignInRoute(c.GetSignInRoute()),
	)
	if err != nil {
		return fmt.Errorf("auth.NewController: %w", err)
	}
	defer controller.Close()

	resourceClient := transport.New(controller, httpClient.Transport).Client()
	resourceClient.Timeout = c.GetRequestTimeout()
	client := api.NewClient(c.GetAPIBaseURL(), resourceClient)
	handler, err := server.New(c, controller, account.NewService(authClient, controller), client, navigator)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	go func() {
		controller.Start(ctx)
		controller.Watch(ctx, c.GetRevalidateInterval())
	}()

	srv := &http.Server{Addr: c.GetPort(), Handler: handler}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(srv)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
