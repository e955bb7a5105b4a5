package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/onchaincommerce/onchaincommerce/config"
	"github.com/onchaincommerce/onchaincommerce/logger"
	"github.com/onchaincommerce/onchaincommerce/relay"
)

func main() {
	cfg := config.FromEnv()
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
		log.Fatal("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE_NUMBER must be set")
	}

	zlog := logger.NewZapLogger(cfg.LogLevel)
	sender := relay.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	server := relay.New(cfg.HTTPAddr, zlog, sender)

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("relay listening", map[string]any{"addr": cfg.HTTPAddr})
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			zlog.Error("shutdown error", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		zlog.Info("relay stopped", nil)
	}
}
