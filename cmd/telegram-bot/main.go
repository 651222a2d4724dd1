package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/futig/spec-copilot/internal/builder"
)

func main() {
	bot, logger, err := builder.BuildTelegramBot()
	if err != nil {
		log.Fatal("Failed to build telegram bot:", err)
	}
	defer func() { _ = logger.Sync() }()

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Turns run on their own context so a signal lets them finish before Stop
	// gives up on them.
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Telegram bot is polling for updates")
		if err := bot.Start(context.Background()); err != nil {
			errChan <- err
		}
	}()

	exitCode := 0
	select {
	case <-signalCtx.Done():
		logger.Info("Shutdown signal received, draining in-flight turns")
	case err := <-errChan:
		logger.Error("Telegram bot failed to start", zap.Error(err))
		exitCode = 1
	}
	stop()

	// Stop waits for running turns, then closes the store and telemetry.
	if err := bot.Stop(); err != nil {
		logger.Error("Failed to stop telegram bot cleanly", zap.Error(err))
		exitCode = 1
	}
	logger.Info("Telegram bot stopped", zap.Int("exit_code", exitCode))

	if exitCode != 0 {
		_ = logger.Sync()
		os.Exit(exitCode)
	}
}
