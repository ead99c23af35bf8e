package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-sites/cmd/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("sites server: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sites-server", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML config file (environment variables override it)")
	envFile := fs.String("env-file", ".env", "Optional dotenv file loaded before the config")
	addr := fs.String("addr", "", "Listen address, overrides server.addr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := bootstrap.BuildModule(ctx, bootstrap.Options{
		ConfigPath: *configPath,
		EnvFiles:   []string{*envFile},
	})
	if err != nil {
		return err
	}
	defer module.Close()

	handler, err := module.Module.HTTP().Handler()
	if err != nil {
		return fmt.Errorf("build http handler: %w", err)
	}

	serverCfg := module.Config.Server
	if *addr != "" {
		serverCfg.Addr = *addr
	}
	server := &http.Server{
		Addr:         serverCfg.Addr,
		Handler:      handler,
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		module.Logger.Info("server.listening", "addr", serverCfg.Addr, "storage", module.Config.StorageDriver())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()
	module.Logger.Info("server.shutdown")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
