package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/daybook/internal/httpapi"
	"github.com/rcliao/daybook/internal/journal"
)

const shutdownTimeout = 10 * time.Second

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the finalize schedule",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")

	a := mustOpenApp()
	defer a.Close()
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	bridge, err := a.bridge()
	if err != nil {
		exitErr("open migration source", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, err := journal.NewScheduler(a.pipeline, a.cfg.Schedule, a.loc, a.clock, a.logger)
	if err != nil {
		exitErr("schedule", err)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	srv := &http.Server{
		Addr: addr,
		Handler: httpapi.New(httpapi.Deps{
			Chat:     a.chat,
			Pipeline: a.pipeline,
			Store:    a.store,
			Bridge:   bridge,
			Logger:   a.logger,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", addr, "backend", a.cfg.Archive.Backend, "provider", a.cfg.Synthesis.Provider)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			exitErr("serve", err)
		}
	case <-ctx.Done():
		a.logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			a.logger.Error("shutdown", "error", err)
		}
	}
	stop()
	wg.Wait()
}
