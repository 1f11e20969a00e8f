package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/revisio/revisio/internal/quiz"
	"github.com/revisio/revisio/internal/server"
	"github.com/revisio/revisio/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ANTHROPIC_API_KEY in the environment enables quiz generation
	// without touching the config file.
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.Quiz.Provider == "" {
		cfg.Quiz.Provider = "anthropic"
		cfg.Quiz.AnthropicKey = key
	}

	// Resolve database path
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	srv := server.New(db, cfg, VersionString())

	if cfg.Quiz.Provider != "" {
		quizClient, err := quiz.NewClient(cfg.Quiz)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: quiz provider not usable (%v), generation disabled\n", err)
		} else {
			srv.SetQuizClient(quizClient)
			fmt.Fprintf(os.Stderr, "  quiz: %s\n", cfg.Quiz.Provider)
		}
	}

	addr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "revisio serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
