package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pawpal/internal/config"
	"pawpal/internal/dialogue"
	"pawpal/internal/draftstore"
	"pawpal/internal/extractor"
	"pawpal/internal/llm"
	"pawpal/internal/logging"
	"pawpal/internal/observability"
	"pawpal/internal/petcatalog"
	"pawpal/internal/reminderstore"
	"pawpal/internal/server"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "pawpal-server",
		Short: "Conversational reminder service for pet care",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "pawpal.yaml", "path to config file")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := logging.NewComponentLogger("pawpal")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shutdownTracing, err := observability.SetupTracing(ctx, "pawpal", cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (or set PAWPAL_DATABASE_DSN)")
	}
	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	primary := reminderstore.NewPostgresStore(pool)
	if err := primary.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	var store reminderstore.Store = primary
	if cfg.Legacy.Enabled {
		legacy, err := reminderstore.NewLegacyFileStore(cfg.Legacy.Dir)
		if err != nil {
			return err
		}
		store = reminderstore.NewMirroredStore(primary, legacy, logging.NewComponentLogger("legacy-mirror"))
	}

	drafts, err := draftstore.NewFileStore(cfg.Drafts.Dir,
		time.Duration(cfg.Drafts.MaxAgeHours)*time.Hour,
		logging.NewComponentLogger("drafts"))
	if err != nil {
		return err
	}

	catalog := petcatalog.NewCachedReader(
		petcatalog.NewPostgresReader(pool),
		512, 5*time.Minute,
		logging.NewComponentLogger("catalog"),
	)

	client := llm.NewOpenAIClient(cfg.LLM, logging.NewComponentLogger("llm"))
	fields := extractor.NewLLMExtractor(client, logging.NewComponentLogger("extractor"))

	tz := dialogue.TimezoneLookupFunc(func(ctx context.Context, userID string) (string, error) {
		var zone string
		err := pool.QueryRow(ctx,
			`SELECT COALESCE(timezone, '') FROM user_profiles WHERE id = $1`, userID).Scan(&zone)
		return zone, err
	})

	service := dialogue.NewService(catalog, fields, store, drafts, tz, dialogue.Config{
		MaxTurns:       cfg.Dialogue.MaxTurns,
		ExtractTimeout: time.Duration(cfg.Dialogue.ExtractTimeoutSeconds) * time.Second,
	}, logging.NewComponentLogger("dialogue"))

	srv := server.New(service, cfg.Server, logging.NewComponentLogger("http"))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadConfig layers the YAML file under PAWPAL_* environment overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetEnvPrefix("PAWPAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dsn := v.GetString("database.dsn"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if key := v.GetString("llm.api_key"); key != "" {
		cfg.LLM.APIKey = key
	}
	if base := v.GetString("llm.base_url"); base != "" {
		cfg.LLM.BaseURL = base
	}
	if model := v.GetString("llm.model"); model != "" {
		cfg.LLM.Model = model
	}
	if addr := v.GetString("server.addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if endpoint := v.GetString("telemetry.otlp_endpoint"); endpoint != "" {
		cfg.Telemetry.OTLPEndpoint = endpoint
	}
	return cfg, nil
}
