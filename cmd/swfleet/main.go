// Command swfleet fetches the Star Wars films and their starships and lets
// you browse them from the terminal or over a small JSON API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/SobhanAbedi/swfleet/internal/config"
	"github.com/SobhanAbedi/swfleet/pkg/client"
	"github.com/SobhanAbedi/swfleet/pkg/logging"
	"github.com/SobhanAbedi/swfleet/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries what the subcommands share once flags are parsed.
type app struct {
	configFile string
	baseURL    string
	logLevel   string

	cfg config.Config
	rdb *redis.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "swfleet",
		Short: "Browse Star Wars films and the starships they feature",
		Long: `swfleet fetches the six Star Wars films from the Star Wars API together
with every starship they reference, fetching each starship once no matter
how many films mention it.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (SWFLEET_BASE_URL, SWFLEET_PAGE_SIZE, ...)
3. Config file (--config)
4. Defaults

Examples:
  # List the films
  swfleet films

  # Second page of starships in Return of the Jedi
  swfleet starships 6 --page 2

  # Serve the JSON API against a local mirror
  SWFLEET_BASE_URL=http://localhost:9000/api/ swfleet serve`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "API base address (default https://swapi.dev/api/)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error")

	rootCmd.AddCommand(
		newFilmsCmd(a),
		newStarshipsCmd(a),
		newStarshipCmd(a),
		newServeCmd(a),
	)

	return rootCmd
}

// setup resolves configuration, configures logging and connects Redis when
// a cache address is set.
func (a *app) setup(cmd *cobra.Command) error {
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return err
	}
	flags := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("base_url", flags.Lookup("base-url")); err != nil {
		return err
	}
	if err := v.BindPFlag("log.level", flags.Lookup("log-level")); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg

	logCfg := cfg.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Setup(logCfg)

	if cfg.CacheEnabled() {
		rdb := redis.NewClient(cfg.RedisOptions())
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.rdb = rdb
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Response cache enabled")
	}

	return nil
}

func (a *app) close() {
	if a.rdb != nil {
		a.rdb.Close()
		a.rdb = nil
	}
}

// newSession builds an empty session against the configured API.
func (a *app) newSession() (*session.Session, error) {
	c, err := client.New(a.cfg.ClientConfig(a.rdb))
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return session.New(c, a.cfg.SessionConfig())
}

// loadSession builds a session and fetches the full film graph into it.
func (a *app) loadSession(ctx context.Context) (*session.Session, error) {
	s, err := a.newSession()
	if err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
