package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/contestsync/go/internal/models"
)

const usage = `usage: contestsync [-config path] <command> [args]

commands:
  list                  list contests grouped by title
  join <contest-id>     join a contest
  watch <contest-id>    refresh a contest until interrupted
  countdown [RFC3339]   count down to a match start (resumes the saved one if omitted)
`

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	configPath := flag.String("config", getEnv("CONTESTSYNC_CONFIG", defaultConfigPath), "path to YAML config")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	services, err := setupServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up services")
	}
	defer services.Close()

	if cfg.MetricsPort != 0 {
		serveMetrics(ctx, setupServer(cfg.MetricsPort, services.Registry))
	}

	log.Debug().
		Str("api", cfg.API.BaseURL).
		Str("user_id", cfg.API.UserID).
		Str("storage", cfg.Storage.Backend).
		Str("command", args[0]).
		Msg("starting contestsync")

	if err := run(ctx, services, cfg, args); err != nil {
		log.Error().Err(err).Str("command", args[0]).Msg("command failed")
		services.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, s *Services, cfg *Config, args []string) error {
	out := os.Stdout

	switch args[0] {
	case "list":
		return runList(ctx, out, s)
	case "join":
		id, err := contestArg(args)
		if err != nil {
			return err
		}
		return runJoin(ctx, out, s, id)
	case "watch":
		id, err := contestArg(args)
		if err != nil {
			return err
		}
		return runWatch(ctx, out, s, id, cfg.API.RefreshEach)
	case "countdown":
		var target time.Time
		if len(args) > 1 {
			t, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid target %q: %w", args[1], err)
			}
			target = t
		}
		return runCountdown(ctx, out, s, target)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func contestArg(args []string) (models.ContestID, error) {
	if len(args) < 2 || args[1] == "" {
		return "", fmt.Errorf("%s requires a contest id", args[0])
	}
	return models.ContestID(args[1]), nil
}
