package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"climate-server/internal/config"
	"climate-server/internal/dataset"
	"climate-server/internal/db"
	"climate-server/internal/logging"
	"climate-server/internal/migrate"
)

const (
	appName = "climate-tools"
	version = "dev"
	usage   = `usage: %s <command>
  migrate                                  apply pending schema migrations
  import <stations.csv> <measurements.csv> load the dataset (runs migrate first)
`
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "dotenv error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	// The tools are the only writers.
	cfg.ReadOnly = false
	slog.SetDefault(logging.New(cfg, version, appName))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, usage, os.Args[0])
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid arguments")

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "migrate":
		if len(args) != 1 {
			return errUsage
		}
	case "import":
		if len(args) != 3 {
			return errUsage
		}
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	if err := migrate.Run(ctx, conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if args[0] == "migrate" {
		_, err := fmt.Fprintln(out, "migrations applied")
		return err
	}

	stations, err := readFile(args[1], dataset.ReadStations)
	if err != nil {
		return err
	}
	observations, err := readFile(args[2], dataset.ReadObservations)
	if err != nil {
		return err
	}
	res, err := dataset.Import(ctx, conn, stations, observations)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	_, err = fmt.Fprintf(out, "imported %d stations, %d observations\n", res.Stations, res.Observations)
	return err
}

func readFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	rows, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
