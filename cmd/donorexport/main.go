// Command donorexport writes the donor list as CSV through the same storage
// stack the API uses.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"bloodlink/internal/app"
	"bloodlink/internal/domain"
	"bloodlink/internal/infra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "donorexport: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	var (
		outFlag     string
		envFileFlag string
		timeoutFlag time.Duration
		localOnly   bool
	)

	pflag.StringVarP(&outFlag, "out", "o", "-", "output file, - for stdout")
	pflag.StringVar(&envFileFlag, "env-file", ".env", "optional dotenv file to load before reading the environment")
	pflag.DurationVar(&timeoutFlag, "timeout", 30*time.Second, "overall time limit")
	pflag.BoolVar(&localOnly, "local", false, "read local storage only, skipping the remote service")
	pflag.Parse()

	_ = godotenv.Load(envFileFlag)

	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	if localOnly {
		cfg.RemoteBackend = infra.RemoteNone
	}
	logger := infra.NewCLILogger(cfg.AppEnv).With().Str("cmd", "donorexport").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	stack, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := stack.Close(context.Background()); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close storage: %w", closeErr))
		}
	}()

	n, err := export(ctx, stack, outFlag)
	if errors.Is(err, domain.ErrNoDonors) {
		fmt.Fprintln(os.Stderr, "no donors to export")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info().Int("donors", n).Str("out", outFlag).Str("storage", stack.Facade.Mode()).Msg("export complete")
	return nil
}

// export writes the CSV to out, or stdout for "-". A file is only reported
// as written once it has been flushed and closed without error.
func export(ctx context.Context, stack *app.Stack, out string) (int, error) {
	if out == "-" || out == "" {
		return writeCSV(ctx, stack, os.Stdout)
	}
	f, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	n, err := writeCSV(ctx, stack, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close output: %w", closeErr)
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

func writeCSV(ctx context.Context, stack *app.Stack, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	n, err := stack.Donors.ExportCSV(ctx, bw)
	if err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("write output: %w", err)
	}
	return n, nil
}
