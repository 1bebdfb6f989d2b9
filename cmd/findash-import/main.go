// Command findash-import loads a CSV export into the configured SQL or
// memory backend.
package main

import (
	"flag"
	"fmt"
	"os"

	"findash/internal/cli"
	"findash/internal/log"
	"findash/internal/services"
	"findash/internal/sources"
)

func main() {
	csvPath := flag.String("csv", "", "path of the CSV export to import")
	reset := flag.Bool("reset", false, "drop existing rows before importing")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(nil, log.ComponentStorage, os.Stderr)

	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: findash-import -csv <file> [-reset]")
		os.Exit(2)
	}

	if err := run(*csvPath, *reset, logger); err != nil {
		logger.Error("Import failed", log.Err(err))
		os.Exit(1)
	}
}

func run(path string, reset bool, logger *log.Logger) error {
	ctx, stop := cli.SignalContext()
	defer stop()

	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	store, backendCfg, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if store.Writer == nil {
		return fmt.Errorf("%w: backend %q", sources.ErrReadOnly, backendCfg.Type)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	admin := services.NewAdminService(store.Writer, nil, nil, logger)
	res, err := admin.ImportCSV(ctx, f, reset)
	if err != nil {
		return err
	}
	logger.Info("Import complete",
		log.FieldOperation, log.OpImport,
		log.FieldBackend, backendCfg.Type.String(),
		log.FieldRows, res.Inserted,
		"total", res.TotalCount)
	return nil
}
