// Command fintrack-import appends every row of a bank export to an account.
//
// Usage:
//
//	fintrack-import -file statement.csv -account a1 [-mode personal]
//	                [-delimiter ,] [-date 0] [-description 1] [-amount 2] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"fintrack/internal/amqp"
	"fintrack/internal/app"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/importer"
	"fintrack/internal/log"
)

type options struct {
	file      string
	account   string
	mode      string
	delimiter string
	mapping   importer.Mapping
	dryRun    bool
}

func parseFlags(args []string) (options, error) {
	var o options
	def := importer.DefaultMapping()
	fs := flag.NewFlagSet("fintrack-import", flag.ContinueOnError)
	fs.StringVar(&o.file, "file", "", "path of the delimited file to import")
	fs.StringVar(&o.account, "account", "", "id of the account receiving the rows")
	fs.StringVar(&o.mode, "mode", "personal", "personal or business")
	fs.StringVar(&o.delimiter, "delimiter", ",", `column delimiter, "tab" for tabs`)
	fs.IntVar(&o.mapping.Date, "date", def.Date, "date column index")
	fs.IntVar(&o.mapping.Description, "description", def.Description, "description column index")
	fs.IntVar(&o.mapping.Amount, "amount", def.Amount, "amount column index")
	fs.BoolVar(&o.dryRun, "dry-run", false, "print the mapped rows without saving")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.file == "" || o.account == "" {
		return o, fmt.Errorf("-file and -account are required")
	}
	return o, o.mapping.Validate()
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute returns the process exit code so deferred cleanup always runs.
func execute(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	cfg, logger := cli.Bootstrap()
	logger = logger.WithComponent(log.ComponentImport)
	ctx := context.Background()

	res, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return 1
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	}()

	appOpts := []app.Option{app.WithKey(cfg.StorageKey), app.WithLogger(logger)}
	if cfg.AMQPEnabled() && !opts.dryRun {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, the worker will not be notified", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			appOpts = append(appOpts, app.WithPublisher(amqpClient))
		}
	}
	ctrl := app.New(res.Store, appOpts...)

	if err := run(ctx, ctrl, opts, logger); err != nil {
		logger.Error("Import failed", log.FieldError, err, "file", opts.file)
		return 1
	}
	return 0
}

func run(ctx context.Context, ctrl *app.Controller, opts options, logger *log.Logger) error {
	if err := ctrl.Load(ctx); err != nil {
		return err
	}
	mode, err := core.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	delim, err := importer.ParseDelimiter(opts.delimiter)
	if err != nil {
		return err
	}
	doc, _ := ctrl.Snapshot()
	if _, ok := doc.Account(opts.account); !ok {
		return fmt.Errorf("account %q: %w", opts.account, app.ErrNotFound)
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	grid, err := importer.ReadGrid(f, delim, 0)
	if err != nil {
		return err
	}
	txs := importer.Map(grid, opts.mapping, opts.account, mode, nil)

	if opts.dryRun {
		for _, t := range txs {
			fmt.Printf("%s\t%s\t%s\n", t.Date, t.Amount.StringFixed(2), t.Description)
		}
		logger.Info("Dry run, nothing saved", log.FieldCount, len(txs))
		return nil
	}

	n, err := ctrl.ImportTransactions(ctx, txs)
	if err != nil {
		return err
	}
	logger.Info("Transactions imported",
		log.FieldOperation, log.OpImport,
		log.FieldAccountID, opts.account,
		log.FieldCount, n,
		"skipped", max(len(grid)-1, 0)-n)
	return nil
}
