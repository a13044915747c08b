// Command budgetwise-cli runs reports and data maintenance against the
// configured store without starting the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"budgetwise/internal/cli"
	"budgetwise/internal/core"
	"budgetwise/internal/log"
	"budgetwise/internal/services"
)

const usage = `usage: budgetwise-cli <command> [args]

commands:
  report [period]        summary for today, week, month (default), year or all
  recommendations        current savings recommendations
  trend [months]         monthly income and expenses, oldest first
  import <file.csv>      import a bank statement
  export [file.json]     write a snapshot (stdout when no file is given)
  restore <file.json>    replace the stored data with a snapshot
  clear -yes             delete every transaction and reset budgets
`

type app struct {
	transactions *services.TransactionService
	profile      *services.ProfileService
	insights     *services.InsightService
	out          io.Writer
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(cfg, log.ComponentCLI)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be := cli.InitBackend(ctx, logger, cfg)
	var events services.EventPublisher
	if be.Events != nil {
		events = be.Events
	}
	a := &app{
		transactions: services.NewTransactionService(be.Store, events,
			services.WithRules(cli.LoadRules(logger, cfg.CategoryRulesFile))),
		profile:  services.NewProfileService(be.Store, nil, nil),
		insights: services.NewInsightService(be.Store, nil, nil),
		out:      os.Stdout,
	}

	err := a.run(ctx, flag.Arg(0), flag.Args()[1:])
	if cleanupErr := be.Cleanup(); cleanupErr != nil {
		logger.Warn("Backend cleanup failed", "error", cleanupErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "report":
		period := core.PeriodMonth
		if len(args) > 0 {
			period = core.ParsePeriod(args[0])
		}
		return a.report(ctx, period)
	case "recommendations":
		return a.recommendations(ctx)
	case "trend":
		months := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid months %q", args[0])
			}
			months = n
		}
		return a.trend(ctx, months)
	case "import":
		if len(args) != 1 {
			return fmt.Errorf("import needs exactly one CSV file")
		}
		return a.importCSV(ctx, args[0])
	case "export":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return a.export(ctx, path)
	case "restore":
		if len(args) != 1 {
			return fmt.Errorf("restore needs exactly one snapshot file")
		}
		return a.restore(ctx, args[0])
	case "clear":
		fs := flag.NewFlagSet("clear", flag.ContinueOnError)
		yes := fs.Bool("yes", false, "confirm deleting all data")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if !*yes {
			return fmt.Errorf("clear deletes all data; pass -yes to confirm")
		}
		return a.profile.Clear(ctx)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

func (a *app) report(ctx context.Context, period core.Period) error {
	d, err := a.insights.Dashboard(ctx, period)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Period\t%s\n", d.Period)
	fmt.Fprintf(tw, "Balance\t%s\n", d.Balance)
	fmt.Fprintf(tw, "Income\t%s\n", d.PeriodIncome)
	fmt.Fprintf(tw, "Expenses\t%s\n", d.PeriodExpenses)
	fmt.Fprintf(tw, "Transactions\t%d\n", d.TransactionCount)
	fmt.Fprintf(tw, "Average daily\t%s\n", d.AverageDaily)
	fmt.Fprintf(tw, "Month-end forecast\t%s\n", d.Prediction.Predicted)
	if d.SavingsProgress != nil {
		fmt.Fprintf(tw, "Savings goal\t%.1f%%\n", *d.SavingsProgress)
	}
	if len(d.TopCategories) > 0 {
		fmt.Fprintln(tw, "\nTop categories\t")
		for _, c := range d.TopCategories {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Category, c.Amount)
		}
	}
	return tw.Flush()
}

func (a *app) recommendations(ctx context.Context) error {
	recs, total, err := a.insights.Recommendations(ctx)
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Fprintf(a.out, "[%s] %s\n  %s\n", r.Type, r.Title, r.Message)
	}
	fmt.Fprintf(a.out, "\nPotential savings: %s\n", total)
	return nil
}

func (a *app) trend(ctx context.Context, months int) error {
	buckets, err := a.insights.Trend(ctx, months)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tIncome\tExpenses\t")
	for _, b := range buckets {
		fmt.Fprintf(tw, "%s %d\t%s\t%s\t\n", b.Label, b.Year, b.Income, b.Expenses)
	}
	return tw.Flush()
}

func (a *app) importCSV(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	res, err := a.transactions.ImportCSV(ctx, f)
	if err == nil {
		fmt.Fprintf(a.out, "Imported %d transactions\n", len(res.Transactions))
	}
	for _, e := range res.Errors {
		fmt.Fprintf(a.out, "  skipped %v\n", e)
	}
	return err
}

func (a *app) export(ctx context.Context, path string) error {
	snap, err := a.profile.Export(ctx)
	if err != nil {
		return err
	}
	out := a.out
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func (a *app) restore(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if err := a.profile.ImportSnapshot(ctx, snap); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored %d transactions\n", len(snap.Transactions))
	return nil
}
