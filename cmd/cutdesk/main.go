// CutDesk: cut-to-length register for a hardware store counter
//
// Serves the register API and offers the maintenance tasks a store
// manager runs from a terminal.
//
// Build:
//   go build -o cutdesk ./cmd/cutdesk
//
// Usage:
//   cutdesk serve
//   cutdesk alerts
//   cutdesk reorder -pdf orders.pdf
//   cutdesk reorder -ids 1,2 -code MANAGER2024 -xlsx orders.xlsx
//   cutdesk import catalog.csv
//   cutdesk backup backup.json
//   cutdesk restore backup.json
//   cutdesk ticket <jobID|orderCode> ticket.pdf

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/piwi3910/cutdesk/internal/api"
	"github.com/piwi3910/cutdesk/internal/config"
	"github.com/piwi3910/cutdesk/internal/export"
	"github.com/piwi3910/cutdesk/internal/importer"
	"github.com/piwi3910/cutdesk/internal/model"
	"github.com/piwi3910/cutdesk/internal/reorder"
	"github.com/piwi3910/cutdesk/internal/store"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const usage = `usage: cutdesk <command> [arguments]

commands:
  serve                     run the register API
  alerts                    list materials at or below their reorder threshold
  reorder [flags]           plan purchase orders for alerts, or bulk reorder -ids
  import <file>             merge a CSV or XLSX material catalog
  backup <file>             write every collection to a backup file
  restore <file>            replace every collection from a backup file
  ticket <job> <file>       render a job ticket PDF
`

// app bundles what every command needs.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	store     *store.Store
	appConfig model.AppConfig
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code. Cleanup is
// deferred here so it runs before main exits.
func run(argv []string) int {
	if len(argv) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	cmd, args := argv[0], argv[1:]
	switch cmd {
	case "help", "-h", "--help":
		fmt.Print(usage)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}
	logger, err := config.NewLogger(cfg.LogLevel, cfg.GoEnv)
	if err != nil {
		log.Printf("Failed to init logger: %v", err)
		return 1
	}
	defer logger.Sync()

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", zap.Error(err))
		return 1
	}
	defer a.store.Close()

	switch cmd {
	case "serve":
		err = a.serve(args)
	case "alerts":
		err = a.alerts(args)
	case "reorder":
		err = a.reorder(args)
	case "import":
		err = a.importCatalog(args)
	case "backup":
		err = a.backup(args)
	case "restore":
		err = a.restore(args)
	case "ticket":
		err = a.ticket(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "cutdesk %s: %v\n", cmd, err)
		return 1
	}
	return 0
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	storage, err := store.Open(cfg.Storage, cfg.DataDir)
	if err != nil {
		return nil, err
	}
	appConfig, err := store.LoadAppConfig(store.AppConfigPath(cfg.DataDir))
	if err != nil {
		logger.Warn("Failed to load app config, using defaults", zap.Error(err))
		appConfig = model.DefaultAppConfig()
	}
	return &app{
		cfg:       cfg,
		log:       logger,
		store:     store.New(storage, store.WithLogger(logger)),
		appConfig: appConfig,
	}, nil
}

func (a *app) engine() *reorder.Engine {
	return reorder.New(a.store.Materials(), a.cfg.ManagerCode, a.log)
}

func (a *app) recordExport(path string) {
	a.appConfig.AddRecentExport(path)
	if err := store.SaveAppConfig(store.AppConfigPath(a.cfg.DataDir), a.appConfig); err != nil {
		a.log.Warn("Failed to save app config", zap.Error(err))
	}
}

func (a *app) serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", a.cfg.Port, "listen port")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	fs.Parse(args)

	a.log.Info("Starting CutDesk",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("storage", a.cfg.Storage),
		zap.String("data_dir", a.cfg.DataDir),
		zap.String("env_file", a.cfg.EnvFile()),
	)

	handler := api.NewHandler(a.store, a.engine(), a.appConfig, a.log)
	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      api.NewRouter(handler, a.log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server starting", zap.String("port", *port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	a.log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), *shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.log.Info("Server exited")
	return nil
}

func (a *app) alerts(args []string) error {
	fs := flag.NewFlagSet("alerts", flag.ExitOnError)
	fs.Parse(args)

	alerts, err := a.engine().Alerts()
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Println("All materials are above their reorder threshold.")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMATERIAL\tSTOCK\tTHRESHOLD\tSUPPLIER\tSEVERITY")
	for _, al := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%s\t%s\n",
			al.MaterialID, al.MaterialName, al.CurrentStock, al.ReorderThreshold, al.Supplier, al.Severity)
	}
	return tw.Flush()
}

func (a *app) reorder(args []string) error {
	fs := flag.NewFlagSet("reorder", flag.ExitOnError)
	code := fs.String("code", "", "manager authorization code, required with -ids")
	ids := fs.String("ids", "", "comma separated material ids to bulk reorder (default: every alerting material)")
	pdfPath := fs.String("pdf", "", "write the purchase orders to this PDF")
	xlsxPath := fs.String("xlsx", "", "write the purchase orders to this XLSX workbook")
	fs.Parse(args)

	engine := a.engine()
	var (
		orders []model.SupplierOrder
		err    error
	)
	if *ids != "" {
		var selected []string
		for _, id := range strings.Split(*ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				selected = append(selected, id)
			}
		}
		orders, err = engine.BulkReorder(selected, *code)
	} else {
		orders, err = engine.PlanAlerts()
	}
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("All materials are above their reorder threshold.")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("%s  %-30s  %d items  %s\n", o.Number, o.Supplier, len(o.Items), formatMoney(o.TotalCost))
	}
	fmt.Printf("Grand total: %s\n", formatMoney(model.GrandTotal(orders)))

	if *pdfPath != "" {
		if err := export.ExportPurchaseOrdersPDF(*pdfPath, orders, a.appConfig, time.Now()); err != nil {
			return err
		}
		a.recordExport(*pdfPath)
		fmt.Printf("Wrote %s\n", *pdfPath)
	}
	if *xlsxPath != "" {
		if err := export.ExportPurchaseOrdersXLSX(*xlsxPath, orders); err != nil {
			return err
		}
		a.recordExport(*xlsxPath)
		fmt.Printf("Wrote %s\n", *xlsxPath)
	}
	return nil
}

func (a *app) importCatalog(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: cutdesk import <file>")
	}
	result := importer.ImportFile(args[0])
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	if len(result.Materials) == 0 {
		return errors.New("no valid materials found")
	}
	added, err := a.store.Materials().Merge(result.Materials)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d of %d materials (%d skipped as duplicates)\n",
		added, len(result.Materials), len(result.Materials)-added)
	return nil
}

func (a *app) backup(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: cutdesk backup <file>")
	}
	if err := store.ExportAllData(args[0], a.store, a.appConfig); err != nil {
		return err
	}
	a.recordExport(args[0])
	fmt.Printf("Wrote %s\n", args[0])
	return nil
}

func (a *app) restore(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: cutdesk restore <file>")
	}
	backup, err := store.ImportAllData(args[0])
	if err != nil {
		return err
	}
	if err := a.store.Restore(backup); err != nil {
		return err
	}
	if err := store.SaveAppConfig(store.AppConfigPath(a.cfg.DataDir), backup.Config); err != nil {
		return err
	}
	fmt.Printf("Restored %d materials and %d jobs from %s\n", len(backup.Materials), len(backup.Jobs), args[0])
	return nil
}

func (a *app) ticket(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: cutdesk ticket <job> <file>")
	}
	job, err := a.store.Jobs().Get(args[0])
	var nf *model.NotFoundError
	if errors.As(err, &nf) && model.IsOrderCode(strings.ToUpper(args[0])) {
		job, err = a.store.Jobs().FindByOrderCode(args[0])
	}
	if err != nil {
		return err
	}
	if err := export.ExportTicket(args[1], job.Ticket(), a.appConfig); err != nil {
		return err
	}
	fmt.Printf("Wrote %s for order %s\n", args[1], job.OrderCode)
	return nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", model.Round2(v))
}
