// Command pushctl is a one-shot operator CLI for the push orchestrator,
// grounded on the teacher's own cobra CLI entrypoint (cmd/sdgen/main.go): a
// root command carrying persistent flags, subcommands built by small
// factory functions, tabwriter for table output and --format json for
// scripting.
//
// Each invocation wires its own in-process Controller from a deployment
// file, runs one operation, and for "start" waits for the push to reach a
// terminal status before exiting — there is no long-lived pushctl daemon;
// the orchestrator itself is meant to run embedded in a host service or
// behind the Temporal-backed Job Manager (internal/jobmanager/temporaljm).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nucleus/resultpush/internal/bootstrap"
	"github.com/nucleus/resultpush/internal/catalog"
	"github.com/nucleus/resultpush/internal/config"
	"github.com/nucleus/resultpush/internal/controller"
	"github.com/nucleus/resultpush/internal/jobmanager"
	"github.com/nucleus/resultpush/internal/jobmanager/inproc"
	"github.com/nucleus/resultpush/internal/jobmanager/temporaljm"
	"github.com/nucleus/resultpush/internal/logging"
	"github.com/nucleus/resultpush/internal/model"
	"github.com/nucleus/resultpush/internal/registry"
)

var (
	deploymentPath string
	fixturesPath   string
	logLevel       string
	useTemporal    bool
	catalogDSN     string
	catalogMigrate bool
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "pushctl",
		Short: "Operate the result-push orchestrator",
	}

	rootCmd.PersistentFlags().StringVar(&deploymentPath, "deployment", "", "Deployment file (tables + destinations, required)")
	rootCmd.PersistentFlags().StringVar(&fixturesPath, "fixtures", "", "Evaluator fixtures file (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")
	rootCmd.PersistentFlags().BoolVar(&useTemporal, "temporal", false, "Use the Temporal-backed Job Manager instead of the in-process one")
	rootCmd.PersistentFlags().StringVar(&catalogDSN, "catalog-dsn", "", "Postgres DSN for a live Table Store, instead of the deployment file's static table list")
	rootCmd.PersistentFlags().BoolVar(&catalogMigrate, "catalog-migrate", false, "Apply the catalog's Postgres schema migrations before connecting (requires --catalog-dsn)")

	rootCmd.AddCommand(startCmd(cfg))
	rootCmd.AddCommand(cancelCmd())
	rootCmd.AddCommand(cancelAllCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// wire builds a Controller from the shared deployment/fixtures flags,
// returning the parsed deployment (so callers can look up a table's column
// projection without a second file read) and a closer the caller must run
// before exiting.
func wire(cfg *config.Config) (*controller.Controller, *bootstrap.Deployment, func(), error) {
	if deploymentPath == "" {
		return nil, nil, nil, fmt.Errorf("--deployment is required")
	}
	dep, err := bootstrap.LoadDeployment(deploymentPath)
	if err != nil {
		return nil, nil, nil, err
	}
	var (
		tables  catalog.Store
		pgStore *catalog.PostgresStore
	)
	if catalogDSN != "" {
		if catalogMigrate {
			if err := catalog.MigrateSchema(catalogDSN); err != nil {
				return nil, nil, nil, err
			}
		}
		pgStore, err = catalog.OpenPostgres(context.Background(), catalogDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		tables = pgStore
	} else {
		tables = bootstrap.BuildCatalog(dep)
	}

	dests, err := bootstrap.BuildDestinations(dep, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	eval, err := bootstrap.BuildEvaluator(fixturesPath)
	if err != nil {
		return nil, nil, nil, err
	}

	var jm jobmanager.Manager
	if useTemporal {
		jm, err = temporaljm.New(temporaljm.Config{
			HostPort:  cfg.TemporalHostPort,
			Namespace: cfg.TemporalNamespace,
			TaskQueue: cfg.TemporalTaskQueue,
		}, cfg.CompletionChannelBuffer)
		if err != nil {
			return nil, nil, nil, err
		}
	} else {
		jm = inproc.New(cfg.CompletionChannelBuffer)
	}

	logger := logging.New(logLevel)
	ctrl := controller.New(tables, dests, eval, jm,
		controller.WithLogger(logger),
		controller.WithRegistry(registry.NewWithRetention(cfg.TerminalRecordCapPerDestination)),
	)
	return ctrl, dep, func() {
		ctrl.Close()
		if pgStore != nil {
			pgStore.Close()
		}
	}, nil
}

// columnsFor returns the column projection a deployment file declares for
// tableID, or nil if the table is unknown (Start will then report
// TableNotFound itself).
func columnsFor(dep *bootstrap.Deployment, tableID string) []model.ColumnMeta {
	for _, t := range dep.Tables {
		if t.ID == tableID {
			return t.Columns
		}
	}
	return nil
}

func startCmd(cfg *config.Config) *cobra.Command {
	var (
		tableID string
		destID  string
		path    string
		format  string
		limit   uint64
		hasLim  bool
		wait    bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start pushing one table to one destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, dep, closeFn, err := wire(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			var lim *uint64
			if hasLim {
				lim = &limit
			}

			ctx := context.Background()
			cond := ctrl.Start(ctx, model.TableId(tableID), columnsFor(dep, tableID), model.DestinationId(destID), path, model.ResultType(format), lim)
			if !cond.OK() {
				return cond.Err()
			}
			fmt.Printf("push started: table=%s destination=%s\n", tableID, destID)

			if !wait {
				return nil
			}
			return awaitTerminal(ctrl, model.DestinationId(destID), model.TableId(tableID))
		},
	}

	cmd.Flags().StringVar(&tableID, "table", "", "Table ID (required)")
	cmd.Flags().StringVar(&destID, "destination", "", "Destination ID (required)")
	cmd.Flags().StringVar(&path, "path", "", "Destination path (required)")
	cmd.Flags().StringVar(&format, "format", "csv", "Result format (csv|json)")
	cmd.Flags().Uint64Var(&limit, "limit", 0, "Row limit")
	cmd.Flags().BoolVar(&wait, "wait", true, "Wait for the push to reach a terminal status")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		hasLim = cmd.Flags().Changed("limit")
	}
	cmd.MarkFlagRequired("table")
	cmd.MarkFlagRequired("destination")
	cmd.MarkFlagRequired("path")

	return cmd
}

func cancelCmd() *cobra.Command {
	var tableID, destID string

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel one table's push to one destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctrl, _, closeFn, err := wire(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			cond := ctrl.Cancel(context.Background(), model.TableId(tableID), model.DestinationId(destID))
			if !cond.OK() {
				return cond.Err()
			}
			fmt.Println("cancel requested")
			return nil
		},
	}
	cmd.Flags().StringVar(&tableID, "table", "", "Table ID (required)")
	cmd.Flags().StringVar(&destID, "destination", "", "Destination ID (required)")
	cmd.MarkFlagRequired("table")
	cmd.MarkFlagRequired("destination")
	return cmd
}

func cancelAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel every push currently running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctrl, _, closeFn, err := wire(cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			ctrl.CancelAll()
			fmt.Println("cancel-all requested")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	var destID string
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show every push's status for one destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctrl, _, closeFn, err := wire(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			records, cause := ctrl.DestinationStatus(context.Background(), model.DestinationId(destID))
			if cause != nil {
				return cause
			}

			if format == "json" {
				data, _ := json.MarshalIndent(records, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tSTATUS\tSINCE\tUNTIL")
			for tableID, rec := range records {
				until := ""
				if rec.Status.Terminal() {
					until = rec.Status.Until.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tableID, rec.Status.Kind, rec.Status.Since.Format(time.RFC3339), until)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&destID, "destination", "", "Destination ID (required)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")
	cmd.MarkFlagRequired("destination")
	return cmd
}

// awaitTerminal polls DestinationStatus until tableID's record reaches a
// terminal status, then reports it. A dev/CLI convenience only; a real
// caller of the Controller should read the Push Registry directly instead
// of polling.
func awaitTerminal(ctrl *controller.Controller, destID model.DestinationId, tableID model.TableId) error {
	for {
		records, cause := ctrl.DestinationStatus(context.Background(), destID)
		if cause != nil {
			return cause
		}
		if rec, ok := records[tableID]; ok && rec.Status.Terminal() {
			fmt.Printf("push finished: status=%s\n", rec.Status.Kind)
			if rec.Status.Kind == model.StatusFailed {
				return fmt.Errorf("push failed: %s", rec.Status.Cause.Message)
			}
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}
