package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/domains/product/parser"
	"agromarket-backend/internal/domains/product/service"
	"agromarket-backend/pkg/container"
)

var (
	importFile     string
	importSupplier string
	importBatch    int
	importDryRun   bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import products from an XLSX or CSV file",
	Long: `Runs the same parse, validate and reconcile pipeline as the HTTP endpoint.
With --dry-run the file is only parsed and validated; nothing is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if importBatch > 0 {
			cfg.Import.BatchSize = importBatch
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fileName := filepath.Base(importFile)
		var result *model.ImportResult

		if importDryRun {
			svc := service.NewImportService(nil, nil, parser.Options{
				MaxRows:     cfg.Import.MaxRows,
				MaxFileSize: cfg.Import.MaxFileSize,
			})
			result, err = svc.ValidateFile(ctx, fileName, f)
		} else {
			supplierID, perr := uuid.Parse(importSupplier)
			if perr != nil {
				return fmt.Errorf("invalid --supplier: %w", perr)
			}

			c, cerr := container.NewContainerWithConfig(cfg)
			if cerr != nil {
				return cerr
			}
			defer c.Cleanup()

			result, err = c.ImportService.ImportProducts(ctx, supplierID, fileName, f)
		}
		if err != nil {
			return err
		}

		printResult(cmd.OutOrStdout(), result, importDryRun)
		if !result.Success {
			return fmt.Errorf("%d rows failed", result.FailedRows)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "XLSX or CSV file path (required)")
	importCmd.Flags().StringVarP(&importSupplier, "supplier", "s", "", "supplier id (required unless --dry-run)")
	importCmd.Flags().IntVar(&importBatch, "batch-size", 0, "rows per batch (default from IMPORT_BATCH_SIZE)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and validate only")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func printResult(w io.Writer, r *model.ImportResult, dryRun bool) {
	mode := "import"
	if dryRun {
		mode = "dry run"
	}

	fmt.Fprintf(w, "=== Import Report (%s) ===\n", mode)
	if r.ImportID != "" {
		fmt.Fprintf(w, "Import ID:        %s\n", r.ImportID)
	}
	fmt.Fprintf(w, "Outcome:          %s\n", r.Outcome())
	fmt.Fprintf(w, "Rows:             %d\n", r.TotalRows)
	if dryRun {
		fmt.Fprintf(w, "Valid rows:       %d\n", r.SuccessfulRows)
	} else {
		fmt.Fprintf(w, "Created:          %d\n", r.Created)
		fmt.Fprintf(w, "Updated:          %d\n", r.Updated)
	}
	fmt.Fprintf(w, "Failed rows:      %d\n", r.FailedRows)
	fmt.Fprintf(w, "Variation errors: %d\n", r.VariationErrors)

	printErrors(w, "Errors", r.Errors)
	printErrors(w, "Warnings", r.Warnings)
}

func printErrors(w io.Writer, title string, errs []model.ImportError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tFIELD\tERROR\tVALUE")
	for _, e := range errs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Row, e.Field, e.Error, e.Value)
	}
	tw.Flush()
}
