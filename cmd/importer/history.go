package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/pkg/container"
)

var (
	historySupplier string
	historyLimit    int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a supplier's import runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		supplierID, err := uuid.Parse(historySupplier)
		if err != nil {
			return fmt.Errorf("invalid --supplier: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := container.NewContainerWithConfig(cfg)
		if err != nil {
			return err
		}
		defer c.Cleanup()

		runs, err := c.HistoryService.ListImports(cmd.Context(), supplierID, historyLimit, 0)
		if err != nil {
			return err
		}

		printHistory(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historySupplier, "supplier", "s", "", "supplier id (required)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	_ = historyCmd.MarkFlagRequired("supplier")
	rootCmd.AddCommand(historyCmd)
}

func printHistory(w io.Writer, runs []model.ImportRunView) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no imports")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tFILE\tSTATUS\tROWS\tOK\tFAILED\tERRORS")
	for _, r := range runs {
		errorsFlag := "-"
		if r.HasErrors {
			errorsFlag = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.FileName, r.Status,
			r.TotalRows, r.SuccessfulRows, r.FailedRows, errorsFlag)
	}
	tw.Flush()
}
