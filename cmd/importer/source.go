package main

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"agromarket-backend/pkg/container"
)

var (
	sourceSupplier string
	sourceImport   string
	sourceOut      string
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Download the archived upload of an import run",
	RunE: func(cmd *cobra.Command, args []string) error {
		supplierID, err := uuid.Parse(sourceSupplier)
		if err != nil {
			return fmt.Errorf("invalid --supplier: %w", err)
		}
		importID, err := uuid.Parse(sourceImport)
		if err != nil {
			return fmt.Errorf("invalid --import: %w", err)
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

		if c.Storage == nil {
			return errors.New("object storage is not reachable")
		}

		run, err := c.HistoryService.GetImport(cmd.Context(), supplierID, importID)
		if err != nil {
			return err
		}
		if run.FileKey == nil {
			return errors.New("this import has no archived source file")
		}

		data, err := c.Storage.Download(cmd.Context(), *run.FileKey)
		if err != nil {
			return err
		}

		out := sourceOut
		if out == "" {
			out = path.Base(*run.FileKey)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", out, len(data))
		return nil
	},
}

func init() {
	sourceCmd.Flags().StringVarP(&sourceSupplier, "supplier", "s", "", "supplier id (required)")
	sourceCmd.Flags().StringVar(&sourceImport, "import", "", "import id (required)")
	sourceCmd.Flags().StringVarP(&sourceOut, "out", "o", "", "output path (default: archived file name)")
	_ = sourceCmd.MarkFlagRequired("supplier")
	_ = sourceCmd.MarkFlagRequired("import")
	rootCmd.AddCommand(sourceCmd)
}
