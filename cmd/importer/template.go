package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agromarket-backend/internal/domains/product/service"
)

var templateOut string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the XLSX import template",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := service.NewCatalogService(nil, nil).BuildTemplate()
		if err != nil {
			return err
		}
		defer f.Close()

		if err := f.SaveAs(templateOut); err != nil {
			return fmt.Errorf("failed to write template: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "template written to %s\n", templateOut)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVarP(&templateOut, "out", "o", "urun-ice-aktarma-sablonu.xlsx", "output path")
	rootCmd.AddCommand(templateCmd)
}
