package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/a3tai/posesion-efectiva/internal/inventory"
	"github.com/a3tai/posesion-efectiva/internal/mapper"
)

func newFillCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fill CASE.json",
		Short: "Render a case to PDF",
		Long: `Fill the form template with a case read from a JSON file ("-" for standard
input) and write the flattened document. Without --output the document is
named PE_<surname>_<date>.pdf in the current directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := newService(cmd)
			if err != nil {
				return err
			}
			in, err := readCase(cmd, args[0])
			if err != nil {
				return err
			}

			result, err := svc.FillDocument(cmd.Context(), in)
			if err != nil {
				return err
			}
			if output == "" {
				output = result.Filename
			}
			if err := os.WriteFile(output, result.PDF, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", output)
			fmt.Fprintf(out, "Pages:    %d (%d added, %s)\n", result.Pages, result.ExtraPages, cfg.Strategy())
			fmt.Fprintf(out, "Size:     %d bytes\n", result.Size)
			fmt.Fprintf(out, "Missing:  %s\n", result.Missing.Summary())
			printTotals(cmd, result.Totals)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PDF path")
	return cmd
}

func newInventoryCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "inventory CASE.json",
		Short: "Export the inventory of a case as XLSX",
		Long: `Write every inventory entry of a case with its place on the printed form
(form slot, annex, or excluded by the presumption) and the category totals.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			schema, err := cfg.Schema()
			if err != nil {
				return err
			}
			in, err := readCase(cmd, args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = inventory.Filename(in, time.Now())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			exporter := inventory.NewExporter(mapper.New(schema))
			if err := exporter.Write(f, in); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output XLSX path")
	return cmd
}

func printTotals(cmd *cobra.Command, t mapper.Totals) {
	out := cmd.OutOrStdout()
	for _, c := range mapper.Categories {
		fmt.Fprintf(out, "  %-26s %15s\n", c.Title(), amount(t.Of(c)))
	}
	fmt.Fprintf(out, "  %-26s %15s\n", "Total activos", amount(t.Assets()))
	fmt.Fprintf(out, "  %-26s %15s\n", "Masa hereditaria", amount(t.NetEstate()))
}
