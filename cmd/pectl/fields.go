package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newFieldsCmd() *cobra.Command {
	var (
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Check the template's form fields against the vocabulary",
		Long: `List the form fields of the template and the field names the service
writes that the template lacks. With --strict the command fails when any
name is missing, which suits a check before rolling out a new template.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := newService(cmd)
			if err != nil {
				return err
			}
			report, err := svc.TemplateFields()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				fmt.Fprintf(out, "Template: %s\n", report.Template)
				fmt.Fprintf(out, "Schema:   %s\n", report.Version)
				fmt.Fprintf(out, "Pages:    %d\n", report.Pages)
				fmt.Fprintf(out, "Fields:   %d\n", len(report.Fields))
				if report.Complete() {
					fmt.Fprintln(out, "Every vocabulary name is present.")
				}
				printMissing(cmd, "Missing text fields", report.MissingFields)
				printMissing(cmd, "Missing checkboxes", report.MissingCheckboxes)
			}

			if strict && !report.Complete() {
				return fmt.Errorf("template lacks %d field names", len(report.MissingFields)+len(report.MissingCheckboxes))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when the template lacks any field name")
	return cmd
}

func printMissing(cmd *cobra.Command, title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d):\n  %s\n", title, len(names), strings.Join(names, "\n  "))
}
