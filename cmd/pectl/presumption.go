package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/a3tai/posesion-efectiva/internal/format"
	"github.com/a3tai/posesion-efectiva/internal/mapper"
	"github.com/a3tai/posesion-efectiva/internal/model"
)

// separators are stripped from VALUE before parsing
var separators = strings.NewReplacer(".", "", "$", "", " ", "")

func newPresumptionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presumption VALUE",
		Short: "Compute the household-goods presumption",
		Long: `Compute the household-goods presumption from the appraisal of the first
real-estate entry. VALUE may carry thousands separators ("85.000.000").`,
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
			value, ok := model.ParseLeadingInt(separators.Replace(args[0]))
			if !ok {
				return fmt.Errorf("invalid value %q", args[0])
			}

			rate := schema.Presumption.Rate
			presumption := mapper.PresumptionAmount(value, rate)
			fmt.Fprintf(cmd.OutOrStdout(), "%s%% of %s: %s\n", rate.Shift(2).String(), amount(value), amount(presumption))
			return nil
		},
	}
}

// amount renders n in peso notation
func amount(n int64) string {
	return "$" + format.Amount(n)
}
