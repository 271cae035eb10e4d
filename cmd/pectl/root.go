package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/a3tai/posesion-efectiva/internal/config"
	"github.com/a3tai/posesion-efectiva/internal/model"
	"github.com/a3tai/posesion-efectiva/internal/pdf"
)

// newRootCmd builds the command tree. Document flags are persistent so every
// subcommand resolves the same configuration as the service, PE_* variables
// included.
func newRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	root := &cobra.Command{
		Use:   "pectl",
		Short: "Posesión Efectiva operator tool",
		Long: `pectl works on the Posesión Efectiva form without the HTTP service.

Example Usage:
  pectl fill caso.json -o declaracion.pdf   # render a case offline
  pectl fields --template nuevo.pdf          # check a template revision
  pectl presumption 85000000                 # 20% household-goods presumption
  pectl inventory caso.json                  # XLSX inventory of a case`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.String("template", defaults.TemplatePath, "Form template PDF")
	flags.String("schema", defaults.SchemaPath, "Field-name table YAML (default: embedded)")
	flags.String("overflow", defaults.Overflow, "Overflow strategy: 'replicate' or 'annex'")
	flags.String("loglevel", defaults.LogLevel, "Log level (debug, info, warn, error)")
	flags.Int64("maxfilesize", defaults.MaxFileSize, "Maximum template size in bytes")

	root.AddCommand(
		newFillCmd(),
		newFieldsCmd(),
		newPresumptionCmd(),
		newInventoryCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves flags, environment and defaults for cmd
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(cmd.Flags())
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.Discard)
	if cfg.IsDebug() {
		log.SetOutput(cmd.ErrOrStderr())
	}
	return cfg, nil
}

// newService builds the document service for cmd
func newService(cmd *cobra.Command) (*pdf.Service, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	schema, err := cfg.Schema()
	if err != nil {
		return nil, nil, err
	}
	svc, err := pdf.NewService(pdf.Options{
		TemplatePath: cfg.TemplatePath,
		Schema:       schema,
		Strategy:     cfg.Strategy(),
		MaxFileSize:  cfg.MaxFileSize,
		DebugMode:    cfg.IsDebug(),
	})
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// readCase reads a case file; "-" reads standard input
func readCase(cmd *cobra.Command, path string) (*model.CaseInput, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return model.Decode(data)
}
