package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/posesion-efectiva/internal/formschema"
	"github.com/a3tai/posesion-efectiva/internal/overflow"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort         = 3000
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultMaxFileSize  = 50 * 1024 * 1024 // 50MB
	DefaultTemplatePath = "template/Formulario_de_Posesion_Efectiva-TIPO_FORMULARIO.pdf"
	DefaultDrafts       = "borradores"
	DefaultStatic       = "public"
	DefaultOutput       = "salidas"
	DefaultOverflow     = "replicate"

	// EnvPrefix prefixes every environment variable, e.g. PE_PORT
	EnvPrefix = "PE"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// keys are the configuration keys, shared by flags, environment and viper
var keys = []string{
	"mode", "host", "port", "template", "schema", "drafts",
	"static", "output", "overflow", "loglevel", "maxfilesize",
}

// Config holds all configuration for the declaration service
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Document configuration
	TemplatePath string
	// SchemaPath is an alternative field-name table; empty selects the
	// embedded one
	SchemaPath string
	Overflow   string

	// Storage configuration
	DraftsDirectory string
	StaticDirectory string
	OutputDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum template and request body size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:            ModeServer,
		Host:            DefaultHost,
		Port:            DefaultPort,
		TemplatePath:    DefaultTemplatePath,
		Overflow:        DefaultOverflow,
		DraftsDirectory: DefaultDrafts,
		StaticDirectory: DefaultStatic,
		OutputDirectory: DefaultOutput,
		Version:         "1.0.0",
		ServerName:      "posesion-efectiva",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	fs := pflag.CommandLine
	DefineFlags(fs, DefaultConfig())
	setupUsageMessage(fs)

	// Check for version flag before parsing
	if err := checkVersionFlag(os.Args[1:]); err != nil {
		return nil, err
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	return Resolve(fs)
}

// Resolve builds the configuration from parsed flags, PE_* environment
// variables and defaults, in that order of precedence. Flags missing from fs
// are simply not consulted.
func Resolve(fs *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)
	for _, key := range keys {
		if flag := fs.Lookup(key); flag != nil {
			_ = v.BindPFlag(key, flag)
		}
	}
	populateConfigFromViper(v, cfg)

	// Expand paths if needed
	for _, p := range []*string{&cfg.TemplatePath, &cfg.SchemaPath, &cfg.DraftsDirectory, &cfg.StaticDirectory, &cfg.OutputDirectory} {
		if *p == "" {
			continue
		}
		if expanded, err := filepath.Abs(*p); err == nil {
			*p = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newViper configures a viper instance with environment variables and defaults
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("template", cfg.TemplatePath)
	v.SetDefault("schema", cfg.SchemaPath)
	v.SetDefault("drafts", cfg.DraftsDirectory)
	v.SetDefault("static", cfg.StaticDirectory)
	v.SetDefault("output", cfg.OutputDirectory)
	v.SetDefault("overflow", cfg.Overflow)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	return v
}

// DefineFlags sets up all command line flags on fs
func DefineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("mode", cfg.Mode, "Server mode: 'server' for the HTTP API, 'stdio' for MCP standard I/O")
	fs.String("host", cfg.Host, "Server host address (server mode only)")
	fs.Int("port", cfg.Port, "Server port (server mode only)")
	fs.String("template", cfg.TemplatePath, "Form template PDF")
	fs.String("schema", cfg.SchemaPath, "Field-name table YAML (default: embedded)")
	fs.String("drafts", cfg.DraftsDirectory, "Directory where drafts are stored")
	fs.String("static", cfg.StaticDirectory, "Directory of the static front-end")
	fs.String("output", cfg.OutputDirectory, "Directory where generated documents are written (stdio mode)")
	fs.String("overflow", cfg.Overflow, "Overflow strategy: 'replicate' or 'annex'")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum template and request size in bytes")
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPosesión Efectiva - fills the inheritance declaration form and keeps drafts\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                      # HTTP server on 127.0.0.1:3000\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --overflow=annex                     # list overflowing entries on annex pages\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --output=/tmp/salidas   # MCP tools over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PE_MODE PE_HOST PE_PORT PE_TEMPLATE PE_SCHEMA PE_DRAFTS\n")
		fmt.Fprintf(os.Stderr, "  PE_STATIC PE_OUTPUT PE_OVERFLOW PE_LOGLEVEL PE_MAXFILESIZE\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) error {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.TemplatePath = v.GetString("template")
	cfg.SchemaPath = v.GetString("schema")
	cfg.DraftsDirectory = v.GetString("drafts")
	cfg.StaticDirectory = v.GetString("static")
	cfg.OutputDirectory = v.GetString("output")
	cfg.Overflow = v.GetString("overflow")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.TemplatePath == "" {
		return errors.New("template path cannot be empty")
	}
	if _, err := overflow.ParseStrategy(c.Overflow); err != nil {
		return err
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	for _, d := range c.directories() {
		if d.path == "" {
			return fmt.Errorf("%s directory cannot be empty", d.name)
		}
	}
	if c.StaticDirectory == "" {
		return errors.New("static directory cannot be empty")
	}

	return nil
}

type directory struct{ name, path string }

// directories are the ones the service writes to
func (c *Config) directories() []directory {
	return []directory{
		{"drafts", c.DraftsDirectory},
		{"output", c.OutputDirectory},
	}
}

// EnsureDirectories creates the draft and output directories when missing
func (c *Config) EnsureDirectories() error {
	for _, d := range c.directories() {
		if err := ensureDirectory(d.path); err != nil {
			return fmt.Errorf("cannot use %s directory %s: %w", d.name, d.path, err)
		}
	}
	return nil
}

func ensureDirectory(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, DefaultDirPerm)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory")
	}
	return nil
}

// Strategy returns the parsed overflow strategy
func (c *Config) Strategy() overflow.Strategy {
	s, _ := overflow.ParseStrategy(c.Overflow)
	return s
}

// Schema loads the configured field-name table
func (c *Config) Schema() (*formschema.Schema, error) {
	if c.SchemaPath == "" {
		return formschema.Default(), nil
	}
	return formschema.Load(c.SchemaPath)
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, Template: %s, Overflow: %s, Drafts: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.TemplatePath, c.Overflow, c.DraftsDirectory, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the service is running as an HTTP server
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the service is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
