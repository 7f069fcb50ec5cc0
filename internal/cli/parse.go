package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pgschema/pgsplit/internal/checksum"
	"github.com/pgschema/pgsplit/internal/classifier"
	"github.com/pgschema/pgsplit/internal/config"
	"github.com/pgschema/pgsplit/internal/dump"
	"github.com/pgschema/pgsplit/internal/files/filesystem"
	"github.com/pgschema/pgsplit/internal/logging"
	"github.com/pgschema/pgsplit/internal/metadata"
	"github.com/pgschema/pgsplit/internal/segmenter"
	"github.com/pgschema/pgsplit/internal/services"
	"github.com/pgschema/pgsplit/pkg/pgsplit"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Capture a schema dump and split it into per-object files",
	Long: `Parse captures the target database's schema with pg_dump, splits the dump
into individual statements, and writes one file per object under
<output>/<schema>/<kind>/<name>.sql. Statements that cannot be attributed
to a schema land under the "others" bucket; a METADATA file at the output
root records versions, counts, and every warning with its dump line number.

Password resolution order:
  1. connection.password in pgsplit.yaml
  2. $PGPASSWORD (a .env file in the working directory is honored)
  3. interactive prompt, when stdin is a terminal

Examples:
  # Parse using ./pgsplit.yaml into its configured output directory
  pgsplit parse

  # Explicit config and output locations
  pgsplit parse --configfile prod.yaml --directory ./schema

  # Only the public schema, from an already captured dump file
  pgsplit parse --input dump.sql --schema public`,
	Args: cobra.NoArgs,
	RunE: runParse,
}

type parseFlagValues struct {
	configFile string
	directory  string
	input      string
	schemas    []string
	timeout    time.Duration
}

var parseFlags parseFlagValues

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFlags.configFile, "configfile", "c", "",
		"Database configuration file (default: ./"+config.ConfigFileName+")")
	parseCmd.Flags().StringVarP(&parseFlags.directory, "directory", "d", "",
		"Directory to drop the schema files into (overrides output_dir in the config)")
	parseCmd.Flags().StringVar(&parseFlags.input, "input", "",
		"Parse an existing dump file instead of invoking pg_dump")
	parseCmd.Flags().StringSliceVar(&parseFlags.schemas, "schema", nil,
		"Schema to retain (can be specified multiple times; overrides the config allow-list;\n"+
			"empty means all schemas)")
	parseCmd.Flags().DurationVar(&parseFlags.timeout, "timeout", 5*time.Minute,
		"Catastrophic failure protection timeout for the whole run")
}

func runParse(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	_ = godotenv.Load()

	cfg, err := config.Load(parseFlags.configFile)
	if err != nil {
		// A dump file on disk needs no connection identity.
		if parseFlags.input != "" && errors.Is(err, config.ErrConfigNotFound) {
			cfg = config.Default()
		} else {
			return err
		}
	}

	outputRoot := cfg.OutputDir
	if parseFlags.directory != "" {
		outputRoot = parseFlags.directory
	}
	allowedSchemas := cfg.Schemas
	if len(parseFlags.schemas) > 0 {
		allowedSchemas = parseFlags.schemas
	}

	params := dump.ConnectionParams{
		Host:     cfg.Connection.Host,
		Port:     cfg.Connection.Port,
		Database: cfg.Connection.Database,
		Username: cfg.Connection.Username,
		Password: cfg.Connection.Password,
	}

	ctx, cancel := context.WithTimeout(context.Background(), parseFlags.timeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling parse...")
		cancel()
	}()

	versions := metadata.Versions{
		DatabaseName: cfg.Connection.Database,
		DatabaseHost: cfg.Connection.Host,
	}

	var dumpText string
	if parseFlags.input != "" {
		logger.Verbose("reading dump from %s", parseFlags.input)
		raw, err := os.ReadFile(parseFlags.input)
		if err != nil {
			return fmt.Errorf("failed to read dump file: %w", err)
		}
		dumpText = string(raw)
	} else {
		if params.Password == "" {
			params.Password, err = promptPassword(params.Username)
			if err != nil {
				return err
			}
		}

		capturer := dump.NewCapturer()
		logger.Info("capturing schema dump of %q from %s:%d", params.Database, params.Host, params.Port)
		dumpText, err = capturer.Capture(ctx, params, allowedSchemas)
		if err != nil {
			return err
		}

		if v, err := capturer.PgDumpVersion(ctx); err == nil {
			versions.PgDumpVersion = v
		} else {
			logger.Verbose("pg_dump version probe failed: %v", err)
		}
		if v, err := dump.ServerVersion(ctx, params); err == nil {
			versions.DatabaseVersion = v
		} else {
			logger.Verbose("server_version probe failed: %v", err)
		}
	}

	svc := services.NewParserService(
		segmenter.NewSegmenter(),
		classifier.NewClassifier(),
		checksum.New(),
		filesystem.NewOSWriter(),
		logger,
	)

	opts := services.RunOptions{
		OutputRoot:     outputRoot,
		AllowedSchemas: allowedSchemas,
		Versions:       versions,
	}

	result, err := svc.Run(ctx, dumpText, opts)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if len(result.Warnings) > 0 {
		logger.Info("parse completed with %d warning(s): %d statements in %d files under %s (see %s)",
			len(result.Warnings), result.Statements, result.Files, outputRoot, pgsplit.MetadataFileName)
	} else {
		logger.Info("parse completed: %d statements in %d files under %s",
			result.Statements, result.Files, outputRoot)
	}
	return nil
}

// promptPassword reads a password from the terminal when no other source
// provided one. Refuses to continue in non-interactive contexts so CI runs
// fail fast instead of hanging.
func promptPassword(username string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: no password configured and stdin is not a terminal (set connection.password or $PGPASSWORD)", pgsplit.ErrInvalidConfig)
	}
	fmt.Fprintf(os.Stderr, "Password for user %s: ", username)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
