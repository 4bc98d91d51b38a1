package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"

	"astrocat/cmd/astrocat/globals"
	"astrocat/cmd/astrocat/utils"
	"astrocat/internal/catalogs/cdms"
	"astrocat/internal/catalogs/heasarc"
	"astrocat/internal/components/telemetry"
	"astrocat/internal/config"
	"astrocat/internal/transport"

	"github.com/spf13/cobra"
)

var (
	configPath string
	format     string
	dbPath     string
	dumpHttp   string
	verbose    bool
)

var otel telemetry.Telemetry

var rootCmd = &cobra.Command{
	Use:          "astrocat",
	Short:        "astrocat queries the CDMS spectral line catalog and the HEASARC archive.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !slices.Contains(utils.Formats, format) {
			return fmt.Errorf("unknown format '%s', expected one of %v", format, utils.Formats)
		}

		telemetry.InitSlog(verbose)

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		otel, err = telemetry.Setup(cmd.Context(), "astrocat", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		var tel telemetry.API = telemetry.SlogAPI{}

		var output telemetry.MessageOutput
		if dumpHttp != "" {
			output, err = telemetry.NewFilesystemOutput(dumpHttp)
			if err != nil {
				return err
			}
		}

		cdmsOpts := cfg.CDMSTransport()
		cdmsOpts.Output = output
		heasarcOpts := cfg.HeasarcTransport()
		heasarcOpts.Output = output

		value := &globals.Value{
			Config: cfg,
			Tel:    tel,
			CDMS: cdms.NewClient(
				cdms.Config{Server: cfg.CDMS.Server, Catdir: cfg.CDMS.Catdir},
				transport.New(cdmsOpts, tel),
				tel,
			),
			Heasarc: heasarc.NewClient(
				cfg.HeasarcClient(),
				transport.New(heasarcOpts, tel),
				tel,
			),
			Format: format,
			DB:     dbPath,
		}
		cmd.SetContext(globals.Set(cmd.Context(), value))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return otel.Shutdown(cmd.Context())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a config file (default: "+config.DefaultFile+" searched upwards)")
	flags.StringVarP(&format, "format", "f", utils.FormatTable, fmt.Sprintf("output format, one of %v", utils.Formats))
	flags.StringVar(&dbPath, "db", "", "also save results to this sqlite database")
	flags.StringVar(&dumpHttp, "dump-http", "", "write every http request and response to this directory")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug messages")

	rootCmd.AddCommand(cdmsCmd)
	rootCmd.AddCommand(heasarcCmd)
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
