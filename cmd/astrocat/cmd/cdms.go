package cmd

import (
	"fmt"
	"strings"

	"astrocat/cmd/astrocat/globals"
	"astrocat/internal/catalogs/cdms"
	"astrocat/internal/tabular"
	"astrocat/internal/units"

	"github.com/spf13/cobra"
)

var cdmsCmd = &cobra.Command{
	Use:   "cdms",
	Short: "Search the Cologne Database for Molecular Spectroscopy.",
}

var lineFlags struct {
	minStrength      float64
	molecules        []string
	temperature      float64
	parseNameLocally bool
	caseInsensitive  bool
	skipCache        bool
	save             string
}

func init() {
	for _, c := range []*cobra.Command{cdmsLinesCmd, cdmsPayloadCmd} {
		flags := c.Flags()
		flags.Float64Var(&lineFlags.minStrength, "min-strength", -500, "minimum line strength (log10, catalog units)")
		flags.StringSliceVarP(&lineFlags.molecules, "molecule", "m", []string{"All"}, "species selector, or a regular expression with --local")
		flags.Float64VarP(&lineFlags.temperature, "temperature", "t", 300, "intensity temperature in K, 0 returns Einstein A coefficients")
		flags.BoolVar(&lineFlags.parseNameLocally, "local", false, "match --molecule against the species directory before sending")
		flags.BoolVarP(&lineFlags.caseInsensitive, "ignore-case", "i", false, "match --local patterns ignoring case")
	}
	cdmsLinesCmd.Flags().BoolVar(&lineFlags.skipCache, "no-cache", false, "do not use cached responses")
	cdmsLinesCmd.Flags().StringVar(&lineFlags.save, "save-as", "cdms_lines", "table name used with --db")

	cdmsCmd.AddCommand(cdmsLinesCmd)
	cdmsCmd.AddCommand(cdmsPayloadCmd)
	cdmsCmd.AddCommand(cdmsSpeciesCmd)
}

func lineQuery(args []string) (cdms.LineQuery, error) {
	min, err := units.ParseFrequency(args[0])
	if err != nil {
		return cdms.LineQuery{}, fmt.Errorf("min frequency: %w", err)
	}
	max, err := units.ParseFrequency(args[1])
	if err != nil {
		return cdms.LineQuery{}, fmt.Errorf("max frequency: %w", err)
	}

	q := cdms.NewLineQuery(min, max)
	q.MinStrength = lineFlags.minStrength
	q.Molecules = lineFlags.molecules
	q.Temperature = lineFlags.temperature
	q.ParseNameLocally = lineFlags.parseNameLocally
	q.CaseInsensitive = lineFlags.caseInsensitive
	q.SkipCache = lineFlags.skipCache
	return q, nil
}

var cdmsLinesCmd = &cobra.Command{
	Use:     "lines <min frequency> <max frequency>",
	Short:   "Lists spectral lines between two frequencies (plain numbers are GHz).",
	Example: "  astrocat cdms lines 100 120 -m '^CO$' --local\n  astrocat cdms lines 3mm 2.5mm -t 0",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		q, err := lineQuery(args)
		if err != nil {
			return err
		}
		lines, err := ctx.CDMS.QueryLines(cmd.Context(), q)
		if err != nil {
			return err
		}
		return emit(cmd, lineFlags.save, "cdms", lines.Table)
	},
}

var cdmsPayloadCmd = &cobra.Command{
	Use:   "payload <min frequency> <max frequency>",
	Short: "Prints the form a lines query would send, without sending it.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		q, err := lineQuery(args)
		if err != nil {
			return err
		}
		payload, err := ctx.CDMS.QueryPayload(q)
		if err != nil {
			return err
		}

		table := tabular.Table{Columns: []tabular.Column{
			{Name: "key", Kind: tabular.String},
			{Name: "value", Kind: tabular.String},
		}}
		for _, param := range payload {
			table.Rows = append(table.Rows, tabular.Row{
				tabular.StringValue(param.Key),
				tabular.StringValue(param.Value),
			})
		}
		return emit(cmd, "cdms_payload", "cdms", table)
	},
}

var cdmsSpeciesCmd = &cobra.Command{
	Use:   "species [pattern]",
	Short: "Lists the species directory, optionally only names matching a regular expression.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		species, err := ctx.CDMS.Species()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			matches, err := species.Lookup().Find(args[0], true)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				closest, _ := species.Lookup().Closest(args[0])
				return fmt.Errorf("no species matches '%s', did you mean '%s'?", args[0], strings.TrimSpace(closest.Name))
			}
			species = cdms.SpeciesTable{Species: matches}
		}
		return emit(cmd, "cdms_species", "cdms", species.Table())
	},
}
