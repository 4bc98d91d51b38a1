package cmd

import (
	"fmt"
	"strings"

	"astrocat/cmd/astrocat/globals"
	"astrocat/internal/catalogs/heasarc"
	"astrocat/internal/tabular"
	"astrocat/internal/units"

	"github.com/spf13/cobra"
)

var heasarcCmd = &cobra.Command{
	Use:   "heasarc",
	Short: "Query the HEASARC multi-mission archive (or a mirror set with heasarc.server).",
}

var archiveFlags struct {
	mission          string
	coordinateSystem string
	equinox          string
	fields           string
	radius           string
	resultMax        int
	sortBy           string
	time             string
	filters          map[string]string
	skipCache        bool
}

func init() {
	for _, c := range []*cobra.Command{heasarcObjectCmd, heasarcRegionCmd} {
		flags := c.Flags()
		flags.StringVarP(&archiveFlags.mission, "mission", "m", "", "mission table to query (default: heasarc.mission)")
		flags.StringVar(&archiveFlags.coordinateSystem, "coordsys", "", "fk5 (default), fk4, galactic or ecliptic")
		flags.StringVar(&archiveFlags.equinox, "equinox", "", "equinox of the position")
		flags.StringVar(&archiveFlags.fields, "fields", "", "Standard, All or a comma separated list of columns")
		flags.StringVarP(&archiveFlags.radius, "radius", "r", "3 arcmin", "search radius (plain numbers are degrees)")
		flags.IntVar(&archiveFlags.resultMax, "max", 0, "maximum number of rows, 0 leaves it to the server")
		flags.StringVar(&archiveFlags.sortBy, "sort", "", "column to sort by")
		flags.StringVar(&archiveFlags.time, "time", "", "time range, for example '2020-09-01 .. 2020-12-01'")
		flags.StringToStringVar(&archiveFlags.filters, "filter", nil, "column constraint like good_isgri='>1000', may repeat")
		flags.BoolVar(&archiveFlags.skipCache, "no-cache", false, "do not use cached responses")
	}

	heasarcCmd.AddCommand(heasarcObjectCmd)
	heasarcCmd.AddCommand(heasarcRegionCmd)
	heasarcCmd.AddCommand(heasarcMissionsCmd)
	heasarcCmd.AddCommand(heasarcColsCmd)
}

// missionName is the table name results are saved under.
func missionName(fallback string) string {
	if archiveFlags.mission != "" {
		return archiveFlags.mission
	}
	return fallback
}

func archiveOptions() (heasarc.Options, error) {
	radius, err := units.ParseAngle(archiveFlags.radius)
	if err != nil {
		return heasarc.Options{}, fmt.Errorf("radius: %w", err)
	}
	return heasarc.Options{
		Mission:          archiveFlags.mission,
		CoordinateSystem: archiveFlags.coordinateSystem,
		Equinox:          archiveFlags.equinox,
		Fields:           archiveFlags.fields,
		Radius:           &radius,
		ResultMax:        archiveFlags.resultMax,
		SortBy:           archiveFlags.sortBy,
		Time:             archiveFlags.time,
		Filters:          archiveFlags.filters,
		SkipCache:        archiveFlags.skipCache,
	}, nil
}

var heasarcObjectCmd = &cobra.Command{
	Use:     "object <name>",
	Short:   "Searches a mission around a named object.",
	Example: "  astrocat heasarc object Crab -m integral_rev3_scw -r '1 degree' --filter good_isgri='>1000'",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		opts, err := archiveOptions()
		if err != nil {
			return err
		}
		table, err := ctx.Heasarc.QueryObject(cmd.Context(), heasarc.ObjectQuery{
			Object:  strings.Join(args, " "),
			Options: opts,
		})
		if err != nil {
			return err
		}
		return emit(cmd, missionName(ctx.Config.Heasarc.Mission), "heasarc", table)
	},
}

var heasarcRegionCmd = &cobra.Command{
	Use:     "region <position>",
	Short:   "Searches a mission around a position given in --coordsys.",
	Example: "  astrocat heasarc region '187.2779 2.0524' -m integral_rev3_scw -r 1",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		opts, err := archiveOptions()
		if err != nil {
			return err
		}
		table, err := ctx.Heasarc.QueryRegion(cmd.Context(), heasarc.RegionQuery{
			Position: strings.Join(args, " "),
			Options:  opts,
		})
		if err != nil {
			return err
		}
		return emit(cmd, missionName(ctx.Config.Heasarc.Mission), "heasarc", table)
	},
}

var heasarcMissionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "Lists the mission tables the server knows about.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		table, err := ctx.Heasarc.QueryMissionList(cmd.Context())
		if err != nil {
			return err
		}
		return emit(cmd, "heasarc_missions", "heasarc", table)
	},
}

var heasarcColsCmd = &cobra.Command{
	Use:   "cols <mission>",
	Short: "Lists the columns of a mission table.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := globals.Get(cmd.Context())

		cols, err := ctx.Heasarc.QueryMissionCols(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		table := tabular.Table{Columns: []tabular.Column{{Name: "column", Kind: tabular.String}}}
		for _, c := range cols {
			table.Rows = append(table.Rows, tabular.Row{tabular.StringValue(c)})
		}
		return emit(cmd, args[0]+"_cols", "heasarc", table)
	},
}
