package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/msidat/pkg/core"
	"github.com/ChrisMcGann/msidat/pkg/match"
)

var showIons bool

var formulaCmd = &cobra.Command{
	Use:   "formula <formula>...",
	Short: "Print the monoisotopic mass of chemical formulas",
	Long: `Print the monoisotopic mass of each formula. Formulas may contain
parenthesized groups, counts and a charge, e.g. C6H12O6, Ca(OH)2, [NH4]+,
(NaCl)2+. Several compounds separated by spaces, commas or semicolons inside
one quoted argument are summed.

Examples:
  msidat formula C6H12O6 "NaCl, KCl"
  msidat formula --ions C6H12O6`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		return printFormulas(cmd.OutOrStdout(), store.Resolver(), store.Adducts(), args, showIons)
	},
}

func init() {
	formulaCmd.Flags().BoolVar(&showIons, "ions", false, "also print the m/z of every adduct in the adduct table")
	rootCmd.AddCommand(formulaCmd)
}

func printFormulas(out io.Writer, resolver *core.Resolver, adducts *core.AdductTable, formulas []string, ions bool) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, f := range formulas {
		mass, err := resolver.Resolve(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", f, match.FormatMass(core.RoundFloat(mass, 6)))
		if !ions {
			continue
		}
		generated, err := core.GenerateAdducts(mass, adducts, adducts.Labels(core.Positive), adducts.Labels(core.Negative))
		if err != nil {
			return err
		}
		for _, ion := range generated {
			fmt.Fprintf(w, "  %s\t%s\n", ion.Column, match.FormatMass(core.RoundFloat(ion.MZ, 6)))
		}
	}
	return w.Flush()
}
