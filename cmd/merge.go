package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/impact-cli/internal/dataload"
	"github.com/sells-group/impact-cli/internal/merge"
	"github.com/sells-group/impact-cli/internal/model"
	"github.com/sells-group/impact-cli/internal/report"
)

var (
	mergeOutput    string
	mergeThreshold float64
)

var mergeCmd = &cobra.Command{
	Use:   "merge <primary-file> <secondary-file>...",
	Short: "Merge company data files and report conflicts",
	Long:  "Folds each secondary file into the primary. Overlapping fields keep the higher confidence tier; numeric disagreements above the threshold are flagged for review.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold := mergeThreshold
		if threshold <= 0 {
			threshold = cfg.Merge.DiscrepancyThreshold
		}

		primary, err := dataload.LoadCompany(args[0])
		if err != nil {
			return err
		}
		secondaries := make([]model.CompanyData, 0, len(args)-1)
		for _, p := range args[1:] {
			d, err := dataload.LoadCompany(p)
			if err != nil {
				return err
			}
			secondaries = append(secondaries, d)
		}

		merged, conflicts := merge.New(threshold).Merge(primary, secondaries...)
		formatConflicts(os.Stderr, conflicts)

		if mergeOutput == "" {
			return report.WriteJSON(os.Stdout, merged)
		}
		f, err := os.Create(mergeOutput)
		if err != nil {
			return eris.Wrapf(err, "merge: create %s", mergeOutput)
		}
		defer f.Close() //nolint:errcheck
		return report.WriteJSON(f, merged)
	},
}

func formatConflicts(out io.Writer, conflicts []merge.Conflict) {
	if len(conflicts) == 0 {
		_, _ = fmt.Fprintln(out, "No conflicts.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIELD\tEXISTING\tINCOMING\tCHOSEN\tDISCREPANCY\tREVIEW")
	_, _ = fmt.Fprintln(w, "-----\t--------\t--------\t------\t-----------\t------")
	for _, c := range conflicts {
		disc := "-"
		if c.Discrepancy != nil {
			disc = fmt.Sprintf("%.1f%%", *c.Discrepancy*100)
		}
		review := ""
		if c.FlaggedForReview {
			review = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%v (%s)\t%v (%s)\t%v\t%s\t%s\n",
			c.Field, c.ExistingValue, c.ExistingTier, c.IncomingValue, c.IncomingTier, c.ChosenValue, disc, review)
	}
	_ = w.Flush()
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "write merged JSON to a file instead of stdout")
	mergeCmd.Flags().Float64Var(&mergeThreshold, "threshold", 0, "relative discrepancy that flags a conflict (default from config)")
	rootCmd.AddCommand(mergeCmd)
}
