package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/impact-cli/internal/model"
	"github.com/sells-group/impact-cli/internal/report"
	"github.com/sells-group/impact-cli/internal/store"
)

var calculationsCmd = &cobra.Command{
	Use:   "calculations",
	Short: "Inspect stored calculations",
}

var calculationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored calculations, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		company, _ := cmd.Flags().GetString("company")
		methodologyID, _ := cmd.Flags().GetString("methodology")
		limit, _ := cmd.Flags().GetInt("limit")

		calcs, err := st.ListCalculations(ctx, store.CalculationFilter{
			Company:       company,
			MethodologyID: methodologyID,
			Limit:         limit,
		})
		if err != nil {
			return eris.Wrap(err, "calculations list")
		}

		if len(calcs) == 0 {
			fmt.Fprintln(os.Stderr, "No calculations found.")
			return nil
		}

		formatCalculationsList(os.Stdout, calcs)
		return nil
	},
}

var calculationsShowCmd = &cobra.Command{
	Use:   "show <calculation-id>",
	Short: "Show a stored calculation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		calc, err := st.GetCalculation(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "calculations show")
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "record" {
			return report.WriteJSON(os.Stdout, calc)
		}
		f, err := report.ParseFormat(format)
		if err != nil {
			return err
		}
		if f == report.FormatXLSX {
			return eris.New("calculations show: xlsx output is only available from calculate --output")
		}
		return report.Write(os.Stdout, calc.Result, f)
	},
}

var calculationsDeleteCmd = &cobra.Command{
	Use:   "delete <calculation-id>",
	Short: "Delete a stored calculation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteCalculation(ctx, args[0]); err != nil {
			return eris.Wrap(err, "calculations delete")
		}
		fmt.Fprintf(os.Stderr, "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	calculationsListCmd.Flags().String("company", "", "filter by company name")
	calculationsListCmd.Flags().String("methodology", "", "filter by methodology id")
	calculationsListCmd.Flags().Int("limit", 50, "max number of calculations to display")

	calculationsShowCmd.Flags().String("format", "table", "output format: table, json, csv, or record for the full stored record")

	calculationsCmd.AddCommand(calculationsListCmd)
	calculationsCmd.AddCommand(calculationsShowCmd)
	calculationsCmd.AddCommand(calculationsDeleteCmd)
	rootCmd.AddCommand(calculationsCmd)
}

// formatCalculationsList writes a tabular list of calculations to w.
func formatCalculationsList(out io.Writer, calcs []model.Calculation) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tMETHODOLOGY\tMODERATE\tCOMPLETENESS\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-------\t-----------\t--------\t------------\t-------")

	for _, c := range calcs {
		company := c.CompanyName
		if len(company) > 30 {
			company = company[:27] + "..."
		}
		moderate := "-"
		completeness := "-"
		if c.Result != nil {
			if sr, ok := c.Result.Scenario(model.ScenarioModerate); ok {
				moderate = p.Sprintf("$%.0f", sr.TotalAnnualImpact)
			}
			completeness = fmt.Sprintf("%.0f%%", c.Result.DataCompleteness*100)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s@%s\t%s\t%s\t%s\n",
			truncateID(c.ID),
			company,
			c.MethodologyID,
			c.MethodologyVersion,
			moderate,
			completeness,
			c.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
