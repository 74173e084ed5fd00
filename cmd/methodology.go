package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/impact-cli/internal/kpi"
	"github.com/sells-group/impact-cli/internal/methodology"
	"github.com/sells-group/impact-cli/internal/report"
)

var methodologyCmd = &cobra.Command{
	Use:     "methodology",
	Aliases: []string{"methodologies"},
	Short:   "Browse and check impact methodologies",
}

var methodologyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded methodologies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lib, err := initLibrary(initEngine())
		if err != nil {
			return err
		}
		formatMethodologyList(os.Stdout, lib)
		return nil
	},
}

var methodologyShowCmd = &cobra.Command{
	Use:   "show <id> [version]",
	Short: "Print a methodology as JSON",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := initLibrary(initEngine())
		if err != nil {
			return err
		}
		version := ""
		if len(args) == 2 {
			version = args[1]
		}
		mcfg, err := lib.Resolve(args[0], version)
		if err != nil {
			return err
		}
		return report.WriteJSON(os.Stdout, mcfg)
	},
}

var methodologyValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate methodology files against the KPI registry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := validateMethodologyFiles(os.Stdout, initEngine().Registry(), args)
		if failed > 0 {
			return eris.Errorf("%d of %d methodology files invalid", failed, len(args))
		}
		return nil
	},
}

// validateMethodologyFiles reports one line per file and returns the number
// of failures.
func validateMethodologyFiles(out io.Writer, reg *kpi.Registry, paths []string) int {
	failed := 0
	for _, p := range paths {
		mcfg, err := methodology.Load(p)
		if err == nil {
			err = methodology.Validate(mcfg, reg)
		}
		if err != nil {
			failed++
			_, _ = fmt.Fprintf(out, "FAIL  %s: %v\n", p, err)
			continue
		}
		_, _ = fmt.Fprintf(out, "OK    %s (%s, %d KPIs)\n", p, mcfg.Key(), len(mcfg.KPIs))
	}
	return failed
}

func formatMethodologyList(out io.Writer, lib *methodology.Library) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tVERSION\tNAME\tKPIS\tWEIGHT")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t----\t------")
	for _, key := range lib.List() {
		mcfg, err := lib.Get(key.ID, key.Version)
		if err != nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\n",
			mcfg.ID, mcfg.Version, mcfg.Name, len(mcfg.EnabledKPIs()), mcfg.TotalWeight())
	}
	_ = w.Flush()
}

func init() {
	methodologyCmd.AddCommand(methodologyListCmd)
	methodologyCmd.AddCommand(methodologyShowCmd)
	methodologyCmd.AddCommand(methodologyValidateCmd)
	rootCmd.AddCommand(methodologyCmd)
}
