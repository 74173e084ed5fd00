package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/impact-cli/internal/confidence"
	"github.com/sells-group/impact-cli/internal/dataload"
	"github.com/sells-group/impact-cli/internal/engine"
	"github.com/sells-group/impact-cli/internal/merge"
	"github.com/sells-group/impact-cli/internal/methodology"
	"github.com/sells-group/impact-cli/internal/model"
	"github.com/sells-group/impact-cli/internal/report"
)

type calculateOpts struct {
	methodologyID      string
	methodologyVersion string
	methodologyFile    string
	assumptionsFile    string
	format             string
	output             string
	save               bool
	rescore            bool
}

var calcOpts calculateOpts

var calculateCmd = &cobra.Command{
	Use:   "calculate <company-file> [more-company-files...]",
	Short: "Estimate business impact for a company",
	Long: "Loads company data (JSON, CSV or XLSX), runs every scenario of a methodology and renders the audit trail. " +
		"Several files are merged in order, higher confidence tiers winning on overlap.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("calculate"); err != nil {
			return err
		}

		format, err := report.ParseFormat(calcOpts.format)
		if err != nil {
			return err
		}
		if format == report.FormatXLSX && calcOpts.output == "" {
			return eris.New("calculate: --output is required for xlsx")
		}

		data, err := loadCompanies(args, cfg.Merge.DiscrepancyThreshold)
		if err != nil {
			return err
		}
		if calcOpts.rescore {
			data = confidence.Rescore(data, time.Now(), cfg.Confidence)
		}

		var assumptions model.ImpactAssumptions
		if calcOpts.assumptionsFile != "" {
			if assumptions, err = dataload.LoadAssumptions(calcOpts.assumptionsFile); err != nil {
				return err
			}
		}

		eng := initEngine()
		mcfg, err := resolveMethodology(eng, calcOpts)
		if err != nil {
			return err
		}

		res, err := eng.Calculate(data, mcfg, assumptions)
		if err != nil {
			return err
		}

		if calcOpts.save {
			if err := saveCalculation(ctx, data, assumptions, res); err != nil {
				return err
			}
		}

		return writeReport(res, format, calcOpts.output)
	},
}

func loadCompanies(paths []string, threshold float64) (model.CompanyData, error) {
	primary, err := dataload.LoadCompany(paths[0])
	if err != nil {
		return model.CompanyData{}, err
	}
	if len(paths) == 1 {
		return primary, nil
	}
	secondaries := make([]model.CompanyData, 0, len(paths)-1)
	for _, p := range paths[1:] {
		d, err := dataload.LoadCompany(p)
		if err != nil {
			return model.CompanyData{}, err
		}
		secondaries = append(secondaries, d)
	}
	merged, conflicts := merge.New(threshold).Merge(primary, secondaries...)
	zap.L().Info("merged company data",
		zap.Int("sources", len(paths)),
		zap.Int("fields", len(merged.Fields)),
		zap.Int("conflicts", len(conflicts)),
	)
	return merged, nil
}

func resolveMethodology(eng *engine.Engine, o calculateOpts) (*methodology.Config, error) {
	if o.methodologyFile != "" {
		return methodology.Load(o.methodologyFile)
	}
	lib, err := initLibrary(eng)
	if err != nil {
		return nil, err
	}
	id := o.methodologyID
	if id == "" {
		id = defaultMethodologyID()
	}
	return lib.Resolve(id, o.methodologyVersion)
}

func saveCalculation(ctx context.Context, data model.CompanyData, assumptions model.ImpactAssumptions, res *model.CalculationResult) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	calc := &model.Calculation{Input: data, Assumptions: assumptions, Result: res}
	if err := st.SaveCalculation(ctx, calc); err != nil {
		return eris.Wrap(err, "calculate: save")
	}
	zap.L().Info("saved calculation", zap.String("id", calc.ID), zap.String("company", calc.CompanyName))
	return nil
}

func writeReport(res *model.CalculationResult, format report.Format, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return eris.Wrapf(err, "calculate: create %s", output)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	return report.Write(w, res, format)
}

func init() {
	f := calculateCmd.Flags()
	f.StringVar(&calcOpts.methodologyID, "methodology", "", "methodology id (default from config)")
	f.StringVar(&calcOpts.methodologyVersion, "methodology-version", "", "methodology version (default latest)")
	f.StringVar(&calcOpts.methodologyFile, "methodology-file", "", "load the methodology from a JSON or YAML file instead of the library")
	f.StringVar(&calcOpts.assumptionsFile, "assumptions", "", "impact assumptions file (JSON or YAML)")
	f.StringVar(&calcOpts.format, "format", "table", "output format: table, json, csv, xlsx")
	f.StringVarP(&calcOpts.output, "output", "o", "", "write the report to a file instead of stdout")
	f.BoolVar(&calcOpts.save, "save", false, "store the calculation record")
	f.BoolVar(&calcOpts.rescore, "rescore", false, "decay dated confidence scores before calculating")
	rootCmd.AddCommand(calculateCmd)
}
