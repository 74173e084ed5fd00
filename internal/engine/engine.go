// Package engine computes a three-scenario impact estimate with a per-KPI
// audit trail from company data and a methodology. It is a pure function of
// its inputs: no I/O, no clock, no state retained between calls.
package engine

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/impact-cli/internal/kpi"
	"github.com/sells-group/impact-cli/internal/methodology"
	"github.com/sells-group/impact-cli/internal/model"
)

// DefaultEngagementCostField is the company data field read for ROI.
const DefaultEngagementCostField = "engagement_cost"

// Engine runs calculations. The zero value is not usable; call New.
type Engine struct {
	reg       *kpi.Registry
	parallel  bool
	costField string
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the built-in formula registry.
func WithRegistry(reg *kpi.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.reg = reg
		}
	}
}

// WithParallel evaluates the three scenarios concurrently.
func WithParallel(on bool) Option {
	return func(e *Engine) { e.parallel = on }
}

// WithEngagementCostField changes which company field holds the engagement
// cost used for ROI.
func WithEngagementCostField(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.costField = name
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		reg:       kpi.Default(),
		costField: DefaultEngagementCostField,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the formula registry the engine evaluates against.
func (e *Engine) Registry() *kpi.Registry {
	return e.reg
}

// Calculate runs every scenario of cfg against data. assumptions may be nil.
// An invalid methodology returns an error wrapping a
// *methodology.ValidationError and no result; per-KPI problems never
// return an error and show up as skipped audit entries instead.
func (e *Engine) Calculate(data model.CompanyData, cfg *methodology.Config, assumptions model.ImpactAssumptions) (*model.CalculationResult, error) {
	if err := methodology.Validate(cfg, e.reg); err != nil {
		return nil, eris.Wrap(err, "engine: calculate")
	}

	required := cfg.RequiredInputs(e.reg)
	missing := make([]string, 0)
	available := make([]string, 0, len(required))
	for _, name := range required {
		if data.Has(name) {
			available = append(available, name)
		} else {
			missing = append(missing, name)
		}
	}

	completeness := 1.0
	if len(required) > 0 {
		completeness = float64(len(required)-len(missing)) / float64(len(required))
	}

	warnings := make([]string, 0, 1)
	if len(missing) > 0 {
		warnings = append(warnings, "Missing inputs: "+strings.Join(missing, ", ")+
			". KPIs requiring these will be skipped.")
	}

	scenarios := model.Scenarios()
	results := make([]model.ScenarioResult, len(scenarios))
	if e.parallel {
		var g errgroup.Group
		for i, s := range scenarios {
			g.Go(func() error {
				results[i] = e.runScenario(data, cfg, s, assumptions)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, s := range scenarios {
			results[i] = e.runScenario(data, cfg, s, assumptions)
		}
	}

	out := &model.CalculationResult{
		CompanyName:        data.CompanyName,
		Industry:           data.Industry,
		MethodologyID:      cfg.ID,
		MethodologyVersion: cfg.Version,
		Scenarios:          make(map[model.Scenario]model.ScenarioResult, len(scenarios)),
		DataCompleteness:   completeness,
		MissingInputs:      missing,
		AvailableInputs:    available,
		Warnings:           warnings,
	}
	for i, s := range scenarios {
		out.Scenarios[s] = results[i]
	}

	zap.L().Debug("engine: calculation complete",
		zap.String("company", data.CompanyName),
		zap.String("methodology", cfg.Key().String()),
		zap.Float64("completeness", completeness),
		zap.Int("missing_inputs", len(missing)),
	)
	return out, nil
}

func sortedUnique(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	j := 0
	for i, s := range out {
		if i > 0 && s == out[j-1] {
			continue
		}
		out[j] = s
		j++
	}
	return out[:j]
}
