// Package kpi holds the formula registry: the single place where the
// closed-form impact formulas behind methodology KPIs are defined.
package kpi

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Category groups KPI impacts in scenario breakdowns.
type Category string

const (
	CategoryRevenue     Category = "revenue"
	CategoryRetention   Category = "retention"
	CategoryCostSavings Category = "cost_savings"
)

// Inputs is the flat map handed to a formula: the KPI's required company
// fields plus the scenario rate under the definition's BenchmarkInput name.
type Inputs map[string]float64

// Formula computes a raw annual impact. Formulas are pure.
type Formula func(in Inputs) (float64, error)

// Definition describes one registered KPI formula.
type Definition struct {
	ID             string
	Label          string
	Description    string
	RequiredInputs []string
	BenchmarkInput string
	Unit           string
	Category       Category
	Formula        Formula
}

// Registry is an indexed, read-only collection of KPI definitions. Build it
// once with NewRegistry; it is safe for concurrent reads.
type Registry struct {
	defs map[string]Definition
	ids  []string
}

// NewRegistry indexes the given definitions. Duplicate or incomplete
// definitions are rejected.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, eris.New("kpi: definition missing id")
		}
		if d.Formula == nil {
			return nil, eris.Errorf("kpi: definition %q missing formula", d.ID)
		}
		if d.BenchmarkInput == "" {
			return nil, eris.Errorf("kpi: definition %q missing benchmark input", d.ID)
		}
		if _, dup := r.defs[d.ID]; dup {
			return nil, eris.Errorf("kpi: duplicate definition %q", d.ID)
		}
		d.RequiredInputs = append([]string(nil), d.RequiredInputs...)
		if d.Unit == "" {
			d.Unit = "currency"
		}
		r.defs[d.ID] = d
		r.ids = append(r.ids, d.ID)
	}
	sort.Strings(r.ids)
	return r, nil
}

// Lookup returns the definition for id.
func (r *Registry) Lookup(id string) (Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// IDs returns every registered id in sorted order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.ids...)
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.ids)
}

var defaultRegistry = mustRegistry(Builtin()...)

// Default returns the process-wide registry of built-in formulas.
func Default() *Registry {
	return defaultRegistry
}

func mustRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}
