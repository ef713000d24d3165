package app

import (
	"fmt"
	"sort"
	"strings"

	"gradscope/domain/filter"
)

// ChartID names one chart a variant can show
type ChartID string

const (
	ChartEmployment ChartID = "employment"
	ChartEthnicity  ChartID = "ethnicity"
	ChartGender     ChartID = "gender"
	ChartDegree     ChartID = "degree"
	ChartReasons    ChartID = "unemployment_reasons"
	ChartSalary     ChartID = "salary"
)

// Variant is one dashboard page: which filters it offers, in which order, how
// their option lists are computed and which charts it draws. Pages differ
// only in this configuration.
type Variant struct {
	Name       string             `json:"name"`
	Title      string             `json:"title"`
	Dimensions []filter.Dimension `json:"dimensions"`
	Policy     filter.Policy      `json:"policy"`
	Charts     []ChartID          `json:"charts"`
	DrillDown  bool               `json:"drill_down"`
}

// Shows reports whether the variant draws a chart
func (v Variant) Shows(id ChartID) bool {
	for _, c := range v.Charts {
		if c == id {
			return true
		}
	}
	return false
}

// DefaultVariant is used when a request names no variant or an unknown one
const DefaultVariant = "overview"

var allCharts = []ChartID{ChartEmployment, ChartEthnicity, ChartGender, ChartDegree, ChartReasons, ChartSalary}

// BuiltinVariants returns the shipped pages
func BuiltinVariants() []Variant {
	return []Variant{
		{
			Name:       "overview",
			Title:      "Recent Graduates Overview",
			Dimensions: []filter.Dimension{filter.DimensionMajor, filter.DimensionYear},
			Policy:     filter.PolicyBase,
			Charts:     allCharts,
		},
		{
			Name:  "explorer",
			Title: "Graduate Explorer",
			Dimensions: []filter.Dimension{
				filter.DimensionDegree, filter.DimensionMajor, filter.DimensionYear,
				filter.DimensionGender, filter.DimensionEmployment,
			},
			Policy:    filter.PolicyChained,
			Charts:    allCharts,
			DrillDown: true,
		},
	}
}

// VariantRegistry resolves variant names
type VariantRegistry struct {
	variants map[string]Variant
	fallback string
}

// NewVariantRegistry indexes variants by name. fallback must name one of them.
func NewVariantRegistry(variants []Variant, fallback string) (*VariantRegistry, error) {
	r := &VariantRegistry{variants: make(map[string]Variant, len(variants)), fallback: fallback}
	for _, v := range variants {
		key := strings.ToLower(v.Name)
		if _, dup := r.variants[key]; dup {
			return nil, fmt.Errorf("duplicate variant %q", v.Name)
		}
		if len(v.Dimensions) == 0 {
			return nil, fmt.Errorf("variant %q has no dimensions", v.Name)
		}
		r.variants[key] = v
	}
	if _, ok := r.variants[strings.ToLower(fallback)]; !ok {
		return nil, fmt.Errorf("fallback variant %q is not defined", fallback)
	}
	return r, nil
}

// Lookup returns the named variant. An unknown name yields the fallback and
// ok=false so the caller can warn.
func (r *VariantRegistry) Lookup(name string) (Variant, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return r.variants[strings.ToLower(r.fallback)], true
	}
	if v, ok := r.variants[key]; ok {
		return v, true
	}
	return r.variants[strings.ToLower(r.fallback)], false
}

// Default names the variant served when a request names none
func (r *VariantRegistry) Default() string {
	return r.variants[strings.ToLower(r.fallback)].Name
}

// List returns the variants sorted by name
func (r *VariantRegistry) List() []Variant {
	out := make([]Variant, 0, len(r.variants))
	for _, v := range r.variants {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
