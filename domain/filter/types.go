package filter

import (
	"sort"
	"strings"

	"gradscope/domain/core"
)

// All is the sentinel meaning "do not filter on this dimension".
const All = "All"

// Dimension identifies one filterable attribute of the graduates table
type Dimension string

const (
	DimensionMajor      Dimension = "major"
	DimensionDegree     Dimension = "degree"
	DimensionYear       Dimension = "year"
	DimensionGender     Dimension = "gender"
	DimensionEmployment Dimension = "employment"
)

// DefaultOrder is the order predicates are applied in.
var DefaultOrder = []Dimension{DimensionMajor, DimensionDegree, DimensionYear, DimensionGender, DimensionEmployment}

// Schema maps dimensions onto columns. Count-encoded dimensions (degree,
// gender, employment) use a column prefix; the selected label is appended
// to it to find the count column.
type Schema struct {
	MajorColumn      string `json:"major_column"`
	YearColumn       string `json:"year_column"`
	DegreePrefix     string `json:"degree_prefix"`
	GenderPrefix     string `json:"gender_prefix"`
	EmploymentPrefix string `json:"employment_prefix"`
}

// DefaultSchema matches the recent graduates table
func DefaultSchema() Schema {
	return Schema{
		MajorColumn:      "Education.Major",
		YearColumn:       "Year",
		DegreePrefix:     "Education.Degrees.",
		GenderPrefix:     "Demographics.Gender.",
		EmploymentPrefix: "Employment.Status.",
	}
}

// PrefixFor returns the count-column prefix of a presence dimension
func (s Schema) PrefixFor(d Dimension) (string, bool) {
	switch d {
	case DimensionDegree:
		return s.DegreePrefix, true
	case DimensionGender:
		return s.GenderPrefix, true
	case DimensionEmployment:
		return s.EmploymentPrefix, true
	}
	return "", false
}

// Criteria is one snapshot of the widget selections. It is rebuilt on every
// interaction and never stored. Year strings are passed through as the
// widget gives them; "" means unselected.
type Criteria struct {
	Majors     []string `json:"majors"`
	Degree     string   `json:"degree"`
	StartYear  string   `json:"start_year"`
	EndYear    string   `json:"end_year"`
	Gender     string   `json:"gender"`
	Employment string   `json:"employment"`
}

// DefaultCriteria selects everything
func DefaultCriteria() Criteria {
	return Criteria{Majors: []string{All}}
}

// IsUniversal reports whether a single-select value means "no filter"
func IsUniversal(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == All
}

// AllMajors reports whether the major selection is universal: empty, or
// containing the All entry.
func (c Criteria) AllMajors() bool {
	if len(c.Majors) == 0 {
		return true
	}
	for _, m := range c.Majors {
		if m == All {
			return true
		}
	}
	return false
}

// Selection returns the single-select value of a presence dimension
func (c Criteria) Selection(d Dimension) string {
	switch d {
	case DimensionDegree:
		return c.Degree
	case DimensionGender:
		return c.Gender
	case DimensionEmployment:
		return c.Employment
	}
	return ""
}

// Active reports whether the criteria constrain a dimension
func (c Criteria) Active(d Dimension) bool {
	switch d {
	case DimensionMajor:
		return !c.AllMajors()
	case DimensionYear:
		return strings.TrimSpace(c.StartYear) != ""
	default:
		return !IsUniversal(c.Selection(d))
	}
}

// Restrict clears every dimension not in dims, so a variant that does not
// offer a filter never applies one left over from another page.
func (c Criteria) Restrict(dims []Dimension) Criteria {
	keep := make(map[Dimension]bool, len(dims))
	for _, d := range dims {
		keep[d] = true
	}
	out := Criteria{Majors: []string{All}}
	if keep[DimensionMajor] && len(c.Majors) > 0 {
		out.Majors = append([]string(nil), c.Majors...)
	}
	if keep[DimensionDegree] {
		out.Degree = c.Degree
	}
	if keep[DimensionYear] {
		out.StartYear, out.EndYear = c.StartYear, c.EndYear
	}
	if keep[DimensionGender] {
		out.Gender = c.Gender
	}
	if keep[DimensionEmployment] {
		out.Employment = c.Employment
	}
	return out
}

// MajorsLabel renders the selected majors for the data preview heading
func (c Criteria) MajorsLabel() string {
	if c.AllMajors() {
		return All
	}
	return strings.Join(c.Majors, ", ")
}

// Fingerprint is a stable hash of the criteria. Two snapshots with the same
// effective selection share a fingerprint regardless of major order.
func (c Criteria) Fingerprint() core.Hash {
	majors := []string{All}
	if !c.AllMajors() {
		majors = append([]string(nil), c.Majors...)
		sort.Strings(majors)
	}
	norm := func(v string) string {
		if IsUniversal(v) {
			return ""
		}
		return strings.TrimSpace(v)
	}

	var b strings.Builder
	b.WriteString("majors=" + strings.Join(majors, "\x1f"))
	b.WriteString("|degree=" + norm(c.Degree))
	b.WriteString("|start=" + strings.TrimSpace(c.StartYear))
	b.WriteString("|end=" + strings.TrimSpace(c.EndYear))
	b.WriteString("|gender=" + norm(c.Gender))
	b.WriteString("|employment=" + norm(c.Employment))
	return core.NewHash([]byte(b.String()))
}
