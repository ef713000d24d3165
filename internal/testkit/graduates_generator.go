package testkit

import (
	"math"
	"math/rand"
	"strconv"

	"gradscope/domain/dataset"
)

// Column groups of the generated graduates table
var (
	Majors = []string{"Biology", "Chemistry", "Computer Science", "Economics", "History", "Physics", "Psychology"}

	Ethnicities       = []string{"Asians", "Minorities", "Whites"}
	Genders           = []string{"Females", "Males"}
	Degrees           = []string{"Bachelors", "Doctorates", "Masters", "Professionals"}
	EmploymentStatus  = []string{"Employed", "Not in Labor Force", "Unemployed"}
	NotWorkingReasons = []string{"Family", "Layoff", "No Job Available", "No need/want", "Student"}
	WorkActivities    = []string{"Accounting/Finance/Contracts", "Computer Applications", "Management/Administration", "Research and Development", "Teaching"}
	OutsideReasons    = []string{"Career Change", "Family-related", "Job Location", "No Job Available", "Pay/Promotion", "Working Conditions"}
)

// GraduatesGeneratorConfig configures the synthetic graduates table
type GraduatesGeneratorConfig struct {
	StartYear int      `json:"start_year"`
	EndYear   int      `json:"end_year"`
	Majors    []string `json:"majors"`
	// ZeroTotalRate is the share of strata generated with no graduates.
	ZeroTotalRate float64 `json:"zero_total_rate"`
	// DirtyRate is the share of salary cells replaced with junk text.
	DirtyRate float64 `json:"dirty_rate"`
	Seed      int64   `json:"seed"`
}

// DefaultGraduatesConfig returns sensible defaults for graduates generation
func DefaultGraduatesConfig() GraduatesGeneratorConfig {
	return GraduatesGeneratorConfig{
		StartYear:     2010,
		EndYear:       2015,
		Majors:        Majors,
		ZeroTotalRate: 0.05,
		DirtyRate:     0.02,
		Seed:          42,
	}
}

// GraduatesGenerator produces a wide graduates table in the layout of the
// recent graduates survey: one stratum per (year, major) with count columns
// per category and salary moments.
type GraduatesGenerator struct {
	config GraduatesGeneratorConfig
	rng    *rand.Rand
}

// NewGraduatesGenerator creates a new generator
func NewGraduatesGenerator(config GraduatesGeneratorConfig) *GraduatesGenerator {
	return &GraduatesGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Headers returns the generated column names in order
func Headers() []string {
	h := []string{"Year", "Education.Major", "Demographics.Total"}
	h = appendPrefixed(h, "Demographics.Ethnicity.", Ethnicities)
	h = appendPrefixed(h, "Demographics.Gender.", Genders)
	h = appendPrefixed(h, "Education.Degrees.", Degrees)
	h = appendPrefixed(h, "Employment.Status.", EmploymentStatus)
	h = appendPrefixed(h, "Employment.Reason for Not Working.", NotWorkingReasons)
	h = appendPrefixed(h, "Employment.Work Activity.", WorkActivities)
	h = appendPrefixed(h, "Employment.Reason Working Outside Field.", OutsideReasons)
	return append(h, "Salaries.Mean", "Salaries.Median", "Salaries.Standard Deviation")
}

func appendPrefixed(dst []string, prefix string, labels []string) []string {
	for _, l := range labels {
		dst = append(dst, prefix+l)
	}
	return dst
}

// Generate builds the raw table, as a CSV reader would return it
func (g *GraduatesGenerator) Generate() *dataset.RawTable {
	table := &dataset.RawTable{Headers: Headers()}
	for year := g.config.StartYear; year <= g.config.EndYear; year++ {
		for _, major := range g.config.Majors {
			table.Rows = append(table.Rows, g.stratum(year, major))
		}
	}
	return table
}

func (g *GraduatesGenerator) stratum(year int, major string) []string {
	total := 0
	if g.rng.Float64() >= g.config.ZeroTotalRate {
		total = 50 + g.rng.Intn(5000)
	}

	row := []string{strconv.Itoa(year), major, strconv.Itoa(total)}
	row = append(row, g.split(total, len(Ethnicities))...)
	row = append(row, g.split(total, len(Genders))...)
	row = append(row, g.split(total, len(Degrees))...)

	status := g.splitInts(total, len(EmploymentStatus))
	row = append(row, itoa(status)...)
	employed, unemployed := status[0], status[2]
	row = append(row, g.split(unemployed, len(NotWorkingReasons))...)
	row = append(row, g.split(employed, len(WorkActivities))...)
	row = append(row, g.split(employed/3, len(OutsideReasons))...)

	mean := 40000 + g.rng.Float64()*60000
	std := 8000 + g.rng.Float64()*20000
	median := mean - g.rng.Float64()*5000
	if total == 0 {
		mean, std, median = 0, 0, 0
	}
	row = append(row, g.money(mean), g.money(median), g.money(std))
	return row
}

// split divides n into k non-negative integer parts
func (g *GraduatesGenerator) split(n, k int) []string {
	return itoa(g.splitInts(n, k))
}

func (g *GraduatesGenerator) splitInts(n, k int) []int {
	weights := make([]float64, k)
	sum := 0.0
	for i := range weights {
		weights[i] = g.rng.Float64() + 0.1
		sum += weights[i]
	}
	parts := make([]int, k)
	left := n
	for i := 0; i < k-1; i++ {
		parts[i] = int(math.Floor(float64(n) * weights[i] / sum))
		left -= parts[i]
	}
	parts[k-1] = left
	return parts
}

func (g *GraduatesGenerator) money(v float64) string {
	if g.rng.Float64() < g.config.DirtyRate {
		return "n/a"
	}
	return strconv.FormatFloat(math.Round(v), 'f', -1, 64)
}

func itoa(parts []int) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strconv.Itoa(p)
	}
	return out
}
