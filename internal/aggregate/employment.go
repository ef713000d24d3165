package aggregate

import (
	"math"

	"gradscope/domain/dataset"
)

// Employment columns of the graduates table
const (
	EmployedColumn     = "Employment.Status.Employed"
	UnemployedColumn   = "Employment.Status.Unemployed"
	ReasonsPrefix      = "Employment.Reason for Not Working."
	WorkActivityPrefix = "Employment.Work Activity."
	OutsideFieldPrefix = "Employment.Reason Working Outside Field."
)

// EmploymentStatus builds the employed/unemployed donut. When the unemployed
// column is absent or sums to zero, the not-working reasons are used instead.
func EmploymentStatus(ds *dataset.Dataset) Breakdown {
	employed := ColumnTotal(ds, EmployedColumn)
	unemployed := ColumnTotal(ds, UnemployedColumn)
	if unemployed == 0 {
		if reasons, ok := PrefixTotal(ds, ReasonsPrefix); ok {
			unemployed = reasons
		}
	}

	b := FromValues("Employment status", []string{"Employed", "Unemployed"}, []float64{employed, unemployed})
	if !b.OK() {
		b.Message = "Employment status data not available for the current selection."
	}
	return b
}

// UnemploymentReasons is the reasons table: the reasons group, largest first.
func UnemploymentReasons(ds *dataset.Dataset) Breakdown {
	b := Group(ds, "Unemployment reasons", ReasonsPrefix)
	switch b.Status {
	case StatusOK:
		return b.SortByValue()
	case StatusColumnsMissing:
		b.Message = "No unemployment reason columns found in dataset."
	case StatusNoData:
		b.Message = "No unemployment reason data available for the selection."
	}
	return b
}

// FieldAlignment splits employed graduates into those working inside and
// outside their field. Inside = employed - outside, floored at zero.
func FieldAlignment(ds *dataset.Dataset) Breakdown {
	if !ds.HasColumn(EmployedColumn) {
		return Breakdown{
			Title:   "Field alignment",
			Status:  StatusColumnsMissing,
			Message: "Field alignment columns not found in dataset.",
		}
	}
	employed := ColumnTotal(ds, EmployedColumn)
	outside, _ := PrefixTotal(ds, OutsideFieldPrefix)
	inside := math.Max(employed-outside, 0)

	return FromValues("Field alignment", []string{"In field", "Outside field"}, []float64{inside, outside})
}
