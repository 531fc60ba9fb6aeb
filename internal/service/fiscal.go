package service

import (
	"fmt"
	"time"

	"agristock/internal/model"
	"agristock/internal/repository"
)

// FinancialYear returns the April-March year containing date, e.g.
// "2025-2026" for 2026-01-15
func FinancialYear(date string) (string, error) {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return "", err
	}
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1), nil
}

// FinancialYearRange converts "2025-2026" into the inclusive date range
// 2025-04-01 .. 2026-03-31
func FinancialYearRange(fy string) (repository.DateRange, error) {
	var start, end int
	if _, err := fmt.Sscanf(fy, "%d-%d", &start, &end); err != nil || end != start+1 {
		return repository.DateRange{}, newValidationError("fy", "must look like 2025-2026")
	}
	return repository.DateRange{
		Start: fmt.Sprintf("%04d-04-01", start),
		End:   fmt.Sprintf("%04d-03-31", end),
	}, nil
}

// ListFilter narrows a document listing. FinancialYear wins over Start/End.
type ListFilter struct {
	FinancialYear string
	Start         string
	End           string
}

func (f ListFilter) dateRange() (repository.DateRange, error) {
	if f.FinancialYear != "" {
		return FinancialYearRange(f.FinancialYear)
	}
	for field, v := range map[string]string{"start": f.Start, "end": f.End} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, v); err != nil {
			return repository.DateRange{}, newValidationError(field, "must be a date in YYYY-MM-DD form")
		}
	}
	return repository.DateRange{Start: f.Start, End: f.End}, nil
}
