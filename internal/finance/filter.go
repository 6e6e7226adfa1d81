package finance

import "strings"

// rangeDelimiters are the recognized separators between the two endpoints
// of a date-range filter, tried in order. "/" covers ISO 8601 interval
// notation.
var rangeDelimiters = []string{" to ", "..", "/"}

// AmountRange bounds transaction magnitude. Either endpoint may be nil,
// defaulting to unbounded. Matching is on |amount|: a $50 expense and a
// $50 income both pass a {min: 40, max: 60} filter.
type AmountRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (a *AmountRange) matches(amount float64) bool {
	mag := abs(amount)
	if a.Min != nil && mag < *a.Min {
		return false
	}
	if a.Max != nil && mag > *a.Max {
		return false
	}
	return true
}

// Filter composes the two independent predicates with AND semantics. A
// Date of "2024-01-15" matches that day exactly; "2024-01-01 to 2024-03-31"
// (or "2024-01-01..2024-03-31") matches the inclusive lexical range.
// Lexical comparison is valid only because dates are fixed-width ISO
// strings; this is a documented constraint, not a general date comparator.
type Filter struct {
	Date   string
	Amount *AmountRange
}

// Active reports whether any predicate is set. Callers use this to decide
// whether an empty filtered view means "record excluded" or "record never
// filtered".
func (f Filter) Active() bool {
	return f.Date != "" || f.Amount != nil
}

type datePredicate struct {
	exact string
	start string
	end   string
}

func (p datePredicate) matches(date string) bool {
	if p.exact != "" {
		return date == p.exact
	}
	return p.start <= date && date <= p.end
}

func parseDateFilter(s string) (datePredicate, error) {
	for _, delim := range rangeDelimiters {
		if !strings.Contains(s, delim) {
			continue
		}
		bounds := strings.SplitN(s, delim, 2)
		start := strings.TrimSpace(bounds[0])
		end := strings.TrimSpace(bounds[1])
		if !ValidDate(start) || !ValidDate(end) {
			return datePredicate{}, Validationf("date range %q: endpoints must be YYYY-MM-DD", s)
		}
		if start > end {
			return datePredicate{}, Validationf("date range %q: start is after end", s)
		}
		return datePredicate{start: start, end: end}, nil
	}
	if !ValidDate(s) {
		return datePredicate{}, Validationf("date filter %q: expected YYYY-MM-DD or a range like \"2024-01-01 to 2024-01-31\"", s)
	}
	return datePredicate{exact: s}, nil
}

// FilteredRecord is the result of narrowing a record: a fresh copy holding
// only the matching subsequence, with the final balance recomputed from
// that subsequence.
type FilteredRecord struct {
	Record       AccountRecord
	FinalBalance float64
}

// ApplyFilter returns the matching subset of rec's transactions and the
// recomputed balance. The input record is never mutated. An empty result
// under an active filter is a valid outcome; callers exclude such records
// from result sets unless explicitly reporting a diagnostic.
func ApplyFilter(rec AccountRecord, f Filter) (FilteredRecord, error) {
	var datePred datePredicate
	if f.Date != "" {
		var err error
		datePred, err = parseDateFilter(f.Date)
		if err != nil {
			return FilteredRecord{}, err
		}
	}

	matched := make([]Transaction, 0, len(rec.Transactions))
	for _, t := range rec.Transactions {
		if f.Date != "" && !datePred.matches(t.Date) {
			continue
		}
		if f.Amount != nil && !f.Amount.matches(t.Amount) {
			continue
		}
		matched = append(matched, t)
	}

	narrowed := AccountRecord{
		AccountID:      rec.AccountID,
		InitialBalance: rec.InitialBalance,
		Transactions:   matched,
		Extra:          rec.Extra,
	}
	return FilteredRecord{
		Record:       narrowed,
		FinalBalance: narrowed.FinalBalance(),
	}, nil
}
