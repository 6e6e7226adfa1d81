package finance

import "time"

const dateLayout = "2006-01-02"

// ValidDate reports whether s is a fixed-width YYYY-MM-DD calendar date.
// Month bucketing and range filtering both rely on lexical comparison of
// date strings, which is only correct for this exact format, so it is
// enforced at ingestion rather than assumed downstream.
func ValidDate(s string) bool {
	if len(s) != len(dateLayout) {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// ValidateTransaction checks the one invariant no stored transaction may
// violate: a well-formed date. Descriptions may be empty; categorization
// treats a blank description as uncategorized.
func ValidateTransaction(i int, t Transaction) error {
	if t.Date == "" {
		return Validationf("transaction %d: missing date", i)
	}
	if !ValidDate(t.Date) {
		return Validationf("transaction %d: date %q is not in YYYY-MM-DD format", i, t.Date)
	}
	return nil
}

// ValidateRecord validates every transaction in a record before storage.
func ValidateRecord(rec AccountRecord) error {
	for i, t := range rec.Transactions {
		if err := ValidateTransaction(i, t); err != nil {
			return err
		}
	}
	return nil
}
