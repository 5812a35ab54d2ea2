package valueobjects

import (
	"regexp"
	"time"
)

// LatestMonth is the month key of the slice mirroring an entity's newest month.
const LatestMonth = "latest"

var monthKeyPattern = regexp.MustCompile(`^#\d{6}$`)

// MonthOf formats t as a literal month key, "#YYYYMM" in UTC.
func MonthOf(t time.Time) string {
	return t.UTC().Format("#200601")
}

// IsMonthKey reports whether s is a literal "#YYYYMM" month key.
// Literal keys order chronologically under plain string comparison.
func IsMonthKey(s string) bool {
	return monthKeyPattern.MatchString(s)
}
