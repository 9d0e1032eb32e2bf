package utils

import (
	"fmt"
	"time"
)

// FormatSequenceID builds identifiers such as ORD-20250101-001 from a
// sequence value. The date is taken in UTC; sequences past 999 widen.
func FormatSequenceID(prefix string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, at.UTC().Format("20060102"), seq)
}
