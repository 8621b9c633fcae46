package speech

import (
	"fmt"
	"strings"
)

// encodeSRT renders entries as SubRip text, one numbered block per entry in
// the order given (callers are expected to pass them already sorted by
// StartSeconds).
func encodeSRT(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, formatTimestamp(e.StartSeconds), formatTimestamp(e.EndSeconds), e.Text)
	}
	return b.String()
}

// formatTimestamp renders seconds as SRT's HH:MM:SS,mmm timestamp format.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds*1000 + 0.5)
	ms := totalMillis % 1000
	totalSeconds := totalMillis / 1000
	s := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	m := totalMinutes % 60
	h := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
