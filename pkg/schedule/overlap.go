// Package schedule holds the pure time-interval arithmetic shared by the
// booking service and the meeting optimizer.
package schedule

import "time"

// Overlaps reports whether two half-open intervals intersect once each is
// inflated by the turnover buffer on both sides. The buffer models the
// mandatory gap between back-to-back meetings in the same room: with a 15
// minute buffer, two meetings need at least 30 minutes between them.
//
// Behavior is only defined for well-formed intervals (start <= end);
// malformed input is rejected upstream by validation.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time, buffer time.Duration) bool {
	return aStart.Add(-buffer).Before(bEnd.Add(buffer)) &&
		bStart.Add(-buffer).Before(aEnd.Add(buffer))
}
