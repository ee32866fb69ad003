package schedule

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2030, time.March, 4, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	buffer := 15 * time.Minute

	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{
			name:   "identical intervals",
			aStart: at(10, 0), aEnd: at(10, 30),
			bStart: at(10, 0), bEnd: at(10, 30),
			want: true,
		},
		{
			name:   "gap of 14 minutes conflicts with 15 minute buffer",
			aStart: at(10, 0), aEnd: at(10, 30),
			bStart: at(10, 44), bEnd: at(11, 0),
			want: true,
		},
		{
			name:   "gap of 31 minutes clears the double buffer",
			aStart: at(10, 0), aEnd: at(10, 30),
			bStart: at(11, 1), bEnd: at(11, 30),
			want: false,
		},
		{
			name:   "gap of exactly 30 minutes does not conflict",
			aStart: at(10, 0), aEnd: at(10, 30),
			bStart: at(11, 0), bEnd: at(11, 30),
			want: false,
		},
		{
			name:   "gap of 29 minutes conflicts",
			aStart: at(10, 0), aEnd: at(10, 30),
			bStart: at(10, 59), bEnd: at(11, 30),
			want: true,
		},
		{
			name:   "contained interval",
			aStart: at(9, 0), aEnd: at(12, 0),
			bStart: at(10, 0), bEnd: at(10, 30),
			want: true,
		},
		{
			name:   "far apart",
			aStart: at(8, 0), aEnd: at(9, 0),
			bStart: at(14, 0), bEnd: at(15, 0),
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, buffer)
			if got != tc.want {
				t.Errorf("Overlaps(%v-%v, %v-%v) = %v, want %v",
					tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
			}
		})
	}
}

func TestOverlapsSymmetric(t *testing.T) {
	buffer := 15 * time.Minute
	pairs := [][4]time.Time{
		{at(10, 0), at(10, 30), at(10, 44), at(11, 0)},
		{at(10, 0), at(10, 30), at(11, 1), at(11, 30)},
		{at(9, 0), at(12, 0), at(10, 0), at(10, 30)},
		{at(8, 0), at(9, 0), at(14, 0), at(15, 0)},
	}

	for _, p := range pairs {
		ab := Overlaps(p[0], p[1], p[2], p[3], buffer)
		ba := Overlaps(p[2], p[3], p[0], p[1], buffer)
		if ab != ba {
			t.Errorf("Overlaps not symmetric for %v: ab=%v ba=%v", p, ab, ba)
		}
	}
}

func TestOverlapsZeroBuffer(t *testing.T) {
	// Half-open semantics: touching endpoints do not conflict without buffer.
	if Overlaps(at(10, 0), at(11, 0), at(11, 0), at(12, 0), 0) {
		t.Error("adjacent intervals with zero buffer should not overlap")
	}
	if !Overlaps(at(10, 0), at(11, 1), at(11, 0), at(12, 0), 0) {
		t.Error("intervals sharing one minute should overlap")
	}
}
