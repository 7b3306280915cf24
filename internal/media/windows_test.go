package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanWindows(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		segment float64
		min     float64
		want    []Window
	}{
		{
			name:    "exact multiple",
			total:   60,
			segment: 30,
			min:     5,
			want: []Window{
				{Index: 0, Start: 0, End: 30},
				{Index: 1, Start: 30, End: 60},
			},
		},
		{
			name:    "short tail kept when above floor",
			total:   47,
			segment: 30,
			min:     5,
			want: []Window{
				{Index: 0, Start: 0, End: 30},
				{Index: 1, Start: 30, End: 47},
			},
		},
		{
			name:    "tail below floor dropped, index preserved",
			total:   62,
			segment: 30,
			min:     5,
			want: []Window{
				{Index: 0, Start: 0, End: 30},
				{Index: 1, Start: 30, End: 60},
			},
		},
		{
			name:    "whole file shorter than floor",
			total:   3,
			segment: 30,
			min:     5,
			want:    nil,
		},
		{
			name:    "single full window",
			total:   30,
			segment: 30,
			min:     5,
			want: []Window{
				{Index: 0, Start: 0, End: 30},
			},
		},
		{
			name:    "zero duration",
			total:   0,
			segment: 30,
			min:     5,
			want:    nil,
		},
		{
			name:    "invalid segment size",
			total:   60,
			segment: 0,
			min:     5,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanWindows(tt.total, tt.segment, tt.min))
		})
	}
}

func TestPlanWindows_HalfOpenCoverage(t *testing.T) {
	// Adjacent windows share a boundary: end of one is start of the next,
	// so no second of media is covered twice.
	windows := PlanWindows(95, 30, 5)
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].End, windows[i].Start)
	}
	assert.Equal(t, 95.0, windows[len(windows)-1].End)
}

func TestWindowDuration(t *testing.T) {
	w := Window{Index: 1, Start: 30, End: 47}
	assert.Equal(t, 17.0, w.Duration())
}
