// internal/domain/view/chart.go
package view

import "attendance_dashboard/internal/domain/attendance"

// Slice is one segment of the attendance donut chart.
type Slice struct {
	Label string
	Value int
}

// Chart projects the state onto the ordered Present/Absent/Late segments.
// With no active report the class-wide record is charted.
// The result is derived on every call and never stored.
func Chart(s State, class attendance.Record) []Slice {
	r := class
	if s.ActiveReport != nil {
		r = *s.ActiveReport
	}
	return []Slice{
		{Label: "Present", Value: r.Present},
		{Label: "Absent", Value: r.Absent},
		{Label: "Late", Value: r.Late},
	}
}

// Percentages returns each slice's share of the total in percent.
// All shares are zero when the total is zero.
func Percentages(slices []Slice) []float64 {
	total := 0
	for _, sl := range slices {
		if sl.Value > 0 {
			total += sl.Value
		}
	}
	out := make([]float64, len(slices))
	if total == 0 {
		return out
	}
	for i, sl := range slices {
		if sl.Value > 0 {
			out[i] = float64(sl.Value) * 100 / float64(total)
		}
	}
	return out
}

// Segments splits width cells between the slices in proportion to their
// values, using largest remainders so the cells always sum to width (or to
// zero when every value is zero).
func Segments(slices []Slice, width int) []int {
	out := make([]int, len(slices))
	total := 0
	for _, sl := range slices {
		if sl.Value > 0 {
			total += sl.Value
		}
	}
	if total == 0 || width <= 0 {
		return out
	}

	rems := make([]int, len(slices))
	used := 0
	for i, sl := range slices {
		if sl.Value <= 0 {
			continue
		}
		out[i] = sl.Value * width / total
		rems[i] = sl.Value * width % total
		used += out[i]
	}
	for used < width {
		best := -1
		for i := range slices {
			if slices[i].Value > 0 && (best < 0 || rems[i] > rems[best]) {
				best = i
			}
		}
		out[best]++
		rems[best] = -1
		used++
	}
	return out
}
