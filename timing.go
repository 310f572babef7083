package kkr

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// timings averages the time of every labelled step over the iterations
// in the timing file. Lines that do not end in a number are headers.
func timings(x *extraction) error {
	t := x.Timing
	if err := need(t); err != nil {
		return err
	}
	var labels []string
	samples := make(map[string][]float64)
	for _, line := range t.Lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		v, err := parseFloat(fields[len(fields)-1])
		if err != nil {
			continue
		}
		label := strings.Join(fields[:len(fields)-1], " ")
		if _, ok := samples[label]; !ok {
			labels = append(labels, label)
		}
		samples[label] = append(samples[label], v)
	}
	if len(labels) == 0 {
		return fmt.Errorf("timings in %s: %w", t.Name, ErrMarkerNotFound)
	}
	g := x.out.group("timings_group")
	for _, label := range labels {
		g.Set(label, stat.Mean(samples[label], nil))
	}
	x.out.Set("timings_unit", "seconds")
	return nil
}
