package store

import "github.com/kyleking/lazyrope/internal/record"

// Summary holds the basic statistics shown under a chart.
type Summary struct {
	Count int
	Mean  float64
	Max   float64
	Min   float64
}

// Summarize computes mean, max and min of field over records.
// An empty input yields a zero Summary.
func Summarize(records []record.Record, field record.Field) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	first := field.Value(records[0])
	s := Summary{Count: len(records), Max: first, Min: first}
	var total float64
	for _, r := range records {
		v := field.Value(r)
		total += v
		if v > s.Max {
			s.Max = v
		}
		if v < s.Min {
			s.Min = v
		}
	}
	s.Mean = total / float64(len(records))
	return s
}

// Values extracts field from each record, preserving order.
func Values(records []record.Record, field record.Field) []float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = field.Value(r)
	}
	return values
}
