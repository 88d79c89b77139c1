// Package history keeps the complete sampled time series of a
// simulation run and exposes a bounded trailing window for display.
// The full sequence is the source of truth for export; the window is
// derived from it and never mutates it.
package history

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Sample is one scheduler tick's worth of data, in display units:
// celsius temperatures, percent heater duties.
type Sample struct {
	Time float64
	T1   float64
	T2   float64
	Q1   float64
	Q2   float64
}

// Store is an append-only ordered sequence of samples. Samples are
// strictly increasing in time and never mutated after append.
type Store struct {
	samples []Sample
}

func New() *Store {
	return &Store{samples: make([]Sample, 0, 1024)}
}

func (s *Store) Append(sample Sample) {
	s.samples = append(s.samples, sample)
}

func (s *Store) Len() int {
	return len(s.samples)
}

// All returns a copy of the full history.
func (s *Store) All() []Sample {
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Last returns the most recent sample, if any.
func (s *Store) Last() (Sample, bool) {
	if len(s.samples) == 0 {
		return Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Window returns the trailing floor(seconds/dt) samples, or the full
// history if it is shorter. seconds <= 0 means unbounded.
func (s *Store) Window(seconds, dt float64) []Sample {
	if seconds <= 0 || dt <= 0 {
		return s.All()
	}
	// floor(seconds/dt), tolerating float rounding in the quotient.
	n := int(math.Floor(seconds/dt + 1e-9))
	if n >= len(s.samples) {
		return s.All()
	}
	out := make([]Sample, n)
	copy(out, s.samples[len(s.samples)-n:])
	return out
}

func (s *Store) Clear() {
	s.samples = s.samples[:0]
}

// CSVHeader is the literal export header; downstream analysis tools
// key on it, so it must not change.
const CSVHeader = "Time,T1,T2,Q1,Q2"

// WriteCSV writes the full history in the export format: header row,
// then one row per sample with time and temperatures to 2 decimal
// places and duties to 1.
func (s *Store) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, CSVHeader); err != nil {
		return err
	}
	for _, sm := range s.samples {
		_, err := fmt.Fprintf(bw, "%.2f,%.2f,%.2f,%.1f,%.1f\n",
			sm.Time, sm.T1, sm.T2, sm.Q1, sm.Q2)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseCSV reads back text in the WriteCSV format.
func ParseCSV(r io.Reader) ([]Sample, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("history: empty export")
	}
	if got := strings.TrimSpace(sc.Text()); got != CSVHeader {
		return nil, fmt.Errorf("history: unexpected header %q", got)
	}

	samples := make([]Sample, 0, 1024)
	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) != 5 {
			return nil, fmt.Errorf("history: line %d: expected 5 fields, got %d", line, len(fields))
		}
		vals := make([]float64, 5)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("history: line %d: %w", line, err)
			}
			vals[i] = v
		}
		samples = append(samples, Sample{
			Time: vals[0], T1: vals[1], T2: vals[2], Q1: vals[3], Q2: vals[4],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
