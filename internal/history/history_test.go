package history

import (
	"math"
	"strings"
	"testing"
)

func fill(s *Store, n int, dt float64) {
	for i := 1; i <= n; i++ {
		t := float64(i) * dt
		s.Append(Sample{Time: t, T1: 20 + t, T2: 20 + t/2, Q1: 50, Q2: 25})
	}
}

func TestWindowUnbounded(t *testing.T) {
	s := New()
	fill(s, 100, 0.1)

	view := s.Window(0, 0.1)
	if len(view) != s.Len() {
		t.Errorf("unbounded window: expected %d samples, got %d", s.Len(), len(view))
	}
}

func TestWindowTrailing(t *testing.T) {
	s := New()
	fill(s, 100, 0.1)

	// 5 seconds at dt=0.1 -> 50 trailing samples.
	view := s.Window(5.0, 0.1)
	if len(view) != 50 {
		t.Fatalf("expected 50 samples, got %d", len(view))
	}
	if view[0].Time != s.All()[50].Time {
		t.Errorf("window is not the trailing suffix")
	}
	last, _ := s.Last()
	if view[len(view)-1] != last {
		t.Errorf("window does not end at the newest sample")
	}
}

func TestWindowShorterHistory(t *testing.T) {
	s := New()
	fill(s, 10, 0.1)

	view := s.Window(5.0, 0.1)
	if len(view) != 10 {
		t.Errorf("expected full history when shorter than window, got %d", len(view))
	}
}

func TestWindowDoesNotAliasStore(t *testing.T) {
	s := New()
	fill(s, 20, 0.1)

	view := s.Window(1.0, 0.1)
	view[0].T1 = -999
	if s.All()[10].T1 == -999 {
		t.Error("window view aliases store backing array")
	}
}

func TestExportFormat(t *testing.T) {
	s := New()
	s.Append(Sample{Time: 0.1, T1: 23.456, T2: 23.0, Q1: 55.56, Q2: 0})

	var sb strings.Builder
	if err := s.WriteCSV(&sb); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := "Time,T1,T2,Q1,Q2\n0.10,23.46,23.00,55.6,0.0\n"
	if sb.String() != want {
		t.Errorf("export mismatch:\n got %q\nwant %q", sb.String(), want)
	}
}

func TestExportRoundTrip(t *testing.T) {
	s := New()
	fill(s, 250, 0.1)

	var sb strings.Builder
	if err := s.WriteCSV(&sb); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	parsed, err := ParseCSV(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(parsed) != s.Len() {
		t.Fatalf("expected %d samples, got %d", s.Len(), len(parsed))
	}

	orig := s.All()
	for i := range parsed {
		if math.Abs(parsed[i].Time-orig[i].Time) > 0.005 ||
			math.Abs(parsed[i].T1-orig[i].T1) > 0.005 ||
			math.Abs(parsed[i].T2-orig[i].T2) > 0.005 ||
			math.Abs(parsed[i].Q1-orig[i].Q1) > 0.05 ||
			math.Abs(parsed[i].Q2-orig[i].Q2) > 0.05 {
			t.Fatalf("sample %d mismatch: %+v vs %+v", i, parsed[i], orig[i])
		}
	}
}

func TestParseCSVBadHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("time,t1\n1,2\n"))
	if err == nil {
		t.Error("expected error for bad header")
	}
}

func TestClear(t *testing.T) {
	s := New()
	fill(s, 10, 0.1)
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty store after clear, got %d", s.Len())
	}
	if _, ok := s.Last(); ok {
		t.Error("Last should report no sample after clear")
	}
}
