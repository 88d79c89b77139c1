package storage

import (
	"math"
	"testing"

	"github.com/abe-mart/tclab-sim/internal/config"
	"github.com/abe-mart/tclab-sim/internal/history"
)

func TestSaveLoadRun(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	hist := history.New()
	for i := 1; i <= 50; i++ {
		tm := float64(i) * 0.1
		hist.Append(history.Sample{Time: tm, T1: 23 + tm, T2: 23, Q1: 100, Q2: 0})
	}

	cfg := config.DefaultConfig()
	cfg.Mode = "auto"
	runID, err := store.Save(cfg, hist, map[string]float64{"peak_temp": 28.0})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if meta.Mode != "auto" {
		t.Errorf("mode not persisted: %s", meta.Mode)
	}
	if meta.Metrics["peak_temp"] != 28.0 {
		t.Errorf("metrics not persisted: %v", meta.Metrics)
	}

	samples, err := store.LoadHistory(runID)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(samples) != 50 {
		t.Fatalf("expected 50 samples, got %d", len(samples))
	}
	if math.Abs(samples[49].T1-28.0) > 0.01 {
		t.Errorf("sample data mismatch: %+v", samples[49])
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Errorf("List returned %v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	store := New(t.TempDir() + "/nope")
	runs, err := store.List()
	if err != nil {
		t.Fatalf("List on missing dir should not error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
