package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/critters/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\") error = %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}

	// A nil manager is a no-op sink.
	if err := om.WriteTelemetry(Record{}); err != nil {
		t.Errorf("WriteTelemetry on nil manager = %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager = %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")

	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager error = %v", err)
	}

	for tick := int32(50); tick <= 150; tick += 50 {
		if err := om.WriteTelemetry(Record{Tick: tick, Herbivores: 10, SpawnRate: 0.3}); err != nil {
			t.Fatalf("WriteTelemetry error = %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkHerbivoreCrash, Tick: 100, Description: "drop"}); err != nil {
		t.Fatalf("WriteBookmark error = %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load error = %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig error = %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3 rows", len(lines))
	}

	wantHeader := "tick,spawn_rate,plants,herbivores,carnivores,tick_duration_us,mean_size,mean_speed,mean_energy,mean_vision,births,deaths,kills,plants_eaten,speciations"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	if !strings.HasPrefix(lines[1], "50,0.3,0,10,") {
		t.Errorf("first row = %q", lines[1])
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
	if om.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", om.Dir(), dir)
	}
}

func TestOutputManagerPerfAndBookmarks(t *testing.T) {
	dir := t.TempDir()

	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager error = %v", err)
	}

	var stats PerfStats
	stats.AvgTickDuration = 1200 * time.Microsecond
	for _, end := range []int32{50, 100} {
		if err := om.WritePerf(stats, end); err != nil {
			t.Fatalf("WritePerf error = %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSpeciation, Tick: 100, Description: "litter"}); err != nil {
		t.Fatalf("WriteBookmark error = %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	perf, err := os.ReadFile(filepath.Join(dir, PerfFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(perf)), "\n")
	if len(lines) != 3 {
		t.Fatalf("perf.csv has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,avg_tick_us,") {
		t.Errorf("perf header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "100,1200,") {
		t.Errorf("second perf row = %q", lines[2])
	}

	marks, err := os.ReadFile(filepath.Join(dir, BookmarksFile))
	if err != nil {
		t.Fatal(err)
	}
	want := "type,tick,description\nspeciation,100,litter\n"
	if string(marks) != want {
		t.Errorf("bookmarks.csv = %q, want %q", marks, want)
	}
}
