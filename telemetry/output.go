package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/critters/config"
)

// Output file names inside the run directory.
const (
	TelemetryFile = "telemetry.csv"
	PerfFile      = "perf.csv"
	BookmarksFile = "bookmarks.csv"
	ConfigFile    = "config.yaml"
)

// csvSink appends gocsv rows of one type to a file, writing the header
// with the first batch.
type csvSink[T any] struct {
	name   string
	f      *os.File
	header bool
}

func openSink[T any](dir, name string) (*csvSink[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvSink[T]{name: name, f: f}, nil
}

func (s *csvSink[T]) write(rows ...T) error {
	var err error
	if s.header {
		err = gocsv.MarshalWithoutHeaders(rows, s.f)
	} else {
		err = gocsv.Marshal(rows, s.f)
		s.header = err == nil
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", s.name, err)
	}
	return nil
}

func (s *csvSink[T]) close() error {
	if s == nil {
		return nil
	}
	return s.f.Close()
}

// OutputManager writes a run's CSV logs and config snapshot into one directory.
// A nil *OutputManager is a valid sink that discards everything.
type OutputManager struct {
	dir       string
	telemetry *csvSink[Record]
	perf      *csvSink[PerfStatsCSV]
	bookmarks *csvSink[Bookmark]
}

// NewOutputManager creates dir and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.telemetry, err = openSink[Record](dir, TelemetryFile); err != nil {
		return nil, errors.Join(err, om.Close())
	}
	if om.perf, err = openSink[PerfStatsCSV](dir, PerfFile); err != nil {
		return nil, errors.Join(err, om.Close())
	}
	if om.bookmarks, err = openSink[Bookmark](dir, BookmarksFile); err != nil {
		return nil, errors.Join(err, om.Close())
	}
	return om, nil
}

// WriteConfig saves the run's configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteTelemetry appends a window record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(r Record) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write(r)
}

// WritePerf appends the window's perf stats to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.write(stats.ToCSV(windowEnd))
}

// WriteBookmark appends a bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write(b)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every open output file and reports all failures.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(om.telemetry.close(), om.perf.close(), om.bookmarks.close())
}
