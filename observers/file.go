package observers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/exp/constraints"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sensoriumtl/trellis"
)

// FileFormat selects the on-disk record shape for File.
type FileFormat int

const (
	// FormatJSON writes one JSON object per line.
	FormatJSON FileFormat = iota
	// FormatCSV writes one comma-separated row per observation.
	FormatCSV
)

// FileRecord is the structure written once per observed stage in JSON
// mode, and the field order used for the CSV header/rows in CSV mode.
type FileRecord struct {
	Calculation  string  `json:"calculation"`
	Stage        string  `json:"stage"`
	Iter         uint64  `json:"iter"`
	Error        float64 `json:"error"`
	BestError    float64 `json:"best_error"`
	LastBestIter uint64  `json:"last_best_iter"`
	ElapsedSec   float64 `json:"elapsed_seconds,omitempty"`
	Cause        string  `json:"termination_cause,omitempty"`
}

// File is a rotating-file observer writing one record per observation,
// grounded on firestige-Otus's internal/log file appender: a lumberjack
// rotating writer selected by config, lazily opened on first use and kept
// for the observer's lifetime. Safe for concurrent use (though Trellis's
// own dispatch is always single-threaded).
type File[F constraints.Float, Param any, S trellis.UserState[F, Param]] struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
	format FileFormat
	csvW   *csv.Writer
	header bool
}

// FileOptions configures the rotating sink, mirroring
// firestige-Otus/internal/log.FileAppenderOpt field-for-field.
type FileOptions struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewFile constructs a File observer writing in the given format to a
// lumberjack-rotated sink configured by opts.
func NewFile[F constraints.Float, Param any, S trellis.UserState[F, Param]](opts FileOptions, format FileFormat) *File[F, Param, S] {
	f := &File[F, Param, S]{
		format: format,
		writer: &lumberjack.Logger{
			Filename:   opts.Filename,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		},
	}
	if format == FormatCSV {
		f.csvW = csv.NewWriter(f.writer)
	}
	return f
}

// Observe appends one record for this observation and flushes it.
// Observer errors are swallowed by design: a write failure is dropped
// rather than propagated, since an observer has no out-of-band failure
// channel.
func (f *File[F, Param, S]) Observe(name string, state *trellis.State[F, Param, S], stage trellis.Stage) {
	f.mu.Lock()
	defer f.mu.Unlock()

	elapsed, hasElapsed := state.Elapsed()
	var elapsedSec float64
	if hasElapsed {
		elapsedSec = elapsed.Seconds()
	}
	var cause string
	if c, ok := state.Termination().Cause(); ok {
		cause = c.String()
	}

	rec := FileRecord{
		Calculation:  name,
		Stage:        stage.String(),
		Iter:         state.Iter(),
		Error:        float64(state.Error()),
		BestError:    float64(state.BestError()),
		LastBestIter: state.LastBestIter(),
		ElapsedSec:   elapsedSec,
		Cause:        cause,
	}

	switch f.format {
	case FormatJSON:
		_ = f.writeJSON(rec)
	case FormatCSV:
		_ = f.writeCSV(rec)
	}
}

func (f *File[F, Param, S]) writeJSON(rec FileRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = f.writer.Write(b)
	return err
}

func (f *File[F, Param, S]) writeCSV(rec FileRecord) error {
	if !f.header {
		if err := f.csvW.Write([]string{
			"calculation", "stage", "iter", "error", "best_error",
			"last_best_iter", "elapsed_seconds", "termination_cause",
		}); err != nil {
			return err
		}
		f.header = true
	}
	row := []string{
		rec.Calculation,
		rec.Stage,
		fmt.Sprintf("%d", rec.Iter),
		fmt.Sprintf("%v", rec.Error),
		fmt.Sprintf("%v", rec.BestError),
		fmt.Sprintf("%d", rec.LastBestIter),
		fmt.Sprintf("%v", rec.ElapsedSec),
		rec.Cause,
	}
	if err := f.csvW.Write(row); err != nil {
		return err
	}
	f.csvW.Flush()
	return f.csvW.Error()
}

// Close releases the underlying rotating file handle.
func (f *File[F, Param, S]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writer.Close()
}
