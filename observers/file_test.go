package observers

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sensoriumtl/trellis"
)

func TestFileObserverWritesOneJSONRecordPerStage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	fileObs := NewFile[float64, int, *countdownState](FileOptions{Filename: path}, FormatJSON)

	runner := buildCountdownRunner(t, fileObs)
	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, fileObs.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 4, "initialisation, two iterations, wrap-up")

	var rec FileRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "countdown", rec.Calculation)
	require.Equal(t, "initialisation", rec.Stage)
}

func TestFileObserverWritesCSVWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	fileObs := NewFile[float64, int, *countdownState](FileOptions{Filename: path}, FormatCSV)

	runner := buildCountdownRunner(t, fileObs)
	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, fileObs.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Equal(t, "calculation,stage,iter,error,best_error,last_best_iter,elapsed_seconds,termination_cause", lines[0])
	require.Len(t, lines, 5, "header plus four stage rows")
}

var _ trellis.Observer[float64, int, *countdownState] = (*File[float64, int, *countdownState])(nil)
