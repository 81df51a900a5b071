package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/testutil"
)

// writePattern writes a pattern file with the given on-cells, a catalyst
// box around them and a larger allowed box. The file's top-left corner is
// (-24, -24), so cells land 100 cells up and left once loaded.
func writePattern(t *testing.T, cells ...grid.Cell) string {
	t.Helper()
	pattern := testutil.GridFromCells(cells...)
	cat := testutil.Box(-10, -10, 23, 23)
	cat.Subtract(pattern)
	allowed := testutil.Box(-24, -24, 49, 49)

	l := grid.Layers{On: pattern, Marked: cat, Envelope: allowed}
	var buf bytes.Buffer
	require.NoError(t, grid.FormatLifeHistory(&buf, l.Bounds(), l))

	path := filepath.Join(t.TempDir(), "problem.rle")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

var (
	dyingSeed  = []grid.Cell{{X: 0, Y: 2}, {X: 1, Y: 0}, {X: 1, Y: 2}, {X: 2, Y: 1}}
	stuckSeed  = []grid.Cell{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 0}, {X: 1, Y: 2}}
	blockCells = []grid.Cell{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1}}
)

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "destroy", cmd.Name())
	assert.Contains(t, cmd.Long, "1 = block")

	show, _, err := cmd.Find([]string{"show"})
	require.NoError(t, err)
	assert.Equal(t, "show", show.Name())
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	for _, name := range []string{"config", "seed", "metrics-file"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("json"))
	assert.True(t, isValidFormat("text"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}

func TestExecute_FindsSolution(t *testing.T) {
	path := writePattern(t, dyingSeed...)

	code, stdout, stderr := execute(t, "--seed", "1", path, "1", "1000", "3")
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Contains(t, stderr, "Parsed pattern file:")
	assert.Contains(t, stderr, "Possible objects in allowed area:")
	assert.Contains(t, stdout, "Found a solution:")
	assert.Contains(t, stdout, "rule = LifeHistory")
	assert.Contains(t, stdout, "Object  1: block      at (-103, -101)")
}

func TestExecute_FindsSolutionJSON(t *testing.T) {
	path := writePattern(t, dyingSeed...)

	code, stdout, stderr := execute(t, "--format", "json", "--seed", "1", path, "1", "1000", "3")
	require.Equal(t, ExitSuccess, code, stderr)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Outcome  string `json:"outcome"`
			Rounds   int    `json:"rounds"`
			Seed     uint64 `json:"seed"`
			Solution struct {
				Placements []struct {
					Type int `json:"type"`
					X    int `json:"x"`
					Y    int `json:"y"`
				} `json:"placements"`
			} `json:"solution"`
			SolutionPattern string `json:"solution_pattern"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "SUCCESS", resp.Data.Outcome)
	assert.Equal(t, 1, resp.Data.Rounds)
	assert.Equal(t, uint64(1), resp.Data.Seed)
	require.Len(t, resp.Data.Solution.Placements, 1)
	assert.Equal(t, -103, resp.Data.Solution.Placements[0].X)
	assert.Equal(t, -101, resp.Data.Solution.Placements[0].Y)
	assert.Contains(t, resp.Data.SolutionPattern, "rule = LifeHistory")
}

func TestExecute_NoSolution(t *testing.T) {
	path := writePattern(t, stuckSeed...)

	code, stdout, stderr := execute(t, "--seed", "1", path, "1", "10", "2")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "2 objects, cost range: 1 - 1")
	assert.NotContains(t, stdout, "Found a solution")
	assert.Contains(t, stderr, "Error [E006]")
	assert.Contains(t, stderr, "MAX_OBJECTS_REACHED")
}

func TestExecute_InputErrors(t *testing.T) {
	dying := writePattern(t, dyingSeed...)
	stable := writePattern(t, blockCells...)
	missing := filepath.Join(t.TempDir(), "missing")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing file", []string{missing, "1", "1000", "3"}, "E202"},
		{"no active part", []string{stable, "1", "1000", "3"}, "E206"},
		{"illegal object", []string{dying, "19", "1000", "3"}, "E207"},
		{"bad pool size", []string{dying, "1", "many", "3"}, "E001"},
		{"too many objects", []string{dying, "1", "1000", "300"}, "E001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, ExitCommandError, code)
			assert.Contains(t, stderr, "Error ["+tt.code+"]")
		})
	}
}

func TestExecute_InputErrorJSON(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	code, stdout, _ := execute(t, "--format", "json", missing, "1", "1000", "3")
	assert.Equal(t, ExitCommandError, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E202", resp.Error.Code)
}

func TestExecute_UsageErrors(t *testing.T) {
	code, _, stderr := execute(t, "only-one-arg")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Error:")

	code, _, stderr = execute(t, "--format", "yaml", "p", "1", "1", "1")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid format")
}

func TestExecute_Config(t *testing.T) {
	path := writePattern(t, dyingSeed...)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("no_such_field: 1\n"), 0o644))
	code, _, stderr := execute(t, "--config", bad, path, "1", "1000", "3")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Error [E002]")

	limited := filepath.Join(dir, "limited.yaml")
	require.NoError(t, os.WriteFile(limited, []byte("max_objects_limit: 2\n"), 0o644))
	code, _, stderr = execute(t, "--config", limited, path, "1", "1000", "3")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "max value for <max objects> is 2")

	tiny := filepath.Join(dir, "tiny.yaml")
	require.NoError(t, os.WriteFile(tiny, []byte("max_placements: 10\n"), 0o644))
	code, _, stderr = execute(t, "--config", tiny, path, "1", "1000", "3")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "Error [E003]")
}

func TestExecute_MetricsFile(t *testing.T) {
	path := writePattern(t, dyingSeed...)
	metrics := filepath.Join(t.TempDir(), "destroy.prom")

	code, _, stderr := execute(t, "--seed", "1", "--metrics-file", metrics, path, "1", "1000", "3")
	require.Equal(t, ExitSuccess, code, stderr)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "destroy_rounds_total 1")
}

func TestExecute_JournalAndShow(t *testing.T) {
	path := writePattern(t, dyingSeed...)
	db := filepath.Join(t.TempDir(), "runs.db")

	var runIDs []string
	for i := 0; i < 2; i++ {
		code, stdout, stderr := execute(t, "--db", db, "--format", "json", "--seed", "1", path, "1", "1000", "3")
		require.Equal(t, ExitSuccess, code, stderr)

		var resp struct {
			Data struct {
				RunID string `json:"run_id"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
		require.NotEmpty(t, resp.Data.RunID)
		runIDs = append(runIDs, resp.Data.RunID)
	}

	code, stdout, stderr := execute(t, "show", "--db", db, "--format", "json", runIDs[0])
	require.Equal(t, ExitSuccess, code, stderr)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			ID      string `json:"id"`
			Outcome string `json:"outcome"`
			Rounds  int    `json:"rounds"`
			Info    struct {
				Objects    string `json:"objects"`
				MaxObjects int    `json:"max_objects"`
				Seed       uint64 `json:"seed"`
			} `json:"info"`
			Trace    []json.RawMessage `json:"trace"`
			Solution struct {
				Placements []json.RawMessage `json:"placements"`
				Pattern    string            `json:"pattern"`
			} `json:"solution"`
			SameSolution []string `json:"same_solution"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, runIDs[0], resp.Data.ID)
	assert.Equal(t, "SUCCESS", resp.Data.Outcome)
	assert.Equal(t, 1, resp.Data.Rounds)
	assert.Equal(t, "1", resp.Data.Info.Objects)
	assert.Equal(t, 3, resp.Data.Info.MaxObjects)
	assert.Equal(t, uint64(1), resp.Data.Info.Seed)
	assert.Len(t, resp.Data.Trace, 1)
	assert.Len(t, resp.Data.Solution.Placements, 1)
	assert.Contains(t, resp.Data.Solution.Pattern, "rule = LifeHistory")
	assert.Equal(t, []string{runIDs[1]}, resp.Data.SameSolution)

	code, stdout, stderr = execute(t, "show", "--db", db, runIDs[1])
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Outcome:     SUCCESS after 1 rounds")
	assert.Contains(t, stdout, "Also found by run "+runIDs[0])
}

func TestShow_Errors(t *testing.T) {
	code, _, stderr := execute(t, "show", "some-id")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "--db is required")

	db := filepath.Join(t.TempDir(), "runs.db")
	code, _, stderr = execute(t, "show", "--db", db, "some-id")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "run not found")
}
