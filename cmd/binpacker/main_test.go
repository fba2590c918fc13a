package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BinPacker/internal/engine"
	"github.com/piwi3910/BinPacker/internal/export"
	"github.com/piwi3910/BinPacker/internal/metrics"
	"github.com/piwi3910/BinPacker/internal/model"
)

// Two full-size items, no improvement possible.
const fullInstance = "2\n10 10\nA 10 10\nB 10 10\n"

// One item fits, X exceeds the bin.
const oversizedInstance = "2\n10 10\nA 5 5\nX 11 11\n"

func writeInstance(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instance.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestSolve_WritesOriginal(t *testing.T) {
	instance := writeInstance(t, fullInstance)
	outDir := t.TempDir()

	out, err := runCLI(t, "", "solve", instance, "--out", outDir, "--config", missingConfig(t), "--local-search", "bi")
	require.NoError(t, err)

	rec, err := export.ReadRecord(filepath.Join(outDir, originalBase+".json"))
	require.NoError(t, err)
	assert.Equal(t, 2, rec.BinsUsed)
	assert.Equal(t, 2, rec.MinTheoreticalBins)
	assert.Equal(t, 0.0, rec.GapPercentage)

	assert.NoFileExists(t, filepath.Join(outDir, improvedBase+".json"))
	assert.Contains(t, out, "Initial packing (none)")
	assert.Contains(t, out, "Bins used:")
}

func TestSolve_Interactive(t *testing.T) {
	instance := writeInstance(t, fullInstance)
	outDir := t.TempDir()
	stdin := fmt.Sprintf("%q\ny\nbi\n", instance)

	out, err := runCLI(t, stdin, "solve", "--out", outDir, "--config", missingConfig(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Enter full path of the instance file: ")
	assert.Contains(t, out, "Perform Local Search? (y/n): ")
	assert.Contains(t, out, "Specify Method: FirstImprovement or BestImprovement (fi/bi)? ")
	assert.FileExists(t, filepath.Join(outDir, originalBase+".json"))
}

func TestSolve_InteractiveSkipsSearch(t *testing.T) {
	instance := writeInstance(t, fullInstance)
	outDir := t.TempDir()

	out, err := runCLI(t, instance+"\nn\n", "solve", "--interactive", "--out", outDir, "--config", missingConfig(t))
	require.NoError(t, err)
	assert.NotContains(t, out, "Specify Method")
	assert.FileExists(t, filepath.Join(outDir, originalBase+".json"))
}

func TestSolve_InteractiveUnknownMethod(t *testing.T) {
	instance := writeInstance(t, fullInstance)
	outDir := t.TempDir()

	_, err := runCLI(t, instance+"\nY\ntabu\n", "solve", "--out", outDir, "--config", missingConfig(t))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, originalBase+".json"))
	assert.NoFileExists(t, filepath.Join(outDir, improvedBase+".json"))
}

func TestSolve_InteractiveNoPath(t *testing.T) {
	_, err := runCLI(t, "\n", "solve", "--config", missingConfig(t), "--out", t.TempDir())
	assert.Error(t, err)
}

func TestSolve_MissingFile(t *testing.T) {
	outDir := t.TempDir()
	_, err := runCLI(t, "", "solve", filepath.Join(outDir, "nope.txt"), "--out", outDir, "--config", missingConfig(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, filepath.Join(outDir, originalBase+".json"))
}

func TestSolve_InvalidLocalSearch(t *testing.T) {
	instance := writeInstance(t, fullInstance)
	_, err := runCLI(t, "", "solve", instance, "--local-search", "tabu", "--config", missingConfig(t), "--out", t.TempDir())
	assert.ErrorContains(t, err, "invalid --local-search")
}

func TestSolve_Unplaced(t *testing.T) {
	instance := writeInstance(t, oversizedInstance)

	t.Run("lenient", func(t *testing.T) {
		outDir := t.TempDir()
		out, err := runCLI(t, "", "solve", instance, "--out", outDir, "--config", missingConfig(t))
		require.NoError(t, err)
		assert.Contains(t, out, "Unplaced items:")
	})

	t.Run("strict", func(t *testing.T) {
		outDir := t.TempDir()
		_, err := runCLI(t, "", "solve", instance, "--strict", "--out", outDir, "--config", missingConfig(t))
		require.ErrorIs(t, err, ErrUnplacedItems)

		// The report is written before the run fails
		rec, err := export.ReadRecord(filepath.Join(outDir, originalBase+".json"))
		require.NoError(t, err)
		assert.Equal(t, 1, rec.BinsUsed)
		assert.Equal(t, 25+121, rec.TotalObjectsArea)
	})
}

func TestSolve_MetricsFile(t *testing.T) {
	instance := writeInstance(t, oversizedInstance)
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "binpacker.prom")

	_, err := runCLI(t, "", "solve", instance, "--out", dir, "--config", missingConfig(t), "--metrics-file", metricsPath)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "binpacker_items_placed_total 1")
	assert.Contains(t, string(data), "binpacker_items_unplaceable_total 1")
}

func TestSolver_ImproveWritesImprovedPacking(t *testing.T) {
	color.NoColor = true
	a := model.NewItem("A", 5, 5)
	b := model.NewItem("B", 5, 5)
	in := model.Instance{Name: "pair", BinWidth: 5, BinHeight: 10, Items: []model.Item{a, b}}

	// One item per bin, which first-fit itself would never produce
	first := engine.NewBin(5, 10)
	require.True(t, first.Place(a))
	second := engine.NewBin(5, 10)
	require.True(t, second.Place(b))
	bins := []*engine.Bin{first, second}
	initial := engine.Solution{Bins: bins, Result: engine.BuildResult(bins, nil, string(model.StrategyNone), 0)}

	cfg := model.DefaultAppConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Strategy = model.StrategyBestImprovement

	var out bytes.Buffer
	s := &solver{
		cfg:      cfg,
		in:       bufio.NewReader(strings.NewReader("")),
		out:      &out,
		recorder: metrics.NewRecorder(),
	}
	require.NoError(t, s.improve(engine.New(cfg), initial, in))

	rec, err := export.ReadRecord(filepath.Join(cfg.OutputDir, improvedBase+".json"))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.BinsUsed)
	require.Len(t, rec.Bins, 1)
	assert.Len(t, rec.Bins[0].Objects, 2)
	assert.Contains(t, out.String(), "Improved packing (best-improvement)")
}

func TestCompare(t *testing.T) {
	instance := writeInstance(t, fullInstance)

	out, err := runCLI(t, "", "compare", instance, "--config", missingConfig(t))
	require.NoError(t, err)

	assert.Contains(t, out, "STRATEGY")
	for _, s := range append([]model.Strategy{model.StrategyNone}, model.Strategies()...) {
		assert.Contains(t, out, string(s))
	}
}

func TestCompare_RequiresInstance(t *testing.T) {
	_, err := runCLI(t, "", "compare", "--config", missingConfig(t))
	assert.Error(t, err)
}

func TestOptions_Resolve(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("strategy: best-improvement\nworkers: 4\nwrite_xlsx: true\n"), 0644))

	opts := &options{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.addCommonFlags(fs)
	opts.addSolveFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", cfgPath, "--workers", "2", "--pdf", "--bin", "100x60"}))

	cfg, err := opts.resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, model.StrategyBestImprovement, cfg.Strategy)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.WritePDF)
	assert.True(t, cfg.WriteXLSX)
	assert.Equal(t, 10, cfg.VisualizeLimit)

	bin, err := opts.bin()
	require.NoError(t, err)
	assert.Equal(t, 100, bin.Width)
	assert.Equal(t, 60, bin.Height)
}

func TestPromptPath(t *testing.T) {
	var out bytes.Buffer
	path, err := promptPath(bufio.NewReader(strings.NewReader("  \"/tmp/a b.txt\"  \n")), &out)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a b.txt", path)

	_, err = promptPath(bufio.NewReader(strings.NewReader("")), &out)
	assert.Error(t, err)
}
