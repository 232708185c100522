package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vango-dev/mutate/internal/config"
	"github.com/vango-dev/mutate/internal/errors"
)

func TestRunCounts(t *testing.T) {
	const nodes, rounds = 5, 3

	for _, mode := range []string{"native", "synthetic"} {
		t.Run(mode, func(t *testing.T) {
			res, err := run(context.Background(), runOptions{
				Hosts:  2,
				Nodes:  nodes,
				Rounds: rounds,
				Mode:   mode,
				Dir:    t.TempDir(),
			}, io.Discard)
			require.NoError(t, err)
			require.Len(t, res.Hosts, 2)

			for _, h := range res.Hosts {
				s := h.stats
				require.Equal(t, mode == "native", s.Native)
				require.Equal(t, rounds*(nodes+1), s.Inserted)
				require.Equal(t, rounds*(nodes+1), s.Removed)
				require.Equal(t, rounds*nodes, s.Attributes)
				require.Equal(t, rounds, s.Unbound)
				require.Equal(t, int64(rounds), h.latency.TotalCount())
			}
		})
	}
}

func TestRunUnknownMode(t *testing.T) {
	_, err := run(context.Background(), runOptions{Hosts: 1, Mode: "psychic", Dir: t.TempDir()}, io.Discard)
	require.Error(t, err)
	require.Equal(t, errors.CodeUnknownMode, errors.CodeOf(err))
}

func TestRunUsesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New()
	cfg.Capability.Native = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.Subsystem = "bench"
	require.NoError(t, cfg.SaveTo(filepath.Join(dir, "mutate.yaml")))

	res, err := run(context.Background(), runOptions{
		Hosts:      1,
		Nodes:      2,
		Rounds:     1,
		ConfigPath: dir,
	}, io.Discard)
	require.NoError(t, err)
	require.True(t, res.Hosts[0].stats.Native)
	require.NotNil(t, res.Registry)

	var out bytes.Buffer
	require.NoError(t, report(&out, res, runOptions{Metrics: true}))
	require.Contains(t, out.String(), "mutate_bench_flushes_total")
	require.Contains(t, out.String(), "INSERTED")
}

func TestRunFindsConfig(t *testing.T) {
	root := t.TempDir()
	cfg := config.New()
	cfg.Capability.Native = true
	require.NoError(t, cfg.SaveTo(filepath.Join(root, config.ConfigFileName)))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	var logs bytes.Buffer
	res, err := run(context.Background(), runOptions{Hosts: 1, Nodes: 1, Rounds: 1, Dir: nested}, &logs)
	require.NoError(t, err)
	require.True(t, res.Hosts[0].stats.Native)
	require.Contains(t, logs.String(), "using configuration")

	res, err = run(context.Background(), runOptions{Hosts: 1, Nodes: 1, Rounds: 1, Dir: t.TempDir()}, io.Discard)
	require.NoError(t, err)
	require.False(t, res.Hosts[0].stats.Native)
}

func TestHostApply(t *testing.T) {
	res, err := run(context.Background(), runOptions{Hosts: 1, Rounds: 0, Mode: "synthetic", Dir: t.TempDir()}, io.Discard)
	require.NoError(t, err)
	h := res.Hosts[0]

	next := config.New()
	next.Capability.Native = true
	h.apply(next)
	h.apply(next)
	require.True(t, h.stats.Native)
	require.Equal(t, 1, h.stats.Swaps)
	require.False(t, h.mutator.Synthetic())

	next.Capability.Native = false
	h.apply(next)
	require.True(t, h.mutator.Synthetic())
	require.Equal(t, 2, h.stats.Swaps)
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mutate.json")

	cmd := initCmd()
	cmd.SetArgs([]string{path, "--native"})
	cmd.SetOut(io.Discard)
	require.NoError(t, cmd.Execute())

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Capability.Native)

	cmd = initCmd()
	cmd.SetArgs([]string{path})
	err = cmd.Execute()
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), errors.CodeConfigInvalid))

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
}

func TestInitCmdDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.New().SaveTo(filepath.Join(dir, "mutate.yml")))

	cmd := initCmd()
	cmd.SetArgs([]string{dir})
	err := cmd.Execute()
	require.Equal(t, errors.CodeConfigInvalid, errors.CodeOf(err))

	cmd = initCmd()
	cmd.SetArgs([]string{dir, "--force", "--native"})
	require.NoError(t, cmd.Execute())

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, config.ConfigFileName), cfg.Path())
	require.True(t, cfg.Capability.Native)
}

func TestExplainCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := explainCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	for _, code := range errors.GetAllCodes() {
		require.Contains(t, out.String(), code)
	}

	out.Reset()
	cmd = explainCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"m002"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "ERROR M002 [runtime]: Subscription disposed more than once")
	require.Contains(t, out.String(), "Each subscription must be disposed exactly once.")

	cmd = explainCmd()
	cmd.SetArgs([]string{"M999"})
	require.Equal(t, errors.CodeUsage, errors.CodeOf(cmd.Execute()))
}
