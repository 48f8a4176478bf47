package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxyz/proxypool/checker"
	"proxyz/proxypool/model"
)

func writeList(t *testing.T, dir string, ports []int) string {
	t.Helper()
	var sb strings.Builder
	for _, p := range ports {
		fmt.Fprintf(&sb, "1.2.3.4:%d\n", p)
	}
	path := filepath.Join(dir, "list.txt")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func baseArgs(dir, list string, extra ...string) []string {
	args := []string{
		"-config", filepath.Join(dir, "absent.ini"),
		"-l", list,
		"-p", "http",
		"-t", "1",
		"-s", "http://example.com",
	}
	return append(args, extra...)
}

func TestRunPersistsSurvivorsAndExitsClean(t *testing.T) {
	dir := t.TempDir()
	list := writeList(t, dir, []int{8000, 8001, 8002})

	probe := func(_ context.Context, cand model.Candidate, _ checker.ProbeOptions) model.ValidationOutcome {
		return model.ValidationOutcome{Candidate: cand, Reachable: cand.Port != 8001}
	}

	code := run(context.Background(), baseArgs(dir, list, "-c", "2"), probe)
	assert.Equal(t, exitOK, code)

	data, err := os.ReadFile(list)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4:8000\n1.2.3.4:8002\n", string(data))
}

func TestRunSavesPartialResultsOnCancel(t *testing.T) {
	dir := t.TempDir()
	ports := make([]int, 40)
	for i := range ports {
		ports[i] = 8000 + i
	}
	list := writeList(t, dir, ports)

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	calls := 0
	probe := func(_ context.Context, cand model.Candidate, _ checker.ProbeOptions) model.ValidationOutcome {
		mu.Lock()
		calls++
		if calls == 2 {
			cancel()
		}
		mu.Unlock()
		return model.ValidationOutcome{Candidate: cand, Reachable: true}
	}

	code := run(ctx, baseArgs(dir, list, "-c", "1"), probe)
	assert.Equal(t, exitCancelled, code)

	// The list now holds only what survived before the cancellation; the
	// unchecked remainder is dropped.
	data, err := os.ReadFile(list)
	require.NoError(t, err)
	saved := strings.Fields(string(data))
	assert.GreaterOrEqual(t, len(saved), 2)
	assert.LessOrEqual(t, len(saved), 3)
	for _, line := range saved {
		assert.True(t, strings.HasPrefix(line, "1.2.3.4:"), line)
	}
}

func TestRunRejectsCompositeSocksSelector(t *testing.T) {
	dir := t.TempDir()
	list := writeList(t, dir, []int{8000})

	args := []string{
		"-config", filepath.Join(dir, "absent.ini"),
		"-l", list,
		"-p", "socks",
		"-t", "1",
		"-c", "1",
	}
	assert.Equal(t, exitFailure, run(context.Background(), args, nil))
}

func TestRunMissingListFails(t *testing.T) {
	dir := t.TempDir()
	args := baseArgs(dir, filepath.Join(dir, "nope.txt"), "-c", "1")
	assert.Equal(t, exitFailure, run(context.Background(), args, nil))
}
