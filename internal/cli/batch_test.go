package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	writeFile(t, path, `jobs:
  - draft: drafts/a.md
    keyword: solar panel
  - draft: /abs/b.md
    keyword: heat pump
    output: out/b.md
    morphemes: [pump]
`)

	jobs, err := loadManifest(path)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, filepath.Join(dir, "drafts", "a.md"), jobs[0].Draft)
	assert.Equal(t, filepath.Join(dir, "drafts", "a.fit.md"), jobs[0].Output)
	assert.Equal(t, "/abs/b.md", jobs[1].Draft)
	assert.Equal(t, filepath.Join(dir, "out", "b.md"), jobs[1].Output)
	assert.Equal(t, []string{"pump"}, jobs[1].Morphemes)
}

func TestLoadManifest_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadManifest(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	writeFile(t, empty, "jobs: []\n")
	_, err = loadManifest(empty)
	assert.ErrorContains(t, err, "no jobs")

	noDraft := filepath.Join(dir, "nodraft.yaml")
	writeFile(t, noDraft, "jobs:\n  - keyword: x\n")
	_, err = loadManifest(noDraft)
	assert.ErrorContains(t, err, "job 1: draft is required")
}

func TestOptimizeBatch(t *testing.T) {
	env := newTestEnvironment(t)
	store := newMemoryStore(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.md")
	writeFile(t, good, testDraft)
	jobs := []job{
		{Draft: good, Keyword: "solar panel", Output: filepath.Join(dir, "out", "good.fit.md")},
		{Draft: filepath.Join(dir, "missing.md"), Keyword: "solar panel", Output: filepath.Join(dir, "missing.fit.md")},
		{Draft: good, Keyword: "", Output: filepath.Join(dir, "nokeyword.fit.md")},
	}

	optimizer, err := env.newOptimizer(optimizerOptions{deterministic: true, seed: 1, seeded: true})
	require.NoError(t, err)

	opts := &optimizeOptions{deterministic: true, maxAttempts: -1, jobs: 2}
	outcomes := optimizeBatch(context.Background(), env, optimizer, store, jobs, opts)
	require.Len(t, outcomes, 3)

	// Outcomes keep manifest order and failures stay per job.
	assert.Equal(t, jobs[0].Draft, outcomes[0].job.Draft)
	require.NoError(t, outcomes[0].err)
	assert.NotEmpty(t, outcomes[0].runID)
	written, err := os.ReadFile(jobs[0].Output)
	require.NoError(t, err)
	assert.Equal(t, outcomes[0].result.Text, string(written))

	assert.Error(t, outcomes[1].err)
	assert.Nil(t, outcomes[1].result)

	assert.Error(t, outcomes[2].err)
	_, err = os.Stat(jobs[2].Output)
	assert.True(t, os.IsNotExist(err))

	states, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, states, 2)
}
