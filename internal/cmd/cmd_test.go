package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/portal-lens/internal/annotate"
	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/internal/portal"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.State.Path = filepath.Join(t.TempDir(), "state", "state.db")
	cfg.Portal.URL = "https://portal.example.com"
	cfg.Portal.Token = "secret"
	return cfg
}

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()

	root, err := ResolveRoot(nil, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	cfg := &config.Config{Workspace: config.Workspace{Root: dir}}
	root, err = ResolveRoot(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = ResolveRoot(nil, file)
	assert.Error(t, err)

	_, err = ResolveRoot(nil, filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestOpenEnvironmentKeepsFindingsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	root := t.TempDir()

	env, err := OpenEnvironment(ctx, cfg, hclog.NewNullLogger(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, env.Store.Len())

	path, line := "main.go", 3
	require.NoError(t, env.Store.Replace(ctx, []findings.Finding{{ID: 5, Name: "n", FilePath: &path, Line: &line}}, 1))
	require.NoError(t, env.Close())

	again, err := OpenEnvironment(ctx, cfg, hclog.NewNullLogger(), root)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, 1, again.Store.Len())
	assert.Len(t, again.Store.Group("main.go"), 1)

	other, err := OpenEnvironment(ctx, cfg, hclog.NewNullLogger(), t.TempDir())
	require.NoError(t, err)
	defer other.Close()
	assert.Equal(t, 0, other.Store.Len(), "state is scoped per workspace")
}

func TestPipelineRequiresValidFilter(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Filter.Severities = []string{"Catastrophic"}

	env, err := OpenEnvironment(ctx, cfg, hclog.NewNullLogger(), t.TempDir())
	require.NoError(t, err)
	defer env.Close()

	client, err := env.Portal()
	require.NoError(t, err)
	_, err = env.Pipeline(client)
	assert.Error(t, err)
}

func TestPortalNotConfigured(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Portal.Token = ""

	env, err := OpenEnvironment(ctx, cfg, hclog.NewNullLogger(), t.TempDir())
	require.NoError(t, err)
	defer env.Close()

	_, err = env.Portal()
	assert.ErrorIs(t, err, portal.ErrNotConfigured)
}

func TestRendererPermalinkFromCheckout(t *testing.T) {
	ctx := context.Background()
	t.Setenv("HOME", t.TempDir())

	repoDir := t.TempDir()
	repo, err := git.PlainInit(repoDir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:acme/app.git"}})
	require.NoError(t, err)

	workspace := filepath.Join(repoDir, "services", "api")
	require.NoError(t, os.MkdirAll(workspace, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "main.go"), []byte("package main\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("services/api/main.go")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	env, err := OpenEnvironment(ctx, testConfig(t), hclog.NewNullLogger(), workspace)
	require.NoError(t, err)
	defer env.Close()

	renderer := env.Renderer(env.PortalURL())
	require.NotNil(t, renderer.Permalink)
	assert.Equal(t,
		"https://github.com/acme/app/blob/"+hash.String()+"/services/api/main.go#L1",
		renderer.Permalink("main.go", 1))
	assert.Equal(t, BinaryName, renderer.Binary)
}

func TestRendererWithoutRepository(t *testing.T) {
	env, err := OpenEnvironment(context.Background(), testConfig(t), hclog.NewNullLogger(), t.TempDir())
	require.NoError(t, err)
	defer env.Close()

	assert.Nil(t, env.Renderer("https://portal.example.com").Permalink)
}

func TestOnlyVerified(t *testing.T) {
	testCases := []struct {
		name     string
		statuses []findings.TriageStatus
		want     bool
	}{
		{name: "default filter", statuses: []findings.TriageStatus{findings.TriageVerified, findings.TriageAssigned}, want: true},
		{name: "verified only", statuses: []findings.TriageStatus{findings.TriageVerified}, want: true},
		{name: "includes unverified", statuses: []findings.TriageStatus{findings.TriageVerified, findings.TriageUnverified}, want: false},
		{name: "empty", statuses: nil, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, onlyVerified(tc.statuses))
		})
	}
}

func TestStaleness(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\nfunc run() {}\n"), 0o644))

	env, err := OpenEnvironment(ctx, testConfig(t), hclog.NewNullLogger(), root)
	require.NoError(t, err)
	defer env.Close()

	path := "main.go"
	require.NoError(t, env.Store.Replace(ctx, []findings.Finding{
		{ID: 1, Name: "current", FilePath: &path, Line: ptr(2), LineText: "func run() {}"},
		{ID: 2, Name: "moved", FilePath: &path, Line: ptr(1), LineText: "func run() {}"},
		{ID: 3, Name: "no anchor", LineText: findings.FileNotProvided},
	}, 3))

	status, ok := env.Staleness(1)
	assert.True(t, ok)
	assert.Equal(t, annotate.Current, status)

	status, ok = env.Staleness(2)
	assert.True(t, ok)
	assert.Equal(t, annotate.Outdated, status)

	_, ok = env.Staleness(3)
	assert.False(t, ok)
	_, ok = env.Staleness(404)
	assert.False(t, ok)

	require.NoError(t, os.Remove(filepath.Join(root, "main.go")))
	status, ok = env.Staleness(1)
	assert.True(t, ok)
	assert.Equal(t, annotate.Outdated, status, "a deleted file makes the finding outdated")
}

func ptr[T any](v T) *T { return &v }
