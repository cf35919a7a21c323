package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/portal-lens/internal/anchor"
	"github.com/scan-io-git/portal-lens/internal/assets"
	"github.com/scan-io-git/portal-lens/internal/fetcher"
	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/internal/git"
	"github.com/scan-io-git/portal-lens/internal/portal"
	"github.com/scan-io-git/portal-lens/internal/store"
	"github.com/scan-io-git/portal-lens/pkg/shared/vcsurl"
)

func ptr[T any](v T) *T { return &v }

type fakeMatcher struct {
	assets []findings.Asset
	err    error
}

func (f fakeMatcher) Match(context.Context, vcsurl.RemoteRef) ([]findings.Asset, error) {
	return f.assets, f.err
}

type fakeFetcher struct {
	result fetcher.Result
	err    error
	calls  atomic.Int32
	block  chan struct{}
	values []string
}

func (f *fakeFetcher) Fetch(_ context.Context, values []string) (fetcher.Result, error) {
	f.calls.Add(1)
	f.values = values
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

type memState struct {
	url    string
	assets []findings.Asset
}

func (m *memState) SetRepositoryURL(_ context.Context, v string) error { m.url = v; return nil }
func (m *memState) SetAssets(_ context.Context, v []findings.Asset) error {
	m.assets = v
	return nil
}

func seeded(t *testing.T) *store.FindingStore {
	t.Helper()
	st := store.New(nil)
	require.NoError(t, st.Replace(context.Background(), []findings.Finding{{ID: 99, Name: "old", FilePath: ptr("old.go"), Line: ptr(1)}}, 1))
	return st
}

func newPipeline(t *testing.T, root string, remote RemoteResolver, m AssetMatcher, f FindingFetcher, st *store.FindingStore) *Pipeline {
	t.Helper()
	return &Pipeline{
		Root:    root,
		Remote:  remote,
		Matcher: m,
		Fetcher: f,
		Anchor:  anchor.NewResolver(root, 2, nil),
		Store:   st,
		State:   &memState{},
	}
}

func staticRemote(url string) RemoteResolver {
	return func(string) (string, error) { return url, nil }
}

func TestPipelineSuccess(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.ts"), []byte("l1\nl2\n"), 0o644))

	f := &fakeFetcher{result: fetcher.Result{
		Findings: []findings.Finding{
			{ID: 1, Name: "x", FilePath: ptr("src/a.ts"), Line: ptr(2)},
			{ID: 2, Name: "y"},
		},
		Count: 2,
		Pages: 1,
	}}
	st := seeded(t)
	state := &memState{}
	p := newPipeline(t, root, staticRemote("git@github.com:acme/app.git"),
		fakeMatcher{assets: []findings.Asset{{ID: 1, Value: "github.com/acme/app.git", Product: 4}}}, f, st)
	p.State = state

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.PassID)
	assert.Equal(t, vcsurl.RemoteRef{Domain: "github.com", Path: "acme/app", Scheme: vcsurl.SchemeSCP}, res.Remote)
	assert.Equal(t, 2, res.Findings)
	assert.Equal(t, []string{"github.com/acme/app.git"}, f.values)

	got, ok := st.Get(1)
	require.True(t, ok)
	assert.Equal(t, "l2", got.LineText)
	_, ok = st.Get(99)
	assert.False(t, ok, "previous pass is replaced")
	assert.Equal(t, 2, st.Len())

	assert.Equal(t, "git@github.com:acme/app.git", state.url)
	require.Len(t, state.assets, 1)
}

func TestPipelineIdempotent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n"), 0o644))
	f := &fakeFetcher{result: fetcher.Result{Findings: []findings.Finding{{ID: 1, Name: "x", FilePath: ptr("a.go"), Line: ptr(1)}}, Count: 1, Pages: 1}}
	st := store.New(nil)
	p := newPipeline(t, root, staticRemote("https://github.com/acme/app"), fakeMatcher{assets: []findings.Asset{{ID: 1, Value: "github.com/acme/app"}}}, f, st)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	first := st.Groups()
	firstList := st.List()

	_, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, st.Groups())
	assert.Equal(t, firstList, st.List())
}

func TestPipelineFailures(t *testing.T) {
	boom := &portal.StatusError{Operation: "getting findings page 2", StatusCode: 502}
	okAssets := fakeMatcher{assets: []findings.Asset{{ID: 1, Value: "github.com/acme/app"}}}

	testCases := []struct {
		name        string
		remote      RemoteResolver
		matcher     AssetMatcher
		fetcher     *fakeFetcher
		stage       Stage
		target      error
		cleared     bool
		userMessage string
	}{
		{
			name:        "no remote",
			remote:      func(string) (string, error) { return "", git.ErrNoRemote },
			matcher:     okAssets,
			fetcher:     &fakeFetcher{},
			stage:       StageResolve,
			target:      git.ErrNoRemote,
			userMessage: "Failed to extract repository remote URL from .git/config",
		},
		{
			name:        "unparseable remote",
			remote:      staticRemote("/srv/git/app.git"),
			matcher:     okAssets,
			fetcher:     &fakeFetcher{},
			stage:       StageResolve,
			target:      vcsurl.ErrParse,
			userMessage: `Failed to parse repository remote URL "/srv/git/app.git"`,
		},
		{
			name:        "no asset",
			remote:      staticRemote("https://github.com/acme/app"),
			matcher:     fakeMatcher{err: fmt.Errorf("%w: github.com/acme/app", assets.ErrNoAssetFound)},
			fetcher:     &fakeFetcher{},
			stage:       StageMatch,
			target:      assets.ErrNoAssetFound,
			cleared:     true,
			userMessage: "Repository github.com/acme/app is not found in portal",
		},
		{
			name:        "no verified findings",
			remote:      staticRemote("https://github.com/acme/app"),
			matcher:     fakeMatcher{err: fmt.Errorf("%w: github.com/acme/app", assets.ErrNoVerifiedFindings)},
			fetcher:     &fakeFetcher{},
			stage:       StageMatch,
			target:      assets.ErrNoVerifiedFindings,
			cleared:     true,
			userMessage: "No verified findings for repository github.com/acme/app",
		},
		{
			name:        "no findings",
			remote:      staticRemote("https://github.com/acme/app"),
			matcher:     okAssets,
			fetcher:     &fakeFetcher{err: fetcher.ErrNoFindings},
			stage:       StageFetch,
			target:      fetcher.ErrNoFindings,
			cleared:     true,
			userMessage: "No findings to show for repository github.com/acme/app",
		},
		{
			name:        "fetch error fails static",
			remote:      staticRemote("https://github.com/acme/app"),
			matcher:     okAssets,
			fetcher:     &fakeFetcher{err: boom},
			stage:       StageFetch,
			target:      boom,
			userMessage: "Portal request failed: 502 on getting findings page 2",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st := seeded(t)
			p := newPipeline(t, t.TempDir(), tc.remote, tc.matcher, tc.fetcher, st)

			_, err := p.Run(context.Background())
			require.Error(t, err)

			var passErr *PassError
			require.ErrorAs(t, err, &passErr)
			assert.Equal(t, tc.stage, passErr.Stage)
			assert.ErrorIs(t, err, tc.target)
			assert.Equal(t, tc.cleared, passErr.Cleared())
			assert.Equal(t, tc.userMessage, UserMessage(err))

			if tc.cleared {
				assert.Zero(t, st.Len())
			} else {
				_, ok := st.Get(99)
				assert.True(t, ok, "store is left unchanged")
			}
		})
	}
}

func TestPipelineCanceledDoesNotMutate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeFetcher{result: fetcher.Result{Findings: []findings.Finding{{ID: 1, Name: "x"}}, Count: 1, Pages: 1}}
	st := seeded(t)
	p := newPipeline(t, t.TempDir(), staticRemote("https://github.com/acme/app"), fakeMatcher{assets: []findings.Asset{{ID: 1, Value: "github.com/acme/app"}}}, f, st)
	cancel()

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := st.Get(99)
	assert.True(t, ok)
}

func TestCoordinatorCoalesces(t *testing.T) {
	f := &fakeFetcher{
		result: fetcher.Result{Findings: []findings.Finding{{ID: 1, Name: "x"}}, Count: 1, Pages: 1},
		block:  make(chan struct{}),
	}
	p := newPipeline(t, t.TempDir(), staticRemote("https://github.com/acme/app"), fakeMatcher{assets: []findings.Asset{{ID: 1, Value: "github.com/acme/app"}}}, f, store.New(nil))
	c := NewCoordinator(p)

	const callers = 4
	var (
		wg      sync.WaitGroup
		results [callers]Result
		errs    [callers]error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = c.Run(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.block)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].PassID, results[i].PassID)
	}
}

type fakeMutator struct {
	mu       sync.Mutex
	statuses map[int]findings.TriageStatus
	tags     map[int][]string
	failTag  bool
}

func (f *fakeMutator) SetStatus(_ context.Context, id int, s findings.TriageStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses == nil {
		f.statuses = map[int]findings.TriageStatus{}
	}
	f.statuses[id] = s
	return nil
}

func (f *fakeMutator) AddTag(_ context.Context, id int, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTag {
		return errors.New("403 on tag add")
	}
	if f.tags == nil {
		f.tags = map[int][]string{}
	}
	f.tags[id] = append(f.tags[id], name)
	return nil
}

func (f *fakeMutator) RemoveTag(_ context.Context, id int, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []string
	for _, t := range f.tags[id] {
		if t != name {
			kept = append(kept, t)
		}
	}
	f.tags[id] = kept
	return nil
}

func TestReject(t *testing.T) {
	st := seeded(t)
	mut := &fakeMutator{}
	m := NewMutations(mut, st, "dev@example.com", nil)

	removed, err := m.Reject(context.Background(), 99)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, findings.TriageRejected, mut.statuses[99])
	assert.ElementsMatch(t, []string{"rejected_by_developer", "dev@example.com"}, mut.tags[99])
	assert.Zero(t, st.Len())
}

func TestRejectFailureKeepsStore(t *testing.T) {
	st := seeded(t)
	m := NewMutations(&fakeMutator{failTag: true}, st, "", nil)

	removed, err := m.Reject(context.Background(), 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reject finding 99")
	assert.False(t, removed)
	assert.Equal(t, 1, st.Len())
}

func TestTag(t *testing.T) {
	mut := &fakeMutator{}
	m := NewMutations(mut, nil, "", nil)

	require.NoError(t, m.Tag(context.Background(), 5, "wontfix", true))
	require.NoError(t, m.Tag(context.Background(), 5, "later", true))
	require.NoError(t, m.Tag(context.Background(), 5, "wontfix", false))
	assert.Equal(t, []string{"later"}, mut.tags[5])
}
