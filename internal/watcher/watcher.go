package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/portal-lens/internal/anchor"
	"github.com/scan-io-git/portal-lens/internal/annotate"
	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/internal/metrics"
	"github.com/scan-io-git/portal-lens/internal/reconcile"
	"github.com/scan-io-git/portal-lens/internal/store"
	"github.com/scan-io-git/portal-lens/pkg/shared/files"
)

const DefaultDebounce = 100 * time.Millisecond

var ErrAlreadyStarted = errors.New("watcher already started")

// Runner requests a reconciliation pass.
type Runner interface {
	Run(ctx context.Context) (reconcile.Result, bool, error)
}

// Findings is the read side of the finding store.
type Findings interface {
	Group(path string) []findings.Finding
	Groups() store.Groups
}

// Options tune the watcher. A zero Interval disables periodic passes.
type Options struct {
	Interval time.Duration
	Debounce time.Duration
}

// Change is the classification of one file after it was edited or after a pass.
type Change struct {
	Path       string
	Current    int
	Outdated   int
	Classified []annotate.Classified
}

// Watcher re-classifies findings of files edited in the workspace and can request passes on
// an interval.
type Watcher struct {
	root     string
	findings Findings
	runner   Runner
	opts     Options
	logger   hclog.Logger

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	started  bool

	mu       sync.Mutex
	pending  map[string]*time.Timer
	counts   map[string]Change
	watched  map[string]struct{}
	onChange func(Change)
}

// New creates a watcher over root. runner may be nil when no periodic pass is wanted.
func New(root string, st Findings, runner Runner, opts Options, logger hclog.Logger) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:     absRoot,
		findings: st,
		runner:   runner,
		opts:     opts,
		logger:   logger,
		watcher:  w,
		stopChan: make(chan struct{}),
		pending:  make(map[string]*time.Timer),
		counts:   make(map[string]Change),
		watched:  make(map[string]struct{}),
	}, nil
}

// OnChange registers a callback invoked after every re-classification.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches the directories holding findings and, when an interval is set, requests
// passes until Stop is called or ctx ends.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.started = true
	w.mu.Unlock()

	w.syncDirectories()
	w.reclassifyAll()

	go w.watchForChanges()
	if w.opts.Interval > 0 && w.runner != nil {
		go w.runPeriodically(ctx)
	}

	w.logger.Info("started watching workspace", "root", w.root, "directories", w.watchedCount(), "interval", w.opts.Interval)
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	select {
	case <-w.stopChan:
		return
	default:
		close(w.stopChan)
	}

	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.watcher.Close()
}

// Reclassify reads one workspace file and classifies its findings against the live text.
// rel uses forward slashes relative to the workspace root.
func (w *Watcher) Reclassify(rel string) Change {
	group := w.findings.Group(rel)
	change := Change{Path: rel}
	if len(group) == 0 {
		w.record(change)
		return change
	}

	var doc *anchor.File
	if abs, err := files.EnsureWithinRoot(w.root, filepath.Join(w.root, filepath.FromSlash(rel))); err == nil {
		if f, err := anchor.ReadFile(abs); err == nil {
			doc = f
		} else {
			w.logger.Debug("file not readable, findings are outdated", "path", rel, "error", err)
		}
	}

	change.Classified = annotate.ClassifyGroup(group, doc)
	for _, c := range change.Classified {
		if c.Status == annotate.Current {
			change.Current++
		} else {
			change.Outdated++
		}
	}

	w.record(change)
	return change
}

func (w *Watcher) record(change Change) {
	w.mu.Lock()
	if len(change.Classified) == 0 {
		delete(w.counts, change.Path)
	} else {
		w.counts[change.Path] = Change{Path: change.Path, Current: change.Current, Outdated: change.Outdated}
	}
	var current, outdated int
	for _, c := range w.counts {
		current += c.Current
		outdated += c.Outdated
	}
	fn := w.onChange
	w.mu.Unlock()

	metrics.FindingsByStatus.WithLabelValues(annotate.Current.String()).Set(float64(current))
	metrics.FindingsByStatus.WithLabelValues(annotate.Outdated.String()).Set(float64(outdated))

	if fn != nil {
		fn(change)
	}
}

func (w *Watcher) reclassifyAll() {
	paths := w.findings.Groups().Paths()
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		seen[p] = struct{}{}
		w.Reclassify(p)
	}

	// Files that lost all their findings in the last pass.
	w.mu.Lock()
	var stale []string
	for p := range w.counts {
		if _, ok := seen[p]; !ok {
			stale = append(stale, p)
		}
	}
	w.mu.Unlock()
	sort.Strings(stale)
	for _, p := range stale {
		w.Reclassify(p)
	}
}

// syncDirectories adds a watch for the root and every directory holding a finding.
func (w *Watcher) syncDirectories() {
	dirs := map[string]struct{}{w.root: {}}
	for _, p := range w.findings.Groups().Paths() {
		abs, err := files.EnsureWithinRoot(w.root, filepath.Join(w.root, filepath.FromSlash(p)))
		if err != nil {
			continue
		}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for dir := range dirs {
		if _, ok := w.watched[dir]; ok {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Debug("failed to watch directory", "path", dir, "error", err)
			continue
		}
		w.watched[dir] = struct{}{}
	}
}

func (w *Watcher) watchedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

func (w *Watcher) watchForChanges() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			rel := files.RelativeToRoot(w.root, event.Name)
			if len(w.findings.Group(rel)) == 0 {
				continue
			}
			w.schedule(rel)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("workspace watcher error", "error", err)

		case <-w.stopChan:
			return
		}
	}
}

// schedule debounces bursts of events for one file into a single re-classification.
func (w *Watcher) schedule(rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[rel]; ok {
		t.Reset(w.opts.Debounce)
		return
	}
	w.pending[rel] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.pending, rel)
		w.mu.Unlock()

		select {
		case <-w.stopChan:
			return
		default:
		}

		change := w.Reclassify(rel)
		w.logger.Debug("file re-classified", "path", rel, "current", change.Current, "outdated", change.Outdated)
	})
}

func (w *Watcher) runPeriodically(ctx context.Context) {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, shared, err := w.runner.Run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.logger.Warn("periodic pass failed", "message", reconcile.UserMessage(err), "error", err)
			} else {
				w.logger.Info("periodic pass finished", "pass_id", res.PassID, "findings", res.Findings, "shared", shared)
			}
			// A failed pass may have cleared the store.
			w.syncDirectories()
			w.reclassifyAll()

		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		}
	}
}
