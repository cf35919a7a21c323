package anchor

import (
	"context"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/pkg/shared/files"
)

// DefaultJobs bounds concurrent file reads.
const DefaultJobs = 8

type Resolver struct {
	root   string
	jobs   int
	logger hclog.Logger
}

// NewResolver anchors findings under the workspace root. An empty root means no workspace is open.
func NewResolver(root string, jobs int, logger hclog.Logger) *Resolver {
	if jobs < 1 {
		jobs = DefaultJobs
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Resolver{root: root, jobs: jobs, logger: logger}
}

// Resolve returns copies of list with LineText and Language captured from disk, in input order.
// Each distinct file is read at most once. Only context cancellation is reported as an error;
// per-finding problems are recorded as sentinel line texts.
func (r *Resolver) Resolve(ctx context.Context, list []findings.Finding) ([]findings.Finding, error) {
	out := findings.CloneAll(list)

	paths := make(map[string]int)
	var unique []string
	for _, f := range out {
		if f.Line == nil || f.FilePath == nil || r.root == "" {
			continue
		}
		if _, ok := paths[*f.FilePath]; !ok {
			paths[*f.FilePath] = len(unique)
			unique = append(unique, *f.FilePath)
		}
	}

	loaded := make([]*File, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs)
	for i, p := range unique {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			loaded[i] = r.load(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out {
		f := &out[i]
		switch {
		case f.Line == nil:
			f.LineText = findings.LineNotProvided
		case r.root == "" || f.FilePath == nil:
			f.LineText = findings.FileNotProvided
		default:
			file := loaded[paths[*f.FilePath]]
			if file == nil {
				f.LineText = findings.FileNotReadable
				continue
			}
			f.Language = file.Language
			if text, ok := file.Line(*f.Line); ok {
				f.LineText = text
			} else {
				f.LineText = findings.LineOutOfRange
			}
		}
	}

	r.logger.Debug("findings anchored", "findings", len(out), "files", len(unique))
	return out, nil
}

func (r *Resolver) load(rel string) *File {
	abs, err := files.EnsureWithinRoot(r.root, filepath.Join(r.root, filepath.FromSlash(rel)))
	if err != nil {
		r.logger.Debug("finding path rejected", "path", rel, "err", err)
		return nil
	}
	file, err := ReadFile(abs)
	if err != nil {
		r.logger.Debug("finding file unreadable", "path", rel, "err", err)
		return nil
	}
	return file
}

// Root returns the workspace root the resolver anchors against.
func (r *Resolver) Root() string {
	return r.root
}
