package pipeline

import (
	"context"
	"path/filepath"

	"github.com/openstax/bookops/pkg/bookmeta"
	"github.com/openstax/bookops/pkg/cleanup"
	"github.com/openstax/bookops/pkg/gitrepo"
	"github.com/openstax/bookops/pkg/license"
	"github.com/openstax/bookops/pkg/logging"
	"github.com/openstax/bookops/pkg/ui"
	"golang.org/x/sync/errgroup"
)

// Commit messages of the maintenance steps.
const (
	MsgRemoveOrphans = "Remove unnecessary files from root directory"
	MsgPrepare       = "Add README and repository settings"
)

// Repo is the part of a book repository the pipeline works with.
type Repo interface {
	cleanup.Repo
	CommitAll(ctx context.Context, msg string) (bool, error)
	PushChanges(ctx context.Context) (bool, error)
}

// OrphanRemover deletes files no longer referenced by a book.
type OrphanRemover interface {
	RemoveOrphans(ctx context.Context, bookPath string, whitelist []string) (int, error)
}

// LicenseSyncer keeps a book's LICENSE in line with its metadata.
type LicenseSyncer interface {
	Ensure(ctx context.Context, repo license.Committer, bookPath string, lic bookmeta.License) (license.Result, error)
}

// Options configures a run.
type Options struct {
	// Org owns every book repository on GitHub.
	Org string
	// Branch is checked out in every book.
	Branch string
	// WorkDir holds the book clones, one directory per book.
	WorkDir string
	// BaseURL replaces https://github.com when cloning.
	BaseURL string
	// StaticDir holds README templates and repo-settings.
	StaticDir string
	// Push prunes branches and tags and pushes instead of reporting.
	Push bool
	// Jobs is the number of books processed at once.
	Jobs int
}

// BookResult is the outcome for one book. License stays nil until the
// license step has run.
type BookResult struct {
	Book     string          `json:"book" yaml:"book"`
	Repo     string          `json:"repo" yaml:"repo"`
	Orphans  int             `json:"orphans" yaml:"orphans"`
	License  *license.Status `json:"license,omitempty" yaml:"license,omitempty"`
	Branches []string        `json:"branches" yaml:"branches"`
	Tags     []string        `json:"tags" yaml:"tags"`
	Pushed   bool            `json:"pushed" yaml:"pushed"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
	Hint     string          `json:"hint,omitempty" yaml:"hint,omitempty"`
	Err      error           `json:"-" yaml:"-"`
}

func (r *BookResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// Pipeline processes book repositories.
type Pipeline struct {
	opts     Options
	orphans  OrphanRemover
	licenses LicenseSyncer
	printer  *ui.Printer
	open     func(ctx context.Context, opts gitrepo.Options) (Repo, error)
}

// New creates a pipeline. Repositories are opened with gitrepo.Open.
func New(opts Options, orphans OrphanRemover, licenses LicenseSyncer, printer *ui.Printer) *Pipeline {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if opts.Branch == "" {
		opts.Branch = gitrepo.DefaultBranch
	}
	return &Pipeline{
		opts:     opts,
		orphans:  orphans,
		licenses: licenses,
		printer:  printer,
		open: func(ctx context.Context, o gitrepo.Options) (Repo, error) {
			return gitrepo.Open(ctx, o)
		},
	}
}

// Run processes books, Jobs at a time, and returns one result per book in
// input order. Book failures are reported in the results; the returned
// error is only set when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, books []string) ([]BookResult, error) {
	logger := logging.GetLogger("pipeline")
	logger.Info().Int("books", len(books)).Int("jobs", p.opts.Jobs).Bool("push", p.opts.Push).Msg("Starting maintenance run")

	results := make([]BookResult, len(books))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Jobs)
	for i, book := range books {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = BookResult{Book: book, Repo: p.repoSlug(book)}
				results[i].fail(err)
				return nil
			}
			results[i] = p.ProcessBook(gctx, book)
			return nil
		})
	}
	_ = g.Wait()

	logger.Info().Int("books", len(books)).Int("failed", Failed(results)).Msg("Maintenance run finished")
	return results, ctx.Err()
}

// ProcessBook runs every maintenance step on one book. The first failing
// step ends the book and is reported in red.
func (p *Pipeline) ProcessBook(ctx context.Context, book string) BookResult {
	result := BookResult{Book: book, Repo: p.repoSlug(book)}
	p.printer.Banner(result.Repo)

	if err := p.processBook(ctx, &result); err != nil {
		result.fail(err)
		logger := logging.WithRepo("pipeline", result.Repo)
		logger.Error().Err(err).Msg("Book failed")
		p.printer.BookError(result.Repo, err)
		if result.Hint = Hint(err); result.Hint != "" {
			p.printer.Hint(result.Hint)
		}
	}
	return result
}

func (p *Pipeline) processBook(ctx context.Context, result *BookResult) error {
	logger := logging.WithRepo("pipeline", result.Repo)
	bookPath := filepath.Join(p.opts.WorkDir, result.Book)

	repo, err := p.open(ctx, gitrepo.Options{
		Path:          bookPath,
		WorkingBranch: p.opts.Branch,
		Remote:        result.Repo,
		BaseURL:       p.opts.BaseURL,
	})
	if err != nil {
		return err
	}

	// Orphans are only removed from the book root.
	removed, err := p.orphans.RemoveOrphans(ctx, bookPath, []string{bookPath})
	if err != nil {
		return err
	}
	result.Orphans = removed
	if _, err := repo.CommitAll(ctx, MsgRemoveOrphans); err != nil {
		return err
	}

	meta, err := bookmeta.Prepare(bookPath, p.opts.StaticDir)
	if err != nil {
		return err
	}
	if _, err := repo.CommitAll(ctx, MsgPrepare); err != nil {
		return err
	}

	if lic, ok := meta.PrimaryLicense(); ok {
		res, err := p.licenses.Ensure(ctx, repo, bookPath, lic)
		if err != nil {
			return err
		}
		status := res.Status
		result.License = &status
		switch res.Status {
		case license.Unknown:
			p.printer.Warning("Unknown license [path]" + res.Source + "[/path]")
		case license.WouldUpdate:
			p.printer.Println(res.Diff)
		}
	}

	if p.opts.Push {
		if result.Branches, err = cleanup.Branches(ctx, repo); err != nil {
			return err
		}
		if result.Tags, err = cleanup.Tags(ctx, repo); err != nil {
			return err
		}
		if result.Pushed, err = repo.PushChanges(ctx); err != nil {
			return err
		}
		logger.Info().Strs("branches", result.Branches).Strs("tags", result.Tags).Bool("pushed", result.Pushed).Msg("Book synchronized")
		return nil
	}

	if result.Branches, err = cleanup.PlannedBranches(ctx, repo); err != nil {
		return err
	}
	p.printer.Plan("branches", result.Branches)
	if result.Tags, err = cleanup.PlannedTags(ctx, repo); err != nil {
		return err
	}
	p.printer.Plan("tags", result.Tags)
	return nil
}

func (p *Pipeline) repoSlug(book string) string {
	return p.opts.Org + "/" + book
}

// Hint suggests a fix for git failures with a known cause, or returns "".
func Hint(err error) string {
	switch gitrepo.ErrorKindOf(err) {
	case gitrepo.AuthRequired:
		return "set GITHUB_TOKEN so git can authenticate"
	case gitrepo.RepositoryNotFound:
		return "check the repository name and that the token can read it"
	case gitrepo.RepositoryUnavailable:
		return "check network access to the git host"
	}
	return ""
}

// Failed counts the results that carry an error.
func Failed(results []BookResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
