// Package archive orchestrates the submission archiving pipeline:
// list history, select the latest accepted submission per problem and
// language, fetch each selected submission's source, and write it to
// the archive tree.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"atcoder-archiver/lang"
	"atcoder-archiver/problems"
	"atcoder-archiver/selector"
)

// ManifestEntry describes an archived submission for the manifest store.
type ManifestEntry struct {
	ID          int64
	ContestID   string
	ProblemID   string
	Language    string
	EpochSecond int64
	Path        string
}

// SubmissionLister fetches a user's submission history.
type SubmissionLister interface {
	ListUserSubmissions(ctx context.Context, userID string) ([]problems.Submission, error)
}

// CodeFetcher retrieves the source text of one submission.
type CodeFetcher interface {
	FetchCode(ctx context.Context, contestID string, submissionID int64) (string, error)
}

// ManifestStore records archived submissions.
type ManifestStore interface {
	SaveSubmission(ctx context.Context, entry *ManifestEntry) error
}

// Notifier reports a run summary to an external channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Summary holds the outcome of one archive run.
type Summary struct {
	UserID   string
	Total    int
	Selected int
	Archived int
	Failed   int
}

// Message renders the summary as a short human-readable report.
func (s Summary) Message() string {
	msg := fmt.Sprintf("Archived %d of %d selected submissions for %s (%d in history).",
		s.Archived, s.Selected, s.UserID, s.Total)
	if s.Failed > 0 {
		msg += fmt.Sprintf(" %d failed.", s.Failed)
	}
	return msg
}

// Runner executes the archive pipeline.
type Runner struct {
	lister       SubmissionLister
	fetcher      CodeFetcher
	manifest     ManifestStore
	notifier     Notifier
	userID       string
	outputDir    string
	requestDelay time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithUserID sets the AtCoder user whose submissions are archived.
func WithUserID(userID string) Option {
	return func(r *Runner) {
		r.userID = userID
	}
}

// WithOutputDir sets the archive root directory.
func WithOutputDir(dir string) Option {
	return func(r *Runner) {
		r.outputDir = dir
	}
}

// WithRequestDelay sets the pause between submission page fetches.
func WithRequestDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.requestDelay = d
	}
}

// WithNotifier sets an optional run summary notifier.
func WithNotifier(n Notifier) Option {
	return func(r *Runner) {
		r.notifier = n
	}
}

// NewRunner creates a new archive runner.
func NewRunner(lister SubmissionLister, fetcher CodeFetcher, manifest ManifestStore, opts ...Option) *Runner {
	r := &Runner{
		lister:       lister,
		fetcher:      fetcher,
		manifest:     manifest,
		outputDir:    "./atcoder-submissions",
		requestDelay: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one archive pass. A listing failure is fatal. Failures
// on individual submissions are logged, counted, and skipped; earlier
// writes stay in place. Run returns a non-nil error if any submission
// failed, so a partial run exits non-zero.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if r.userID == "" {
		return nil, fmt.Errorf("user id not set")
	}

	slog.Info("starting archive run", "user_id", r.userID, "output_dir", r.outputDir)

	submissions, err := r.lister.ListUserSubmissions(ctx, r.userID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	slog.Info("fetched submission history", "count", len(submissions))

	if err := WriteResults(r.outputDir, submissions); err != nil {
		slog.Warn("failed to write results dump", "error", err)
	}

	selected := selector.Select(submissions)
	keys := selector.SortedKeys(selected)
	slog.Info("selected submissions", "count", len(keys))

	summary := &Summary{
		UserID:   r.userID,
		Total:    len(submissions),
		Selected: len(keys),
	}

	for i, key := range keys {
		sub := selected[key]

		// Pause between page fetches to stay polite with the
		// submission service.
		if i > 0 {
			if err := r.wait(ctx); err != nil {
				return summary, err
			}
		}

		if err := r.archiveSubmission(ctx, sub); err != nil {
			slog.Warn("failed to archive submission",
				"submission_id", sub.ID,
				"contest_id", sub.ContestID,
				"problem_id", sub.ProblemID,
				"error", err)
			summary.Failed++
			continue
		}
		summary.Archived++
	}

	slog.Info("archive run complete",
		"archived", summary.Archived,
		"failed", summary.Failed,
		"selected", summary.Selected)

	r.notify(ctx, summary)

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d submissions failed", summary.Failed, summary.Selected)
	}
	return summary, nil
}

func (r *Runner) archiveSubmission(ctx context.Context, sub problems.Submission) error {
	source, err := r.fetcher.FetchCode(ctx, sub.ContestID, sub.ID)
	if err != nil {
		return fmt.Errorf("fetch code: %w", err)
	}

	path := ArtifactPath(r.outputDir, sub)
	if err := WriteArtifact(path, source); err != nil {
		return err
	}

	if err := UpdateMetadata(path, sub); err != nil {
		slog.Warn("failed to update metadata", "path", path, "error", err)
	}

	if r.manifest != nil {
		entry := &ManifestEntry{
			ID:          sub.ID,
			ContestID:   sub.ContestID,
			ProblemID:   sub.ProblemID,
			Language:    lang.Normalize(sub.Language),
			EpochSecond: sub.EpochSecond,
			Path:        path,
		}
		if err := r.manifest.SaveSubmission(ctx, entry); err != nil {
			slog.Warn("failed to record submission in manifest", "submission_id", sub.ID, "error", err)
		}
	}

	slog.Info("archived submission",
		"submission_id", sub.ID,
		"contest_id", sub.ContestID,
		"problem_id", sub.ProblemID,
		"path", path)
	return nil
}

func (r *Runner) notify(ctx context.Context, summary *Summary) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, summary.Message()); err != nil {
		slog.Warn("failed to send run notification", "error", err)
	}
}

func (r *Runner) wait(ctx context.Context) error {
	if r.requestDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(r.requestDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
