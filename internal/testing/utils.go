// Package testing provides builders and wired fixtures shared by the package tests.
package testing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/markets-feeds/config"
	"github.com/gcbaptista/markets-feeds/internal/clock"
	"github.com/gcbaptista/markets-feeds/internal/engine"
	"github.com/gcbaptista/markets-feeds/model"
	"github.com/gcbaptista/markets-feeds/services"
	"github.com/gcbaptista/markets-feeds/store"
)

// Now is the fixed instant fixtures start their fake clock at.
var Now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// ArticleBuilder builds articles with sensible defaults.
type ArticleBuilder struct {
	article model.Article
}

// NewArticle starts an article with the given id; the URL derives from it.
func NewArticle(id string) *ArticleBuilder {
	return &ArticleBuilder{article: model.Article{
		ID:          id,
		URL:         "https://news.example/" + id,
		Title:       "Article " + id,
		SourceID:    "wire",
		SourceName:  "Wire",
		Category:    "markets",
		Tags:        []string{},
		Priority:    model.PriorityNormal,
		PublishedAt: Now,
		FetchedAt:   Now,
	}}
}

func (b *ArticleBuilder) Title(title string) *ArticleBuilder {
	b.article.Title = title
	return b
}

func (b *ArticleBuilder) Summary(summary string) *ArticleBuilder {
	b.article.Summary = summary
	return b
}

func (b *ArticleBuilder) Content(content string) *ArticleBuilder {
	b.article.FullContent = content
	return b
}

func (b *ArticleBuilder) Category(category string) *ArticleBuilder {
	b.article.Category = category
	return b
}

func (b *ArticleBuilder) Source(id string) *ArticleBuilder {
	b.article.SourceID = id
	return b
}

func (b *ArticleBuilder) URL(url string) *ArticleBuilder {
	b.article.URL = url
	return b
}

func (b *ArticleBuilder) Tags(tags ...string) *ArticleBuilder {
	b.article.Tags = tags
	return b
}

func (b *ArticleBuilder) Priority(p model.Priority) *ArticleBuilder {
	b.article.Priority = p
	return b
}

// Age sets the publication time relative to Now.
func (b *ArticleBuilder) Age(d time.Duration) *ArticleBuilder {
	b.article.PublishedAt = Now.Add(-d)
	return b
}

func (b *ArticleBuilder) Build() model.Article {
	a := b.article
	a.Tags = append([]string(nil), b.article.Tags...)
	return a
}

// ScenarioArticles is the three-article corpus used across packages: a central-bank story,
// an earnings story filed under markets, and a crypto story filed under technology.
func ScenarioArticles() []model.Article {
	return []model.Article{
		NewArticle("1").Title("Fed signals rate cut").Category("macro").Age(time.Hour).Build(),
		NewArticle("2").Title("Apple earnings beat forecast").Category("markets").Age(2 * time.Hour).Build(),
		NewArticle("3").Title("Bitcoin surges past 65000").Category("technology").Age(3 * time.Hour).Build(),
	}
}

// NumberedArticles returns n articles published one minute apart, newest first.
func NumberedArticles(n int) []model.Article {
	out := make([]model.Article, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, NewArticle(fmt.Sprintf("n%03d", i)).
			Title(fmt.Sprintf("Market update number %d", i)).
			Age(time.Duration(i)*time.Minute).
			Build())
	}
	return out
}

// Fixture is a started engine over an in-memory store with a fake clock.
type Fixture struct {
	Engine *engine.Engine
	Store  *store.MemoryStore
	Clock  *clock.Fake
}

// NewFixture wires an engine over the given articles. The engine is stopped when the test ends.
func NewFixture(t *testing.T, articles ...model.Article) *Fixture {
	t.Helper()
	return NewFixtureWithSource(t, nil, articles...)
}

// NewFixtureWithSource is NewFixture reading from source instead of the memory store when source is non-nil.
func NewFixtureWithSource(t *testing.T, source services.ArticleSource, articles ...model.Article) *Fixture {
	t.Helper()

	memory := store.NewMemoryStore(0)
	_, err := memory.SaveArticles(context.Background(), articles)
	require.NoError(t, err, "Failed to seed store")
	if source == nil {
		source = memory
	}

	fake := clock.NewFake(Now)
	eng, err := engine.New(engine.Options{
		Settings: config.DefaultSettings(),
		Source:   source,
		Clock:    fake,
	})
	require.NoError(t, err, "Failed to create engine")

	eng.Start()
	t.Cleanup(eng.Stop)

	return &Fixture{Engine: eng, Store: memory, Clock: fake}
}

// Warm loads the corpus and waits for the index build to finish.
func (f *Fixture) Warm(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.Engine.Warm(ctx), "Failed to warm engine")
}

// FailingSource is an ArticleSource that always fails.
type FailingSource struct {
	Err error
}

func (s FailingSource) LoadRawArticles(context.Context) ([]model.Article, error) {
	return nil, s.Err
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      5 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJobCompletion polls a job until it completes or times out
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted:
				return job
			case model.JobStatusFailed, model.JobStatusCancelled:
				t.Fatalf("Job %s ended as %s: %s", jobID, job.Status, job.Error)
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s",
						jobID,
						job.Progress.Current,
						job.Progress.Total,
						job.Progress.Message)
				}
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedTarget string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedTarget, job.Target, "Job target should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// Titles extracts article titles, preserving order.
func Titles(articles []model.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}
