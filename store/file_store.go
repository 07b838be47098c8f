package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gcbaptista/markets-feeds/internal/clock"
	"github.com/gcbaptista/markets-feeds/internal/errors"
	"github.com/gcbaptista/markets-feeds/internal/logging"
	"github.com/gcbaptista/markets-feeds/internal/persistence"
	"github.com/gcbaptista/markets-feeds/model"
)

// sampleDataMarker excludes fixture files from the corpus.
const sampleDataMarker = "sample-data"

// FileStore reads articles from a directory of JSON files, each holding an array of articles.
// It fulfills the services.ArticleSource and services.ArticleSink interfaces.
type FileStore struct {
	dir    string
	clock  clock.Clock
	logger *zap.Logger
}

// NewFileStore creates a FileStore over dir.
func NewFileStore(dir string, c clock.Clock, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("article directory cannot be empty")
	}
	return &FileStore{dir: dir, clock: clock.OrReal(c), logger: logging.OrNop(logger)}, nil
}

// Dir returns the directory the store reads from.
func (s *FileStore) Dir() string {
	return s.dir
}

// LoadRawArticles reads every *.json file in the directory, in name order, skipping sample data.
// A file that cannot be decoded is logged and skipped; an unreadable directory is a StorageError.
func (s *FileStore) LoadRawArticles(ctx context.Context) ([]model.Article, error) {
	files, err := s.files()
	if err != nil {
		return nil, errors.NewStorageError("list "+s.dir, err)
	}

	articles := make([]model.Article, 0)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var batch []model.Article
		if err := persistence.LoadJSON(path, &batch); err != nil {
			s.logger.Warn("Skipping unreadable article file", zap.String("path", path), zap.Error(err))
			continue
		}
		articles = append(articles, batch...)
	}

	s.logger.Debug("Loaded article files", zap.Int("files", len(files)), zap.Int("articles", len(articles)))
	return articles, nil
}

// SaveArticles writes the batch to a new timestamped file and returns the number written.
func (s *FileStore) SaveArticles(ctx context.Context, articles []model.Article) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		return 0, nil
	}

	name := fmt.Sprintf("articles-%s.json", s.clock.Now().UTC().Format("20060102T150405.000000000"))
	if err := persistence.SaveJSON(filepath.Join(s.dir, name), articles); err != nil {
		return 0, errors.NewStorageError("save "+name, err)
	}
	return len(articles), nil
}

func (s *FileStore) files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" || strings.Contains(name, sampleDataMarker) {
			continue
		}
		files = append(files, filepath.Join(s.dir, name))
	}
	sort.Strings(files)
	return files, nil
}
