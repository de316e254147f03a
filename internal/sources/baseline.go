package sources

import (
	"compress/gzip"
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/fetcher"
	"github.com/bioleads/bioleads-cli/internal/model"
	"github.com/bioleads/bioleads-cli/pkg/pubmed"
)

// BaselineSource harvests leads from the NCBI annual baseline distribution
// instead of the live E-utilities API. Baseline files are gzipped
// PubmedArticleSet documents served over anonymous FTP; file names are
// numbered, so the highest-numbered files are the most recent.
type BaselineSource struct {
	FTP      *fetcher.FTPFetcher
	BaseURL  string
	MaxFiles int
	Terms    []string
}

func (s *BaselineSource) Name() string { return "pubmed_baseline" }

func (s *BaselineSource) Fetch(ctx context.Context) ([]model.Lead, error) {
	names, err := s.FTP.List(ctx, s.BaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "baseline source: list files")
	}

	var files []string
	for _, n := range names {
		if strings.HasSuffix(n, ".xml.gz") {
			files = append(files, n)
		}
	}
	sort.Strings(files)
	if s.MaxFiles > 0 && len(files) > s.MaxFiles {
		files = files[len(files)-s.MaxFiles:]
	}
	zap.L().Info("baseline file selection",
		zap.Int("available", len(names)),
		zap.Int("selected", len(files)),
	)

	var articles []pubmed.Article
	for _, f := range files {
		batch, err := s.fetchFile(ctx, strings.TrimRight(s.BaseURL, "/")+"/"+f)
		if err != nil {
			return nil, err
		}
		articles = append(articles, batch...)
	}

	return leadsFromArticles(filterArticles(articles, s.Terms)), nil
}

func (s *BaselineSource) fetchFile(ctx context.Context, rawURL string) ([]pubmed.Article, error) {
	rc, err := s.FTP.Retrieve(ctx, rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "baseline source: retrieve %s", rawURL)
	}
	defer rc.Close() //nolint:errcheck

	gz, err := gzip.NewReader(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "baseline source: gunzip %s", rawURL)
	}
	defer gz.Close() //nolint:errcheck

	articles, err := pubmed.ParseArticles(gz)
	if err != nil {
		return nil, eris.Wrapf(err, "baseline source: parse %s", rawURL)
	}
	return articles, nil
}

// filterArticles keeps articles whose title, abstract, or keywords mention
// any of the search terms. Quotes and boolean operators in the terms are
// stripped before matching.
func filterArticles(articles []pubmed.Article, terms []string) []pubmed.Article {
	var words []string
	for _, t := range terms {
		t = strings.ToLower(strings.ReplaceAll(t, `"`, ""))
		for _, part := range strings.Split(t, " and ") {
			if part = strings.TrimSpace(part); part != "" {
				words = append(words, part)
			}
		}
	}
	if len(words) == 0 {
		return articles
	}

	var kept []pubmed.Article
	for _, a := range articles {
		text := strings.ToLower(a.Title + " " + a.Abstract + " " + strings.Join(a.Keywords, " "))
		for _, w := range words {
			if strings.Contains(text, w) {
				kept = append(kept, a)
				break
			}
		}
	}
	return kept
}
