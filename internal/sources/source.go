// Package sources harvests leads from external systems: PubMed publications,
// NIH RePORTER grants, conference speaker pages, and funding news feeds.
package sources

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bioleads/bioleads-cli/internal/model"
)

// Source produces leads from one external system.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Lead, error)
}

// FetchAll runs every source concurrently and returns the merged, deduplicated
// batch. A failing source fails the whole fetch.
func FetchAll(ctx context.Context, srcs []Source) ([]model.Lead, error) {
	g, ctx := errgroup.WithContext(ctx)

	batches := make([][]model.Lead, len(srcs))

	for i, src := range srcs {
		g.Go(func() error {
			leads, err := src.Fetch(ctx)
			if err != nil {
				return err
			}
			zap.L().Info("source fetched",
				zap.String("source", src.Name()),
				zap.Int("leads", len(leads)),
			)
			batches[i] = leads
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Merge(batches...), nil
}

func mergeKey(l model.Lead) string {
	return strings.ToLower(strings.TrimSpace(l.Name)) + "|" + strings.ToLower(strings.TrimSpace(l.Company))
}

// Merge concatenates batches and deduplicates by (name, company),
// case-insensitively, keeping the first occurrence.
//
// Company-only entries (empty name, produced by the funding feed) are folded
// into named leads at the same company: their funding_status fills in leads
// that have none, and the entry itself is kept only when no named lead for
// that company exists.
func Merge(batches ...[]model.Lead) []model.Lead {
	var named []model.Lead
	var companyOnly []model.Lead
	seen := make(map[string]struct{})

	for _, batch := range batches {
		for _, l := range batch {
			key := mergeKey(l)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if strings.TrimSpace(l.Name) == "" && strings.TrimSpace(l.Company) != "" {
				companyOnly = append(companyOnly, l)
			} else {
				named = append(named, l)
			}
		}
	}

	byCompany := make(map[string][]int)
	for i, l := range named {
		c := strings.ToLower(strings.TrimSpace(l.Company))
		if c != "" {
			byCompany[c] = append(byCompany[c], i)
		}
	}

	merged := named
	for _, co := range companyOnly {
		c := strings.ToLower(strings.TrimSpace(co.Company))
		idxs, ok := byCompany[c]
		if !ok {
			merged = append(merged, co)
			continue
		}
		for _, i := range idxs {
			fs := merged[i].FundingStatus
			if fs == "" || strings.EqualFold(fs, "unknown") {
				merged[i].FundingStatus = co.FundingStatus
			}
		}
	}
	return merged
}
