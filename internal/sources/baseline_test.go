package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioleads/bioleads-cli/pkg/pubmed"
)

func TestFilterArticles(t *testing.T) {
	articles := []pubmed.Article{
		{Title: "Drug-induced liver injury in spheroid culture"},
		{Abstract: "We study hepatotoxicity with 3D models."},
		{Keywords: []string{"liver organoid"}},
		{Title: "Unrelated cardiology result"},
	}
	terms := []string{`"drug-induced liver injury"`, `"hepatotoxicity" AND "3D"`, `"liver organoid"`}

	kept := filterArticles(articles, terms)
	require.Len(t, kept, 3)
	assert.Equal(t, "Drug-induced liver injury in spheroid culture", kept[0].Title)
}

func TestFilterArticles_NoTermsKeepsAll(t *testing.T) {
	articles := []pubmed.Article{{Title: "a"}, {Title: "b"}}
	assert.Len(t, filterArticles(articles, nil), 2)
}

func TestBaselineSourceName(t *testing.T) {
	src := &BaselineSource{}
	assert.Equal(t, "pubmed_baseline", src.Name())
}
