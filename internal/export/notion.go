package export

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/model"
	"github.com/bioleads/bioleads-cli/pkg/notion"
)

// NotionExporter writes scored leads as pages of a Notion database.
type NotionExporter struct {
	Client     notion.Client
	DatabaseID string
}

// Export creates one page per lead, skipping leads whose name already has a
// page in the database. Returns the number of pages created.
func (e *NotionExporter) Export(ctx context.Context, scored []model.ScoredLead) (int, error) {
	existing, err := e.existingNames(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, sl := range scored {
		if _, ok := existing[strings.ToLower(sl.Name)]; ok {
			continue
		}
		if _, err := e.Client.CreatePage(ctx, e.pageFor(sl)); err != nil {
			return created, eris.Wrapf(err, "notion export: create page for %s", sl.Name)
		}
		created++
	}
	zap.L().Info("notion export complete",
		zap.Int("created", created),
		zap.Int("skipped", len(scored)-created),
	)
	return created, nil
}

func (e *NotionExporter) existingNames(ctx context.Context) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	var cursor notionapi.Cursor

	for {
		resp, err := e.Client.QueryDatabase(ctx, e.DatabaseID, &notionapi.DatabaseQueryRequest{
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, eris.Wrap(err, "notion export: query database")
		}
		for _, page := range resp.Results {
			if title, ok := page.Properties["Name"].(*notionapi.TitleProperty); ok {
				var sb strings.Builder
				for _, rt := range title.Title {
					sb.WriteString(rt.PlainText)
				}
				names[strings.ToLower(sb.String())] = struct{}{}
			}
		}
		if !resp.HasMore {
			return names, nil
		}
		cursor = resp.NextCursor
	}
}

func (e *NotionExporter) pageFor(sl model.ScoredLead) *notionapi.PageCreateRequest {
	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(e.DatabaseID),
		},
		Properties: notionapi.Properties{
			"Name": notionapi.TitleProperty{
				Title: []notionapi.RichText{{Text: &notionapi.Text{Content: sl.Name}}},
			},
			"Company": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: sl.Company}}},
			},
			"Title": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: sl.Title}}},
			},
			"Score": notionapi.NumberProperty{
				Number: float64(sl.ProbabilityScore),
			},
			"Tier": notionapi.SelectProperty{
				Select: notionapi.Option{Name: string(sl.Tier)},
			},
			"Rank": notionapi.NumberProperty{
				Number: float64(sl.Rank),
			},
		},
	}
}
