package export

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/model"
	"github.com/bioleads/bioleads-cli/pkg/salesforce"
)

// SalesforceExporter inserts scored leads as Salesforce Lead records.
type SalesforceExporter struct {
	Client salesforce.Client
}

// Export bulk-inserts the batch and returns the number of records created.
// Individual record failures are logged, not fatal.
func (e *SalesforceExporter) Export(ctx context.Context, scored []model.ScoredLead) (int, error) {
	if len(scored) == 0 {
		return 0, nil
	}

	records := make([]map[string]any, len(scored))
	for i, sl := range scored {
		records[i] = leadRecord(sl)
	}

	results, err := e.Client.InsertCollection(ctx, "Lead", records)
	if err != nil {
		return 0, eris.Wrap(err, "sf export: insert leads")
	}

	created := 0
	for i, r := range results {
		if r.Success {
			created++
			continue
		}
		zap.L().Warn("sf export: record rejected",
			zap.String("name", scored[i].Name),
			zap.Strings("errors", r.Errors),
		)
	}
	return created, nil
}

func leadRecord(sl model.ScoredLead) map[string]any {
	b := sl.ScoreBreakdown
	return map[string]any{
		"LastName":    sl.Name,
		"Company":     sl.Company,
		"Title":       sl.Title,
		"Email":       sl.Email,
		"Rating":      string(sl.Tier),
		"LeadSource":  sl.Source,
		"Description": fmt.Sprintf("Probability score %d (scientific %d, role %d, company %d, tech %d, location %d)", sl.ProbabilityScore, b.ScientificIntent, b.RoleFit, b.CompanyIntent, b.Technographic, b.Location),
	}
}
