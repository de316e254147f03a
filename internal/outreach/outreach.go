// Package outreach drafts personalized first-contact emails for top-ranked
// leads.
package outreach

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bioleads/bioleads-cli/internal/model"
	"github.com/bioleads/bioleads-cli/pkg/anthropic"
)

const systemPrompt = `You are a sales development representative for a company
selling 3D in-vitro liver models to toxicology teams. Write a short, specific
first-contact email to the researcher described by the user. Reference their
work where given. No subject line, no placeholders, under 150 words.`

// Draft pairs a lead with its generated email body and the tokens spent
// generating it.
type Draft struct {
	Lead  model.ScoredLead
	Email string
	Usage anthropic.TokenUsage
}

// Drafter generates outreach emails via the Anthropic API.
type Drafter struct {
	Client    anthropic.Client
	Model     string
	MaxTokens int64
}

// DraftTop generates drafts for the n highest-ranked leads, in rank order.
// Leads without a name (company-only funding entries) are skipped.
func (d *Drafter) DraftTop(ctx context.Context, scored []model.ScoredLead, n int) ([]Draft, error) {
	var drafts []Draft
	for _, sl := range scored {
		if len(drafts) >= n {
			break
		}
		if strings.TrimSpace(sl.Name) == "" {
			continue
		}
		email, usage, err := d.draft(ctx, sl)
		if err != nil {
			return drafts, eris.Wrapf(err, "outreach: draft for %s", sl.Name)
		}
		drafts = append(drafts, Draft{Lead: sl, Email: email, Usage: usage})
	}
	zap.L().Info("outreach drafts generated", zap.Int("count", len(drafts)))
	return drafts, nil
}

func (d *Drafter) draft(ctx context.Context, sl model.ScoredLead) (string, anthropic.TokenUsage, error) {
	resp, err := d.Client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     d.Model,
		MaxTokens: d.MaxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: leadBrief(sl)},
		},
	})
	if err != nil {
		return "", anthropic.TokenUsage{}, err
	}
	return resp.Text, resp.Usage, nil
}

// leadBrief summarizes the lead for the prompt. Only populated fields are
// included.
func leadBrief(sl model.ScoredLead) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", sl.Name)
	if sl.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", sl.Title)
	}
	if sl.Company != "" {
		if sl.CompanyType != "" {
			fmt.Fprintf(&sb, "Company: %s (%s)\n", sl.Company, sl.CompanyType)
		} else {
			fmt.Fprintf(&sb, "Company: %s\n", sl.Company)
		}
	}
	if sl.RecentPublication != "" {
		fmt.Fprintf(&sb, "Recent work: %s\n", sl.RecentPublication)
	}
	if len(sl.PublicationKeywords) > 0 {
		fmt.Fprintf(&sb, "Research keywords: %s\n", strings.Join(sl.PublicationKeywords, ", "))
	}
	if sl.FundingStatus != "" && !strings.EqualFold(sl.FundingStatus, "unknown") {
		fmt.Fprintf(&sb, "Funding: %s\n", sl.FundingStatus)
	}
	fmt.Fprintf(&sb, "Lead tier: %s\n", sl.Tier)
	return sb.String()
}
