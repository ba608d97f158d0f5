// Package extract turns unstructured fundraising documents into company
// records using an LLM with strict-JSON prompts.
package extract

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/pkg/anthropic"
)

// Source identifies the document kind an extraction came from.
type Source string

const (
	SourcePitchDeck Source = "pitch_deck"
	SourceWebsite   Source = "website"
	SourceFiling    Source = "sec_filing"
)

const pitchDeckPrompt = `Extract key company metrics from this pitch deck content. Focus on financial and growth metrics.

Deck Content:
%s

Extract the following information in JSON format:
{
    "name": "Company name",
    "stage": "seed/series_a/series_b/series_c/series_d/late_stage",
    "industry": "Primary industry",
    "founded_year": year,
    "location": "City, Country",
    "arr": annual_recurring_revenue,
    "revenue": total_revenue,
    "funding_raised": total_funding_raised,
    "valuation": current_valuation,
    "cac": customer_acquisition_cost,
    "ltv": lifetime_value,
    "ltv_cac_ratio": ltv_cac_ratio,
    "churn_rate": monthly_churn_rate,
    "growth_rate": monthly_growth_rate,
    "employee_count": number_of_employees,
    "founders_count": number_of_founders,
    "description": "Company description",
    "business_model": "Business model description",
    "competitive_advantages": ["advantage1", "advantage2"]
}

If any information is not available, use null. Be precise with numbers and conservative with estimates.`

const websitePrompt = `Extract company information from this website content. Focus on publicly available information.

Website Content:
%s

Extract the following information in JSON format:
{
    "name": "Company name",
    "industry": "Primary industry",
    "founded_year": year,
    "location": "City, Country",
    "description": "Company description",
    "business_model": "Business model description",
    "competitive_advantages": ["advantage1", "advantage2"]
}

If any information is not available, use null. Focus on factual, publicly available information.`

const filingPrompt = `Extract financial and business metrics from this SEC filing content.

Filing Content:
%s

Extract the following information in JSON format:
{
    "name": "Company name",
    "industry": "Primary industry",
    "revenue": total_revenue,
    "employee_count": number_of_employees,
    "description": "Business description",
    "business_model": "Business model description"
}

Focus on financial data and business model information. Use null for unavailable data.`

// Extractor runs document extraction against the configured model.
type Extractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New builds an extractor.
func New(client anthropic.Client, modelID string, maxTokens int64) *Extractor {
	return &Extractor{client: client, model: modelID, maxTokens: maxTokens}
}

// PitchDeck extracts company metrics from pitch deck text.
func (e *Extractor) PitchDeck(ctx context.Context, content string) (*model.ExtractionResult, error) {
	return e.run(ctx, SourcePitchDeck, fmt.Sprintf(pitchDeckPrompt, content))
}

// Website extracts company facts from website text.
func (e *Extractor) Website(ctx context.Context, content string) (*model.ExtractionResult, error) {
	return e.run(ctx, SourceWebsite, fmt.Sprintf(websitePrompt, content))
}

// Filing extracts financials from SEC filing text.
func (e *Extractor) Filing(ctx context.Context, content string) (*model.ExtractionResult, error) {
	return e.run(ctx, SourceFiling, fmt.Sprintf(filingPrompt, content))
}

func (e *Extractor) run(ctx context.Context, source Source, prompt string) (*model.ExtractionResult, error) {
	temperature := 0.1
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temperature,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "extract: %s", source)
	}
	resp.Usage.LogCost(e.model, string(source))

	text := resp.Text()
	p, err := parsePayload(text)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: %s", source)
	}

	result := &model.ExtractionResult{
		Company:              p.toCompany(),
		RawText:              text,
		Source:               string(source),
		ExtractionConfidence: p.confidence(),
		MissingFields:        p.missingFields(),
	}
	zap.L().Debug("extraction complete",
		zap.String("source", string(source)),
		zap.String("company", result.Company.Name),
		zap.Float64("confidence", result.ExtractionConfidence),
		zap.Int("missing_fields", len(result.MissingFields)))
	return result, nil
}
