// Package export publishes benchmark runs to a Notion deal-tracking
// database, one page per company.
package export

import (
	"context"
	"errors"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/resilience"
	"github.com/sells-group/diligence-cli/pkg/notion"
)

// Stats reports what an export did.
type Stats struct {
	Created int
	Updated int
}

// Exporter writes benchmark runs into a Notion database. Re-exporting a
// company updates its existing page instead of creating a duplicate, so
// the deal tracker always shows the latest run.
type Exporter struct {
	client notion.Client
	dbID   string
	retry  resilience.RetryConfig
}

// New creates an Exporter targeting the given deal database.
func New(client notion.Client, dbID string) *Exporter {
	cfg := resilience.DefaultRetryConfig()
	cfg.ShouldRetry = retryableNotion
	return &Exporter{client: client, dbID: dbID, retry: cfg}
}

// retryableNotion treats Notion rate limits and server errors as transient
// alongside the usual network failures.
func retryableNotion(err error) bool {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return resilience.RetryableStatus(apiErr.Status)
	}
	return resilience.IsTransient(err)
}

// retryFor clones the retry config with logging attributed to the operation.
func (e *Exporter) retryFor(operation string) resilience.RetryConfig {
	cfg := e.retry
	cfg.OnRetry = resilience.RetryLogger("notion", operation)
	return cfg
}

// ExportRuns upserts one page per run, matched to existing pages by
// company name.
func (e *Exporter) ExportRuns(ctx context.Context, runs []model.BenchmarkRun) (Stats, error) {
	var stats Stats
	if len(runs) == 0 {
		return stats, nil
	}

	existing, err := e.existingPages(ctx)
	if err != nil {
		return stats, err
	}

	for i := range runs {
		run := &runs[i]
		props := runProperties(run)

		if pageID, ok := existing[run.CompanyName]; ok {
			err := resilience.Do(ctx, e.retryFor("update page"), func(ctx context.Context) error {
				_, err := e.client.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{
					Properties: props,
				})
				return err
			})
			if err != nil {
				return stats, eris.Wrapf(err, "export: update page for %s", run.CompanyName)
			}
			stats.Updated++
		} else {
			req := &notionapi.PageCreateRequest{
				Parent: notionapi.Parent{
					Type:       notionapi.ParentTypeDatabaseID,
					DatabaseID: notionapi.DatabaseID(e.dbID),
				},
				Properties: props,
			}
			err := resilience.Do(ctx, e.retryFor("create page"), func(ctx context.Context) error {
				_, err := e.client.CreatePage(ctx, req)
				return err
			})
			if err != nil {
				return stats, eris.Wrapf(err, "export: create page for %s", run.CompanyName)
			}
			stats.Created++
		}

		zap.L().Debug("exported run",
			zap.String("company", run.CompanyName),
			zap.String("run_id", run.ID))
	}

	return stats, nil
}

// existingPages maps company names to page IDs for every page already in
// the deal database.
func (e *Exporter) existingPages(ctx context.Context) (map[string]string, error) {
	pages, err := resilience.DoVal(ctx, e.retryFor("query"), func(ctx context.Context) ([]notionapi.Page, error) {
		return notion.QueryAll(ctx, e.client, e.dbID, nil)
	})
	if err != nil {
		return nil, eris.Wrap(err, "export: list deal pages")
	}

	existing := make(map[string]string, len(pages))
	for i := range pages {
		name := pageTitle(&pages[i])
		if name == "" {
			continue
		}
		existing[name] = string(pages[i].ID)
	}
	return existing, nil
}

// runProperties maps a run onto the deal database schema. Select options
// are created by Notion on first use, so new industries and stages need
// no schema changes.
func runProperties(run *model.BenchmarkRun) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(run.CompanyName),
		},
		"Risk Score": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: run.RiskScore,
		},
		"Red Flags": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(run.FlagCount),
		},
		"Peers": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(run.PeerCount),
		},
		"Status": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(run.Status)},
		},
		"Run ID": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(run.ID),
		},
	}

	if run.Industry != "" {
		props["Industry"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: run.Industry},
		}
	}
	if run.Stage != "" {
		props["Stage"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(run.Stage)},
		}
	}
	if run.Recommendation != "" {
		props["Recommendation"] = notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(run.Recommendation),
		}
	}
	if !run.CreatedAt.IsZero() {
		d := notionapi.Date(run.CreatedAt)
		props["Benchmarked At"] = notionapi.DateProperty{
			Type: notionapi.PropertyTypeDate,
			Date: &notionapi.DateObject{Start: &d},
		}
	}

	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}

// pageTitle extracts the plain text of a page's title property. A database
// has exactly one title property, so the column name does not matter.
func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		var title []notionapi.RichText
		switch p := prop.(type) {
		case *notionapi.TitleProperty:
			title = p.Title
		case notionapi.TitleProperty:
			title = p.Title
		default:
			continue
		}

		var sb strings.Builder
		for _, rt := range title {
			if rt.PlainText != "" {
				sb.WriteString(rt.PlainText)
			} else if rt.Text != nil {
				sb.WriteString(rt.Text.Content)
			}
		}
		return sb.String()
	}
	return ""
}
