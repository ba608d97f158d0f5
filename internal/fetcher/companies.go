// Package fetcher reads companies from analyst-provided files. XLSX and CSV
// inputs share one header-mapped row parser, so the same column names work
// in both formats; JSON files carry the model schema directly.
package fetcher

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/model"
)

// ReadCompanies loads companies from path, dispatching on file extension.
func ReadCompanies(path string) ([]model.Company, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadCompaniesXLSX(path, XLSXOptions{})
	case ".csv":
		return ReadCompaniesCSV(path, CSVOptions{})
	case ".json":
		return ReadCompaniesJSON(path)
	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q", filepath.Ext(path))
	}
}

// ReadCompaniesJSON reads a JSON array of companies.
func ReadCompaniesJSON(path string) ([]model.Company, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "json: open file")
	}
	defer f.Close()

	var companies []model.Company
	if err := json.NewDecoder(f).Decode(&companies); err != nil {
		return nil, eris.Wrap(err, "json: decode companies")
	}
	return companies, nil
}

// normalizeKey canonicalizes a header cell: lowercased, separators collapsed
// to underscores, common aliases mapped to model field names.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.Join(strings.Fields(s), "_")
	switch s {
	case "company", "company_name":
		return "name"
	case "employees":
		return "employee_count"
	case "founders":
		return "founders_count"
	case "founded":
		return "founded_year"
	case "churn":
		return "churn_rate"
	case "growth":
		return "growth_rate"
	case "ltv_cac":
		return "ltv_cac_ratio"
	}
	return s
}

// parseAmount reads a spreadsheet number, tolerating dollar signs, thousands
// separators and a trailing percent sign (which divides by 100).
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, eris.Wrap(err, "parse number")
	}
	if percent {
		f /= 100
	}
	return f, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseCompanies maps header-named columns onto companies. Unknown columns
// are ignored, fully blank rows are skipped, and a bad cell fails the whole
// file with its row number so the sheet can be fixed.
func parseCompanies(header []string, rows [][]string) ([]model.Company, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if key := normalizeKey(h); key != "" {
			cols[key] = i
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, eris.New("fetcher: header has no name column")
	}

	var companies []model.Company
	for i, row := range rows {
		rowNum := i + 2 // 1-based, after the header row
		if blankRow(row) {
			continue
		}

		cell := func(key string) string {
			idx, ok := cols[key]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := cell("name")
		if name == "" {
			return nil, eris.Errorf("fetcher: row %d: name is empty", rowNum)
		}

		c := model.Company{
			Name:          name,
			Domain:        cell("domain"),
			Location:      cell("location"),
			Industry:      cell("industry"),
			Description:   cell("description"),
			BusinessModel: cell("business_model"),
		}

		if v := cell("stage"); v != "" {
			stage := model.Stage(strings.ReplaceAll(strings.ToLower(v), " ", "_"))
			if !stage.IsValid() {
				return nil, eris.Errorf("fetcher: row %d: unknown stage %q", rowNum, v)
			}
			c.Stage = stage
		}

		for key, dst := range map[string]**float64{
			"arr":            &c.ARR,
			"revenue":        &c.Revenue,
			"funding_raised": &c.FundingRaised,
			"valuation":      &c.Valuation,
			"cac":            &c.CAC,
			"ltv":            &c.LTV,
			"ltv_cac_ratio":  &c.LTVCACRatio,
			"churn_rate":     &c.ChurnRate,
			"growth_rate":    &c.GrowthRate,
		} {
			v := cell(key)
			if v == "" {
				continue
			}
			f, err := parseAmount(v)
			if err != nil {
				return nil, eris.Wrapf(err, "fetcher: row %d: %s", rowNum, key)
			}
			*dst = &f
		}

		for key, dst := range map[string]**int{
			"employee_count": &c.EmployeeCount,
			"founders_count": &c.FoundersCount,
			"founded_year":   &c.FoundedYear,
		} {
			v := cell(key)
			if v == "" {
				continue
			}
			n, err := strconv.Atoi(strings.ReplaceAll(v, ",", ""))
			if err != nil {
				return nil, eris.Wrapf(err, "fetcher: row %d: %s", rowNum, key)
			}
			*dst = &n
		}

		if c.LTVCACRatio == nil && c.LTV != nil && c.CAC != nil && *c.CAC != 0 {
			c.LTVCACRatio = model.Ptr(*c.LTV / *c.CAC)
		}

		c.DataSources = []string{"file_import"}
		companies = append(companies, c)
	}
	return companies, nil
}
