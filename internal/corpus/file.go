package corpus

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/model"
)

// WriteJSON writes companies to path as an indented JSON array.
func WriteJSON(path string, companies []model.Company) error {
	data, err := json.MarshalIndent(companies, "", "  ")
	if err != nil {
		return eris.Wrap(err, "corpus: marshal companies")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "corpus: write companies file")
	}
	return nil
}

// ReadJSON reads a JSON array of companies from path.
func ReadJSON(path string) ([]model.Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "corpus: read companies file")
	}
	var companies []model.Company
	if err := json.Unmarshal(data, &companies); err != nil {
		return nil, eris.Wrap(err, "corpus: parse companies file")
	}
	return companies, nil
}
