package fetcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diligence-cli/internal/model"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)
	return path
}

func TestReadCompaniesCSV_Basic(t *testing.T) {
	path := writeTempFile(t, "companies.csv",
		"Name,Industry,Stage,ARR,Growth Rate\n"+
			"PayFlow Technologies,Payments,Series A,\"$500,000\",15%\n"+
			"WealthAI,Wealth Management,seed,120000,40%\n")

	companies, err := ReadCompaniesCSV(path, CSVOptions{})
	require.NoError(t, err)
	require.Len(t, companies, 2)

	assert.Equal(t, "PayFlow Technologies", companies[0].Name)
	assert.Equal(t, model.StageSeriesA, companies[0].Stage)
	require.NotNil(t, companies[0].ARR)
	assert.Equal(t, 500000.0, *companies[0].ARR)
	require.NotNil(t, companies[1].GrowthRate)
	assert.InDelta(t, 0.40, *companies[1].GrowthRate, 1e-12)
}

func TestReadCompaniesCSV_DelimiterAndComment(t *testing.T) {
	path := writeTempFile(t, "companies.csv",
		"# exported from the deal tracker\n"+
			"Name;Industry;ARR\n"+
			"Acme;Payments;250000\n")

	companies, err := ReadCompaniesCSV(path, CSVOptions{Delimiter: ';', Comment: '#'})
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].Name)
	require.NotNil(t, companies[0].ARR)
	assert.Equal(t, 250000.0, *companies[0].ARR)
}

func TestReadCompaniesCSV_VariableWidthRows(t *testing.T) {
	path := writeTempFile(t, "companies.csv",
		"Name,Industry,ARR\n"+
			"Acme,Payments\n")

	companies, err := ReadCompaniesCSV(path, CSVOptions{})
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Nil(t, companies[0].ARR)
}

func TestReadCompaniesCSV_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.csv", "")

	_, err := ReadCompaniesCSV(path, CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadCompaniesCSV_MissingFile(t *testing.T) {
	_, err := ReadCompaniesCSV(filepath.Join(t.TempDir(), "nope.csv"), CSVOptions{})
	require.Error(t, err)
}
