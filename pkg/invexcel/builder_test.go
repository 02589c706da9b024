package invexcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddHeadersDuplicate(t *testing.T) {
	b := NewWorkbookBuilder()

	err := b.AddHeaders("Instances", []string{"Name", "State", "Name"})
	require.ErrorIs(t, err, ErrDuplicateHeader)
}

func TestAddHeadersDuplicateKeepsExisting(t *testing.T) {
	b := NewWorkbookBuilder()

	require.NoError(t, b.AddHeaders("Instances", []string{"Name", "State"}))
	require.ErrorIs(t, b.AddHeaders("Instances", []string{"ID", "ID"}), ErrDuplicateHeader)

	// The failed call must not have disturbed the previous headers.
	require.NoError(t, b.AddRow("Instances", []interface{}{"web-1", "running"}))
}

func TestAddHeadersReplace(t *testing.T) {
	b := NewWorkbookBuilder()

	require.NoError(t, b.AddHeaders("Instances", []string{"Name", "State"}))
	require.NoError(t, b.AddRow("Instances", []interface{}{"web-1", "running"}))
	require.NoError(t, b.AddHeaders("Instances", []string{"Name", "State", "Zone"}))

	// The old row surfaces as a width mismatch when merged, not before.
	_, err := b.byName["Instances"].mergeForExport()
	require.ErrorIs(t, err, ErrColumnCountMismatch)
}

func TestAddRowWidthMismatch(t *testing.T) {
	b := NewWorkbookBuilder()
	require.NoError(t, b.AddHeaders("Instances", []string{"Name", "State"}))

	err := b.AddRow("Instances", []interface{}{"web-1"})
	require.ErrorIs(t, err, ErrColumnCountMismatch)
}

func TestAddRowNilBecomesEmptyString(t *testing.T) {
	b := NewWorkbookBuilder()
	require.NoError(t, b.AddHeaders("Instances", []string{"Name", "State"}))
	require.NoError(t, b.AddRow("Instances", []interface{}{"web-1", nil}))

	assert.Equal(t, "", b.byName["Instances"].rows[0][1])
}

func TestAddRowsPartialFailure(t *testing.T) {
	b := NewWorkbookBuilder()
	require.NoError(t, b.AddHeaders("Instances", []string{"Name"}))

	err := b.AddRows("Instances", [][]interface{}{
		{"web-1"},
		{"web-2", "extra"},
		{"web-3"},
	})
	require.ErrorIs(t, err, ErrColumnCountMismatch)

	// Rows appended before the failing one stay.
	assert.Len(t, b.byName["Instances"].rows, 1)
}

func TestAddDataSingleRow(t *testing.T) {
	b := NewWorkbookBuilder()
	require.NoError(t, b.AddHeaders("Instances", []string{"Name", "State"}))
	require.NoError(t, b.AddData("Instances", []interface{}{"web-1", "running"}))

	assert.Len(t, b.byName["Instances"].rows, 1)
}

func TestAddDataBatch(t *testing.T) {
	b := NewWorkbookBuilder()
	require.NoError(t, b.AddHeaders("Instances", []string{"Name", "State"}))
	require.NoError(t, b.AddData("Instances", []interface{}{
		[]interface{}{"web-1", "running"},
		[]interface{}{"web-2", "stopped"},
	}))

	assert.Len(t, b.byName["Instances"].rows, 2)
}

func TestAddDataByteSliceIsScalar(t *testing.T) {
	b := NewWorkbookBuilder()
	require.NoError(t, b.AddHeaders("Instances", []string{"Name", "State"}))

	// A []byte first element is a cell value, not a nested row.
	require.NoError(t, b.AddData("Instances", []interface{}{[]byte("web-1"), "running"}))
	assert.Len(t, b.byName["Instances"].rows, 1)
}

func TestSetSortKeys(t *testing.T) {
	b := NewWorkbookBuilder()
	require.NoError(t, b.AddHeaders("Instances", []string{"Name", "State", "Zone"}))

	require.NoError(t, b.SetSortKeys("Instances", "Zone", "Name"))
	assert.Equal(t, []int{2, 0}, b.byName["Instances"].sortKeys)
}

func TestSetSortKeysUnknownHeader(t *testing.T) {
	b := NewWorkbookBuilder()
	require.NoError(t, b.AddHeaders("Instances", []string{"Name"}))

	err := b.SetSortKeys("Instances", "Region")
	require.ErrorIs(t, err, ErrUnknownHeader)
}

func TestSetSortKeysUnknownSheet(t *testing.T) {
	b := NewWorkbookBuilder()

	err := b.SetSortKeys("Missing", "Name")
	require.ErrorIs(t, err, ErrUnknownHeader)
}

func TestAddTableFormatRulesSkipsMalformed(t *testing.T) {
	b := NewWorkbookBuilder()
	b.AddTableFormatRules("Instances", []ConditionalRule{
		{Formula: `$B2="stopped"`, BGColor: "FFC7CE"},
		{Formula: "", BGColor: "FFC7CE"},
		{Formula: `$B2="running"`, BGColor: ""},
		{Formula: `$C2>0`, BGColor: "#C6EFCE"},
	})

	assert.Len(t, b.byName["Instances"].tableRules, 2)
}

func TestMergeForExportNoHeaders(t *testing.T) {
	sh := &sheet{name: "Instances", rows: [][]interface{}{{"web-1"}}}

	_, err := sh.mergeForExport()
	require.ErrorIs(t, err, ErrNoHeaders)
}

func TestTableIdentifierStripsSpaces(t *testing.T) {
	sh := &sheet{name: "EBS Volumes In Use"}
	assert.Equal(t, "EBSVolumesInUse", sh.tableIdentifier())
}
