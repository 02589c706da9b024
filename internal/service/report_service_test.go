package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/locvowork/inventory_workbook/internal/domain"
	"github.com/locvowork/inventory_workbook/pkg/invexcel"
)

type fakeSource struct {
	sheets map[string]*domain.SheetData
	err    error
}

func (f *fakeSource) FetchSheet(_ context.Context, q domain.SheetQuery) (*domain.SheetData, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.sheets[q.Name]
	if !ok {
		return &domain.SheetData{}, nil
	}
	return data, nil
}

func TestBuildWorkbookFromQuery(t *testing.T) {
	source := &fakeSource{sheets: map[string]*domain.SheetData{
		"Instances": {
			Headers: []string{"name", "state"},
			Rows: [][]interface{}{
				{"web-10", "running"},
				{"web-2", "stopped"},
			},
		},
	}}
	svc := NewReportService(source)

	def := &invexcel.ReportDefinition{Sheets: []invexcel.SheetDefinition{
		{Name: "Instances", Query: "SELECT name, state FROM instances", SortBy: []string{"name"}},
	}}

	data, err := svc.ReportBytes(context.Background(), def)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Instances")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Headers come from the select list, rows are naturally sorted.
	assert.Equal(t, []string{"name", "state"}, rows[0])
	assert.Equal(t, "web-2", rows[1][0])
	assert.Equal(t, "web-10", rows[2][0])
}

func TestBuildWorkbookInlineSheet(t *testing.T) {
	svc := NewReportService(&fakeSource{})

	def := &invexcel.ReportDefinition{Sheets: []invexcel.SheetDefinition{
		{
			Name:    "Static",
			Headers: []string{"Key", "Value"},
			Rows:    [][]interface{}{{"region", "us-east-1"}},
		},
	}}

	data, err := svc.ReportBytes(context.Background(), def)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Static")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "region", rows[1][0])
}

func TestBuildWorkbookFetchError(t *testing.T) {
	fetchErr := errors.New("connection refused")
	svc := NewReportService(&fakeSource{err: fetchErr})

	def := &invexcel.ReportDefinition{Sheets: []invexcel.SheetDefinition{
		{Name: "Instances", Query: "SELECT 1"},
	}}

	_, err := svc.BuildWorkbook(context.Background(), def)
	require.ErrorIs(t, err, fetchErr)
}

func TestDefaultDefinition(t *testing.T) {
	def := DefaultDefinition()

	require.NoError(t, invexcel.ValidateDefinition(def))
	require.Len(t, def.Sheets, 2)
	assert.Contains(t, def.Sheets[0].Query, "FROM instances")
	assert.Contains(t, def.Sheets[1].Query, "LEFT JOIN instances")
}
