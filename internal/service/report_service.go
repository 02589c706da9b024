package service

import (
	"context"
	"fmt"

	"github.com/locvowork/inventory_workbook/internal/domain"
	"github.com/locvowork/inventory_workbook/internal/logger"
	"github.com/locvowork/inventory_workbook/internal/repository/builder"
	"github.com/locvowork/inventory_workbook/pkg/invexcel"
)

// ReportService turns a report definition into a populated workbook builder,
// fetching rows for query-backed sheets from the inventory source.
type ReportService struct {
	source domain.InventorySource
	opts   []invexcel.Option
}

// NewReportService creates a new ReportService. The options are forwarded to
// every workbook builder the service creates.
func NewReportService(source domain.InventorySource, opts ...invexcel.Option) *ReportService {
	return &ReportService{source: source, opts: opts}
}

// BuildWorkbook populates a fresh builder from the definition. Sheets with
// inline rows are applied as-is; sheets with a query are fetched from the
// inventory source by a bounded worker pool before the builder is filled in
// definition order. When a query sheet declares no headers, the select list's
// column names become the headers.
func (s *ReportService) BuildWorkbook(ctx context.Context, def *invexcel.ReportDefinition) (*invexcel.WorkbookBuilder, error) {
	var queries []domain.SheetQuery
	fetchedIdx := make(map[int]int)
	for i := range def.Sheets {
		if def.Sheets[i].Query != "" {
			fetchedIdx[i] = len(queries)
			queries = append(queries, domain.SheetQuery{
				Name: def.Sheets[i].Name,
				SQL:  def.Sheets[i].Query,
			})
		}
	}

	var fetched []*domain.SheetData
	if len(queries) > 0 {
		var err error
		fetched, err = fetchSheets(ctx, s.source, queries, defaultFetchWorkers)
		if err != nil {
			return nil, fmt.Errorf("fetching report sheets: %w", err)
		}
	}

	b := invexcel.NewWorkbookBuilder(s.opts...)

	for i := range def.Sheets {
		sd := &def.Sheets[i]

		if j, ok := fetchedIdx[i]; ok {
			data := fetched[j]
			logger.InfoLog(ctx, "fetched %d rows for sheet %q", len(data.Rows), sd.Name)

			if len(sd.Headers) == 0 {
				if err := b.AddHeaders(sd.Name, data.Headers); err != nil {
					return nil, fmt.Errorf("sheet %q: %w", sd.Name, err)
				}
			}
			if err := b.ApplySheetDefinition(sd); err != nil {
				return nil, err
			}
			if err := b.AddRows(sd.Name, data.Rows); err != nil {
				return nil, fmt.Errorf("sheet %q: %w", sd.Name, err)
			}
			continue
		}

		if err := b.ApplySheetDefinition(sd); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// ExportReport builds the workbook and saves it to the path template.
func (s *ReportService) ExportReport(ctx context.Context, def *invexcel.ReportDefinition, pathTemplate string) error {
	b, err := s.BuildWorkbook(ctx, def)
	if err != nil {
		return err
	}
	return b.Export(pathTemplate)
}

// ReportBytes builds the workbook and renders it in memory, for callers that
// stream the file instead of writing it to disk.
func (s *ReportService) ReportBytes(ctx context.Context, def *invexcel.ReportDefinition) ([]byte, error) {
	b, err := s.BuildWorkbook(ctx, def)
	if err != nil {
		return nil, err
	}
	return b.ToBytes()
}

// DefaultDefinition is the report used when no definition file is configured:
// running instances and attached volumes, naturally sorted by name with the
// stopped and errored states highlighted.
func DefaultDefinition() *invexcel.ReportDefinition {
	instancesSQL, _ := builder.NewSQLBuilder().
		Select("name", "instance_id", "state", "instance_type", "availability_zone", "launched_at").
		From("instances").
		Where("state <> 'terminated'").
		Build()

	volumesSQL, _ := builder.NewSQLBuilder().
		Select("v.volume_id", "v.size_gb", "v.state", "i.name AS instance_name", "v.created_at").
		From("volumes v").
		Join("LEFT", "instances i", "v.instance_id = i.id").
		Build()

	return &invexcel.ReportDefinition{
		Version: "1.0",
		Sheets: []invexcel.SheetDefinition{
			{
				Name:        "Instances",
				Query:       instancesSQL,
				SortBy:      []string{"name"},
				FreezeAfter: "name",
				HeaderRules: []invexcel.HeaderRule{
					{Header: "state", Formula: `$C2="stopped"`, BGColor: "FFC7CE"},
				},
			},
			{
				Name:        "Volumes",
				Query:       volumesSQL,
				SortBy:      []string{"volume_id"},
				FreezeAfter: "volume_id",
				TableRules: []invexcel.ConditionalRule{
					{Formula: `$C2="error"`, BGColor: "FFC7CE"},
				},
			},
		},
	}
}
