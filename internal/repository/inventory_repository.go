package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locvowork/inventory_workbook/internal/domain"
)

// DB is the subset of *sql.DB the inventory repository needs.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type inventoryRepository struct {
	db DB
}

// NewInventoryRepository creates a new instance of InventorySource backed by
// a SQL database.
func NewInventoryRepository(db DB) domain.InventorySource {
	return &inventoryRepository{db: db}
}

// FetchSheet runs the sheet's query and scans every row into generic cells.
// Column order follows the select list, so it matches the sheet's headers.
func (r *inventoryRepository) FetchSheet(ctx context.Context, query domain.SheetQuery) (*domain.SheetData, error) {
	rows, err := r.db.QueryContext(ctx, query.SQL, query.Args...)
	if err != nil {
		return nil, fmt.Errorf("executing query for sheet %q: %w", query.Name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("getting columns for sheet %q: %w", query.Name, err)
	}

	data := &domain.SheetData{Headers: columns}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scanning row for sheet %q: %w", query.Name, err)
		}

		for i, v := range values {
			// The pq driver hands text columns back as []byte.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data.Rows = append(data.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows for sheet %q: %w", query.Name, err)
	}

	return data, nil
}
