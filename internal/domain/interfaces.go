package domain

import "context"

// InventorySource fetches the tabular contents of one report sheet from a
// backing store.
type InventorySource interface {
	FetchSheet(ctx context.Context, query SheetQuery) (*SheetData, error)
}
