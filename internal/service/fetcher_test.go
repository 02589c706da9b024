package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/inventory_workbook/internal/domain"
)

type countingSource struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string]int
}

func (s *countingSource) FetchSheet(_ context.Context, q domain.SheetQuery) (*domain.SheetData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[q.Name]++
	if s.failures[q.Name] >= s.calls[q.Name] {
		return nil, errors.New("transient failure")
	}
	return &domain.SheetData{
		Headers: []string{"name"},
		Rows:    [][]interface{}{{q.Name}},
	}, nil
}

func TestFetchSheetsOrdered(t *testing.T) {
	queries := make([]domain.SheetQuery, 8)
	for i := range queries {
		queries[i] = domain.SheetQuery{Name: fmt.Sprintf("sheet-%d", i)}
	}

	results, err := fetchSheets(context.Background(), &countingSource{}, queries, 3)
	require.NoError(t, err)
	require.Len(t, results, len(queries))

	// Results come back in query order regardless of worker scheduling.
	for i, data := range results {
		assert.Equal(t, fmt.Sprintf("sheet-%d", i), data.Rows[0][0])
	}
}

func TestFetchSheetsRetriesTransientFailure(t *testing.T) {
	source := &countingSource{failures: map[string]int{"flaky": 1}}

	results, err := fetchSheets(context.Background(), source,
		[]domain.SheetQuery{{Name: "flaky"}}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, source.calls["flaky"])
}

func TestFetchSheetsExhaustedRetries(t *testing.T) {
	source := &countingSource{failures: map[string]int{"down": 10}}

	_, err := fetchSheets(context.Background(), source,
		[]domain.SheetQuery{{Name: "down"}}, 1)
	require.Error(t, err)
	assert.Equal(t, 1+fetchMaxRetries, source.calls["down"])
}

func TestFetchSheetsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetchSheets(ctx, &countingSource{},
		[]domain.SheetQuery{{Name: "sheet"}}, 1)
	require.ErrorIs(t, err, context.Canceled)
}
