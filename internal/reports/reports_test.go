// ABOUTME: Tests for dashboard tallies and display-time foreign key resolution
// ABOUTME: Dangling references must render as the placeholder, never as errors

package reports

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressbook/pressbook/internal/livequery"
	"github.com/pressbook/pressbook/internal/store"
)

func setupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return st
}

func TestBuildDashboard_EmptyStore(t *testing.T) {
	st := setupTestStore(t)

	d, err := BuildDashboard(context.Background(), st, nil)
	require.NoError(t, err)
	assert.Equal(t, &Dashboard{}, d)
}

func TestBuildDashboard_Tallies(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddAuthor(ctx, &store.Author{ID: "AUT-1", Name: "A"}))
	require.NoError(t, st.AddBook(ctx, &store.Book{ISBN: "978-1", Title: "One"}))
	require.NoError(t, st.AddBook(ctx, &store.Book{ISBN: "978-2", Title: "Two"}))
	require.NoError(t, st.AddStock(ctx, &store.Stock{ID: "STK-1", ISBN: "978-1", Quantity: 3}))
	require.NoError(t, st.AddStock(ctx, &store.Stock{ID: "STK-2", ISBN: "978-2", Quantity: 5}))
	require.NoError(t, st.AddOutlet(ctx, &store.Outlet{ID: "OUT-1", Name: "Toko"}))

	d, err := BuildDashboard(ctx, st, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Authors)
	assert.Equal(t, 2, d.Books)
	assert.Equal(t, 2, d.StockRows)
	assert.Equal(t, 8, d.TotalStock)
	assert.Equal(t, 1, d.Outlets)
	assert.Equal(t, 0, d.Sales)
}

func TestTotalStock(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	for _, row := range []*store.Stock{
		{ID: "STK-1", Quantity: 3},
		{ID: "STK-2", Quantity: 5},
		{ID: "STK-3", Quantity: 0},
	} {
		require.NoError(t, st.AddStock(ctx, row))
	}

	total, err := TotalStock(ctx, st, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
}

func TestBookTitle_Resolves(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddBook(ctx, &store.Book{ISBN: "978-1", Title: "Laskar Pelangi"}))

	title, err := BookTitle(ctx, st, nil, "978-1")
	require.NoError(t, err)
	assert.Equal(t, "Laskar Pelangi", title)
}

func TestBookTitle_DanglingShowsPlaceholder(t *testing.T) {
	st := setupTestStore(t)

	title, err := BookTitle(context.Background(), st, nil, "no-such-isbn")
	require.NoError(t, err)
	assert.Equal(t, Placeholder, title)
}

func TestAuthorName_DanglingShowsPlaceholder(t *testing.T) {
	st := setupTestStore(t)

	name, err := AuthorName(context.Background(), st, nil, "no-such-author")
	require.NoError(t, err)
	assert.Equal(t, Placeholder, name)
}

func TestOutletName_DanglingShowsPlaceholder(t *testing.T) {
	st := setupTestStore(t)

	name, err := OutletName(context.Background(), st, nil, "no-such-outlet")
	require.NoError(t, err)
	assert.Equal(t, Placeholder, name)
}

func TestStockRows_ResolvesAndFallsBack(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddBook(ctx, &store.Book{ISBN: "978-1", Title: "Laskar Pelangi"}))
	require.NoError(t, st.AddShelf(ctx, &store.Shelf{ID: "SHF-1", Code: "A1"}))

	// One fully resolved row, one whose book and shelf were deleted out
	// from under it.
	require.NoError(t, st.AddStock(ctx, &store.Stock{ID: "STK-1", ISBN: "978-1", ShelfID: "SHF-1", Quantity: 4}))
	require.NoError(t, st.AddStock(ctx, &store.Stock{ID: "STK-2", ISBN: "gone", ShelfID: "gone", Quantity: 2}))

	rows, err := StockRows(ctx, st, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Laskar Pelangi", rows[0].BookTitle)
	assert.Equal(t, "A1", rows[0].ShelfCode)

	assert.Equal(t, Placeholder, rows[1].BookTitle)
	assert.Equal(t, Placeholder, rows[1].ShelfCode)
	assert.Equal(t, 2, rows[1].Stock.Quantity)
}

func TestRecentActivity(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AppendActivity(ctx, &store.ActivityEntry{Username: "admin", Activity: "logged in"}))

	entries, err := RecentActivity(ctx, st, nil, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "logged in", entries[0].Activity)
}

// Dashboard freshness through the live query layer: a stock write re-runs
// the dashboard query and the next delivery reflects the new total.
func TestDashboard_LiveRefresh(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	reg := livequery.NewRegistry(nil)
	st.SetChangeListener(reg)
	t.Cleanup(reg.Close)

	sub := livequery.Subscribe(ctx, reg, func(ctx context.Context, scope *livequery.Scope) (*Dashboard, error) {
		return BuildDashboard(ctx, st, scope)
	})
	defer sub.Close()

	r := <-sub.Updates()
	require.NoError(t, r.Err)
	require.Equal(t, 0, r.Value.TotalStock)

	require.NoError(t, st.AddStock(ctx, &store.Stock{ID: "STK-1", Quantity: 7}))

	r = <-sub.Updates()
	require.NoError(t, r.Err)
	assert.Equal(t, 7, r.Value.TotalStock)
	assert.Equal(t, 1, r.Value.StockRows)
}
