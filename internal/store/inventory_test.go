// ABOUTME: Tests for stock, outlets, distributions, and returns
// ABOUTME: Covers the total-quantity aggregate and per-outlet/per-title lookups

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	row := &Stock{ID: "STK-1", ISBN: "978-1", ShelfID: "SHF-1", Quantity: 10}
	require.NoError(t, store.AddStock(ctx, row))
	assert.ErrorIs(t, store.AddStock(ctx, row), ErrConflict)

	qty := 7
	require.NoError(t, store.UpdateStock(ctx, "STK-1", StockPatch{Quantity: &qty}))

	got, err := store.GetStock(ctx, "STK-1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, "978-1", got.ISBN)

	require.NoError(t, store.DeleteStock(ctx, "STK-1"))
	_, err = store.GetStock(ctx, "STK-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTotalStockQuantity(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	total, err := store.TotalStockQuantity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total, "empty collection sums to zero")

	for _, row := range []*Stock{
		{ID: "STK-1", ISBN: "978-1", Quantity: 3},
		{ID: "STK-2", ISBN: "978-2", Quantity: 5},
		{ID: "STK-3", ISBN: "978-3", Quantity: 0},
	} {
		require.NoError(t, store.AddStock(ctx, row))
	}

	total, err = store.TotalStockQuantity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
}

func TestListStockByISBN(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddStock(ctx, &Stock{ID: "STK-1", ISBN: "978-1", ShelfID: "SHF-1", Quantity: 3}))
	require.NoError(t, store.AddStock(ctx, &Stock{ID: "STK-2", ISBN: "978-1", ShelfID: "SHF-2", Quantity: 4}))
	require.NoError(t, store.AddStock(ctx, &Stock{ID: "STK-3", ISBN: "978-2", ShelfID: "SHF-1", Quantity: 9}))

	rows, err := store.ListStockByISBN(ctx, "978-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "STK-1", rows[0].ID)
	assert.Equal(t, "STK-2", rows[1].ID)
}

func TestOutletCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddOutlet(ctx, &Outlet{ID: "OUT-1", Name: "Toko Buku Jaya", Address: "Bandung"}))
	assert.ErrorIs(t, store.AddOutlet(ctx, &Outlet{ID: "OUT-1"}), ErrConflict)

	addr := "Surabaya"
	require.NoError(t, store.UpdateOutlet(ctx, "OUT-1", OutletPatch{Address: &addr}))

	got, err := store.GetOutlet(ctx, "OUT-1")
	require.NoError(t, err)
	assert.Equal(t, "Toko Buku Jaya", got.Name)
	assert.Equal(t, "Surabaya", got.Address)
}

func TestDistributionCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	dist := &Distribution{
		ID:       "DST-1",
		ISBN:     "978-1",
		OutletID: "OUT-1",
		Quantity: 20,
		ShipDate: "2026-08-15",
		Notes:    "first batch",
	}
	require.NoError(t, store.AddDistribution(ctx, dist))

	got, err := store.GetDistribution(ctx, "DST-1")
	require.NoError(t, err)
	assert.Equal(t, dist, got)

	qty := 18
	notes := "two damaged in transit"
	require.NoError(t, store.UpdateDistribution(ctx, "DST-1", DistributionPatch{Quantity: &qty, Notes: &notes}))

	got, err = store.GetDistribution(ctx, "DST-1")
	require.NoError(t, err)
	assert.Equal(t, 18, got.Quantity)
	assert.Equal(t, "two damaged in transit", got.Notes)
	assert.Equal(t, "2026-08-15", got.ShipDate)
}

func TestListDistributionsByOutlet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDistribution(ctx, &Distribution{ID: "DST-1", OutletID: "OUT-1", Quantity: 5}))
	require.NoError(t, store.AddDistribution(ctx, &Distribution{ID: "DST-2", OutletID: "OUT-2", Quantity: 6}))
	require.NoError(t, store.AddDistribution(ctx, &Distribution{ID: "DST-3", OutletID: "OUT-1", Quantity: 7}))

	dists, err := store.ListDistributionsByOutlet(ctx, "OUT-1")
	require.NoError(t, err)
	require.Len(t, dists, 2)
	assert.Equal(t, "DST-1", dists[0].ID)
	assert.Equal(t, "DST-3", dists[1].ID)
}

func TestReturnCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ret := &Return{
		ID:             "RTN-1",
		DistributionID: "DST-1",
		Quantity:       2,
		ReturnDate:     "2026-08-20",
		Condition:      "damaged",
	}
	require.NoError(t, store.AddReturn(ctx, ret))
	assert.ErrorIs(t, store.AddReturn(ctx, ret), ErrConflict)

	cond := "unsold"
	require.NoError(t, store.UpdateReturn(ctx, "RTN-1", ReturnPatch{Condition: &cond}))

	got, err := store.GetReturn(ctx, "RTN-1")
	require.NoError(t, err)
	assert.Equal(t, "unsold", got.Condition)
	assert.Equal(t, 2, got.Quantity)

	require.NoError(t, store.DeleteReturn(ctx, "RTN-1"))
	assert.NoError(t, store.DeleteReturn(ctx, "RTN-1"))
}
