// ABOUTME: Derived reads over the record store: dashboard tallies and display lookups
// ABOUTME: Dangling foreign keys resolve to a placeholder, never an error

package reports

import (
	"context"
	"errors"

	"github.com/pressbook/pressbook/internal/livequery"
	"github.com/pressbook/pressbook/internal/store"
)

// Placeholder is shown for a foreign key whose referent no longer exists.
const Placeholder = "-"

// Store is the read surface the report builders need.
type Store interface {
	store.CatalogStore
	store.InventoryStore
	store.SalesStore
	store.ActivityStore
}

// Dashboard is the set of tallies shown on the landing view.
type Dashboard struct {
	Books         int
	Authors       int
	Publishers    int
	Categories    int
	Shelves       int
	Outlets       int
	StockRows     int
	TotalStock    int
	Distributions int
	Returns       int
	Customers     int
	Sales         int
}

// touch records a collection read when the caller supplied a live-query
// scope; plain one-shot reads pass nil.
func touch(scope *livequery.Scope, collection string) {
	if scope != nil {
		scope.Touch(collection)
	}
}

// BuildDashboard computes all dashboard tallies. Each count is an
// independent read; the tallies are not a consistent snapshot.
func BuildDashboard(ctx context.Context, st Store, scope *livequery.Scope) (*Dashboard, error) {
	var d Dashboard
	var err error

	counts := []struct {
		collection string
		dest       *int
		count      func(context.Context) (int, error)
	}{
		{store.CollectionBooks, &d.Books, st.CountBooks},
		{store.CollectionAuthors, &d.Authors, st.CountAuthors},
		{store.CollectionPublishers, &d.Publishers, st.CountPublishers},
		{store.CollectionCategories, &d.Categories, st.CountCategories},
		{store.CollectionShelves, &d.Shelves, st.CountShelves},
		{store.CollectionOutlets, &d.Outlets, st.CountOutlets},
		{store.CollectionStock, &d.StockRows, st.CountStock},
		{store.CollectionDistributions, &d.Distributions, st.CountDistributions},
		{store.CollectionReturns, &d.Returns, st.CountReturns},
		{store.CollectionCustomers, &d.Customers, st.CountCustomers},
		{store.CollectionSales, &d.Sales, st.CountSales},
	}
	for _, c := range counts {
		touch(scope, c.collection)
		if *c.dest, err = c.count(ctx); err != nil {
			return nil, err
		}
	}

	touch(scope, store.CollectionStock)
	if d.TotalStock, err = st.TotalStockQuantity(ctx); err != nil {
		return nil, err
	}

	return &d, nil
}

// TotalStock returns the sum of quantities over all stock rows.
func TotalStock(ctx context.Context, st Store, scope *livequery.Scope) (int, error) {
	touch(scope, store.CollectionStock)
	return st.TotalStockQuantity(ctx)
}

// RecentActivity returns the latest activity entries, newest first.
func RecentActivity(ctx context.Context, st Store, scope *livequery.Scope, limit int) ([]*store.ActivityEntry, error) {
	touch(scope, store.CollectionActivityLog)
	return st.ListActivity(ctx, limit)
}

// BookTitle resolves an ISBN to its title for display. A missing book yields
// the placeholder, not an error.
func BookTitle(ctx context.Context, st Store, scope *livequery.Scope, isbn string) (string, error) {
	touch(scope, store.CollectionBooks)
	b, err := st.GetBook(ctx, isbn)
	if errors.Is(err, store.ErrNotFound) {
		return Placeholder, nil
	}
	if err != nil {
		return "", err
	}
	return b.Title, nil
}

// AuthorName resolves an author ID to a name for display.
func AuthorName(ctx context.Context, st Store, scope *livequery.Scope, id string) (string, error) {
	touch(scope, store.CollectionAuthors)
	a, err := st.GetAuthor(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Placeholder, nil
	}
	if err != nil {
		return "", err
	}
	return a.Name, nil
}

// OutletName resolves an outlet ID to a name for display.
func OutletName(ctx context.Context, st Store, scope *livequery.Scope, id string) (string, error) {
	touch(scope, store.CollectionOutlets)
	o, err := st.GetOutlet(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Placeholder, nil
	}
	if err != nil {
		return "", err
	}
	return o.Name, nil
}

// StockRow is one stock record joined with its display fields.
type StockRow struct {
	Stock     *store.Stock
	BookTitle string
	ShelfCode string
}

// StockRows lists all stock with book titles and shelf codes resolved;
// dangling references show the placeholder.
func StockRows(ctx context.Context, st Store, scope *livequery.Scope) ([]StockRow, error) {
	touch(scope, store.CollectionStock)
	touch(scope, store.CollectionBooks)
	touch(scope, store.CollectionShelves)

	stock, err := st.ListStock(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]StockRow, 0, len(stock))
	for _, s := range stock {
		row := StockRow{Stock: s, BookTitle: Placeholder, ShelfCode: Placeholder}

		if b, err := st.GetBook(ctx, s.ISBN); err == nil {
			row.BookTitle = b.Title
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		if sh, err := st.GetShelf(ctx, s.ShelfID); err == nil {
			row.ShelfCode = sh.Code
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		rows = append(rows, row)
	}
	return rows, nil
}
