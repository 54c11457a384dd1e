// ABOUTME: Store methods for the inventory collections
// ABOUTME: Stock rows, distribution outlets, shipments, and returns

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddStock inserts a new stock row. Returns ErrConflict if the ID exists.
// The ISBN and shelf references are not validated against their collections.
func (s *SQLiteStore) AddStock(ctx context.Context, st *Stock) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock (stock_id, isbn, shelf_id, quantity)
		VALUES (?, ?, ?, ?)
	`, st.ID, st.ISBN, st.ShelfID, st.Quantity)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting stock: %w", err)
	}
	s.logger.Debug("added stock", "id", st.ID, "isbn", st.ISBN)
	s.notify(CollectionStock)
	return nil
}

// GetStock retrieves a stock row by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetStock(ctx context.Context, id string) (*Stock, error) {
	var st Stock
	err := s.db.QueryRowContext(ctx, `
		SELECT stock_id, isbn, shelf_id, quantity FROM stock WHERE stock_id = ?
	`, id).Scan(&st.ID, &st.ISBN, &st.ShelfID, &st.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying stock: %w", err)
	}
	return &st, nil
}

// UpdateStock merges a patch into an existing stock row.
func (s *SQLiteStore) UpdateStock(ctx context.Context, id string, p StockPatch) error {
	st, err := s.GetStock(ctx, id)
	if err != nil {
		return err
	}
	if p.ISBN != nil {
		st.ISBN = *p.ISBN
	}
	if p.ShelfID != nil {
		st.ShelfID = *p.ShelfID
	}
	if p.Quantity != nil {
		st.Quantity = *p.Quantity
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE stock SET isbn = ?, shelf_id = ?, quantity = ? WHERE stock_id = ?
	`, st.ISBN, st.ShelfID, st.Quantity, id)
	if err != nil {
		return fmt.Errorf("updating stock: %w", err)
	}
	s.logger.Debug("updated stock", "id", id)
	s.notify(CollectionStock)
	return nil
}

// DeleteStock removes a stock row. Deleting an absent ID is a no-op.
func (s *SQLiteStore) DeleteStock(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM stock WHERE stock_id = ?", id); err != nil {
		return fmt.Errorf("deleting stock: %w", err)
	}
	s.logger.Debug("deleted stock", "id", id)
	s.notify(CollectionStock)
	return nil
}

// ListStock returns all stock rows in insertion order.
func (s *SQLiteStore) ListStock(ctx context.Context) ([]*Stock, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT stock_id, isbn, shelf_id, quantity FROM stock ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying stock: %w", err)
	}
	defer rows.Close()
	return scanStock(rows)
}

// ListStockByISBN returns stock rows for one title, using idx_stock_isbn.
func (s *SQLiteStore) ListStockByISBN(ctx context.Context, isbn string) ([]*Stock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stock_id, isbn, shelf_id, quantity FROM stock WHERE isbn = ? ORDER BY rowid
	`, isbn)
	if err != nil {
		return nil, fmt.Errorf("querying stock by isbn: %w", err)
	}
	defer rows.Close()
	return scanStock(rows)
}

func scanStock(rows *sql.Rows) ([]*Stock, error) {
	var stock []*Stock
	for rows.Next() {
		var st Stock
		if err := rows.Scan(&st.ID, &st.ISBN, &st.ShelfID, &st.Quantity); err != nil {
			return nil, fmt.Errorf("scanning stock: %w", err)
		}
		stock = append(stock, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock: %w", err)
	}
	return stock, nil
}

// CountStock returns the number of stock rows.
func (s *SQLiteStore) CountStock(ctx context.Context) (int, error) {
	return s.count(ctx, "stock")
}

// TotalStockQuantity returns the sum of quantity over all stock rows.
func (s *SQLiteStore) TotalStockQuantity(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(quantity), 0) FROM stock").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing stock quantity: %w", err)
	}
	return total, nil
}

// AddOutlet inserts a new outlet. Returns ErrConflict if the ID exists.
func (s *SQLiteStore) AddOutlet(ctx context.Context, o *Outlet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outlets (outlet_id, name, address, phone)
		VALUES (?, ?, ?, ?)
	`, o.ID, o.Name, o.Address, o.Phone)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting outlet: %w", err)
	}
	s.logger.Debug("added outlet", "id", o.ID)
	s.notify(CollectionOutlets)
	return nil
}

// GetOutlet retrieves an outlet by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetOutlet(ctx context.Context, id string) (*Outlet, error) {
	var o Outlet
	err := s.db.QueryRowContext(ctx, `
		SELECT outlet_id, name, address, phone FROM outlets WHERE outlet_id = ?
	`, id).Scan(&o.ID, &o.Name, &o.Address, &o.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying outlet: %w", err)
	}
	return &o, nil
}

// UpdateOutlet merges a patch into an existing outlet.
func (s *SQLiteStore) UpdateOutlet(ctx context.Context, id string, p OutletPatch) error {
	o, err := s.GetOutlet(ctx, id)
	if err != nil {
		return err
	}
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Address != nil {
		o.Address = *p.Address
	}
	if p.Phone != nil {
		o.Phone = *p.Phone
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE outlets SET name = ?, address = ?, phone = ? WHERE outlet_id = ?
	`, o.Name, o.Address, o.Phone, id)
	if err != nil {
		return fmt.Errorf("updating outlet: %w", err)
	}
	s.logger.Debug("updated outlet", "id", id)
	s.notify(CollectionOutlets)
	return nil
}

// DeleteOutlet removes an outlet. Deleting an absent ID is a no-op.
func (s *SQLiteStore) DeleteOutlet(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM outlets WHERE outlet_id = ?", id); err != nil {
		return fmt.Errorf("deleting outlet: %w", err)
	}
	s.logger.Debug("deleted outlet", "id", id)
	s.notify(CollectionOutlets)
	return nil
}

// ListOutlets returns all outlets in insertion order.
func (s *SQLiteStore) ListOutlets(ctx context.Context) ([]*Outlet, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT outlet_id, name, address, phone FROM outlets ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying outlets: %w", err)
	}
	defer rows.Close()

	var outlets []*Outlet
	for rows.Next() {
		var o Outlet
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.Phone); err != nil {
			return nil, fmt.Errorf("scanning outlet: %w", err)
		}
		outlets = append(outlets, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outlets: %w", err)
	}
	return outlets, nil
}

// CountOutlets returns the number of outlets.
func (s *SQLiteStore) CountOutlets(ctx context.Context) (int, error) {
	return s.count(ctx, "outlets")
}

// AddDistribution inserts a new distribution. Returns ErrConflict if the ID
// exists.
func (s *SQLiteStore) AddDistribution(ctx context.Context, d *Distribution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO distributions (distribution_id, isbn, outlet_id, quantity, ship_date, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.ISBN, d.OutletID, d.Quantity, d.ShipDate, d.Notes)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting distribution: %w", err)
	}
	s.logger.Debug("added distribution", "id", d.ID, "outlet", d.OutletID)
	s.notify(CollectionDistributions)
	return nil
}

// GetDistribution retrieves a distribution by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetDistribution(ctx context.Context, id string) (*Distribution, error) {
	var d Distribution
	err := s.db.QueryRowContext(ctx, `
		SELECT distribution_id, isbn, outlet_id, quantity, ship_date, notes
		FROM distributions WHERE distribution_id = ?
	`, id).Scan(&d.ID, &d.ISBN, &d.OutletID, &d.Quantity, &d.ShipDate, &d.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying distribution: %w", err)
	}
	return &d, nil
}

// UpdateDistribution merges a patch into an existing distribution.
func (s *SQLiteStore) UpdateDistribution(ctx context.Context, id string, p DistributionPatch) error {
	d, err := s.GetDistribution(ctx, id)
	if err != nil {
		return err
	}
	if p.ISBN != nil {
		d.ISBN = *p.ISBN
	}
	if p.OutletID != nil {
		d.OutletID = *p.OutletID
	}
	if p.Quantity != nil {
		d.Quantity = *p.Quantity
	}
	if p.ShipDate != nil {
		d.ShipDate = *p.ShipDate
	}
	if p.Notes != nil {
		d.Notes = *p.Notes
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE distributions
		SET isbn = ?, outlet_id = ?, quantity = ?, ship_date = ?, notes = ?
		WHERE distribution_id = ?
	`, d.ISBN, d.OutletID, d.Quantity, d.ShipDate, d.Notes, id)
	if err != nil {
		return fmt.Errorf("updating distribution: %w", err)
	}
	s.logger.Debug("updated distribution", "id", id)
	s.notify(CollectionDistributions)
	return nil
}

// DeleteDistribution removes a distribution. Deleting an absent ID is a
// no-op; returns referencing it are left dangling.
func (s *SQLiteStore) DeleteDistribution(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM distributions WHERE distribution_id = ?", id); err != nil {
		return fmt.Errorf("deleting distribution: %w", err)
	}
	s.logger.Debug("deleted distribution", "id", id)
	s.notify(CollectionDistributions)
	return nil
}

// ListDistributions returns all distributions in insertion order.
func (s *SQLiteStore) ListDistributions(ctx context.Context) ([]*Distribution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT distribution_id, isbn, outlet_id, quantity, ship_date, notes
		FROM distributions ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying distributions: %w", err)
	}
	defer rows.Close()
	return scanDistributions(rows)
}

// ListDistributionsByOutlet returns distributions shipped to one outlet,
// using idx_distributions_outlet.
func (s *SQLiteStore) ListDistributionsByOutlet(ctx context.Context, outletID string) ([]*Distribution, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT distribution_id, isbn, outlet_id, quantity, ship_date, notes
		FROM distributions WHERE outlet_id = ? ORDER BY rowid
	`, outletID)
	if err != nil {
		return nil, fmt.Errorf("querying distributions by outlet: %w", err)
	}
	defer rows.Close()
	return scanDistributions(rows)
}

func scanDistributions(rows *sql.Rows) ([]*Distribution, error) {
	var distributions []*Distribution
	for rows.Next() {
		var d Distribution
		if err := rows.Scan(&d.ID, &d.ISBN, &d.OutletID, &d.Quantity, &d.ShipDate, &d.Notes); err != nil {
			return nil, fmt.Errorf("scanning distribution: %w", err)
		}
		distributions = append(distributions, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating distributions: %w", err)
	}
	return distributions, nil
}

// CountDistributions returns the number of distributions.
func (s *SQLiteStore) CountDistributions(ctx context.Context) (int, error) {
	return s.count(ctx, "distributions")
}

// AddReturn inserts a new return. Returns ErrConflict if the ID exists.
func (s *SQLiteStore) AddReturn(ctx context.Context, r *Return) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO returns (return_id, distribution_id, quantity, return_date, condition)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.DistributionID, r.Quantity, r.ReturnDate, r.Condition)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting return: %w", err)
	}
	s.logger.Debug("added return", "id", r.ID)
	s.notify(CollectionReturns)
	return nil
}

// GetReturn retrieves a return by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetReturn(ctx context.Context, id string) (*Return, error) {
	var r Return
	err := s.db.QueryRowContext(ctx, `
		SELECT return_id, distribution_id, quantity, return_date, condition
		FROM returns WHERE return_id = ?
	`, id).Scan(&r.ID, &r.DistributionID, &r.Quantity, &r.ReturnDate, &r.Condition)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying return: %w", err)
	}
	return &r, nil
}

// UpdateReturn merges a patch into an existing return.
func (s *SQLiteStore) UpdateReturn(ctx context.Context, id string, p ReturnPatch) error {
	r, err := s.GetReturn(ctx, id)
	if err != nil {
		return err
	}
	if p.DistributionID != nil {
		r.DistributionID = *p.DistributionID
	}
	if p.Quantity != nil {
		r.Quantity = *p.Quantity
	}
	if p.ReturnDate != nil {
		r.ReturnDate = *p.ReturnDate
	}
	if p.Condition != nil {
		r.Condition = *p.Condition
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE returns
		SET distribution_id = ?, quantity = ?, return_date = ?, condition = ?
		WHERE return_id = ?
	`, r.DistributionID, r.Quantity, r.ReturnDate, r.Condition, id)
	if err != nil {
		return fmt.Errorf("updating return: %w", err)
	}
	s.logger.Debug("updated return", "id", id)
	s.notify(CollectionReturns)
	return nil
}

// DeleteReturn removes a return. Deleting an absent ID is a no-op.
func (s *SQLiteStore) DeleteReturn(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM returns WHERE return_id = ?", id); err != nil {
		return fmt.Errorf("deleting return: %w", err)
	}
	s.logger.Debug("deleted return", "id", id)
	s.notify(CollectionReturns)
	return nil
}

// ListReturns returns all returns in insertion order.
func (s *SQLiteStore) ListReturns(ctx context.Context) ([]*Return, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT return_id, distribution_id, quantity, return_date, condition
		FROM returns ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying returns: %w", err)
	}
	defer rows.Close()

	var returns []*Return
	for rows.Next() {
		var r Return
		if err := rows.Scan(&r.ID, &r.DistributionID, &r.Quantity, &r.ReturnDate, &r.Condition); err != nil {
			return nil, fmt.Errorf("scanning return: %w", err)
		}
		returns = append(returns, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating returns: %w", err)
	}
	return returns, nil
}

// CountReturns returns the number of returns.
func (s *SQLiteStore) CountReturns(ctx context.Context) (int, error) {
	return s.count(ctx, "returns")
}
