// ABOUTME: Store methods for the direct-sale collections
// ABOUTME: Customers and per-sale records referencing customer and ISBN

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddCustomer inserts a new customer. Returns ErrConflict if the ID exists.
func (s *SQLiteStore) AddCustomer(ctx context.Context, c *Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (customer_id, name, address, phone, email)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Address, c.Phone, c.Email)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting customer: %w", err)
	}
	s.logger.Debug("added customer", "id", c.ID)
	s.notify(CollectionCustomers)
	return nil
}

// GetCustomer retrieves a customer by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT customer_id, name, address, phone, email FROM customers WHERE customer_id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer: %w", err)
	}
	return &c, nil
}

// UpdateCustomer merges a patch into an existing customer.
func (s *SQLiteStore) UpdateCustomer(ctx context.Context, id string, p CustomerPatch) error {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE customers SET name = ?, address = ?, phone = ?, email = ? WHERE customer_id = ?
	`, c.Name, c.Address, c.Phone, c.Email, id)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}
	s.logger.Debug("updated customer", "id", id)
	s.notify(CollectionCustomers)
	return nil
}

// DeleteCustomer removes a customer. Deleting an absent ID is a no-op.
func (s *SQLiteStore) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM customers WHERE customer_id = ?", id); err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}
	s.logger.Debug("deleted customer", "id", id)
	s.notify(CollectionCustomers)
	return nil
}

// ListCustomers returns all customers in insertion order.
func (s *SQLiteStore) ListCustomers(ctx context.Context) ([]*Customer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT customer_id, name, address, phone, email FROM customers ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Email); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		customers = append(customers, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}
	return customers, nil
}

// CountCustomers returns the number of customers.
func (s *SQLiteStore) CountCustomers(ctx context.Context) (int, error) {
	return s.count(ctx, "customers")
}

// AddSale inserts a new sale. Returns ErrConflict if the ID exists. No stock
// decrement happens here; a sale and its stock adjustment are independent
// writes with no atomicity between them.
func (s *SQLiteStore) AddSale(ctx context.Context, sale *Sale) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (sale_id, customer_id, isbn, quantity, sale_date, total_price, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sale.ID, sale.CustomerID, sale.ISBN, sale.Quantity, sale.SaleDate, sale.TotalPrice, sale.Notes)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting sale: %w", err)
	}
	s.logger.Debug("added sale", "id", sale.ID, "customer", sale.CustomerID)
	s.notify(CollectionSales)
	return nil
}

// GetSale retrieves a sale by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetSale(ctx context.Context, id string) (*Sale, error) {
	var sale Sale
	err := s.db.QueryRowContext(ctx, `
		SELECT sale_id, customer_id, isbn, quantity, sale_date, total_price, notes
		FROM sales WHERE sale_id = ?
	`, id).Scan(&sale.ID, &sale.CustomerID, &sale.ISBN, &sale.Quantity, &sale.SaleDate, &sale.TotalPrice, &sale.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying sale: %w", err)
	}
	return &sale, nil
}

// UpdateSale merges a patch into an existing sale.
func (s *SQLiteStore) UpdateSale(ctx context.Context, id string, p SalePatch) error {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return err
	}
	if p.CustomerID != nil {
		sale.CustomerID = *p.CustomerID
	}
	if p.ISBN != nil {
		sale.ISBN = *p.ISBN
	}
	if p.Quantity != nil {
		sale.Quantity = *p.Quantity
	}
	if p.SaleDate != nil {
		sale.SaleDate = *p.SaleDate
	}
	if p.TotalPrice != nil {
		sale.TotalPrice = *p.TotalPrice
	}
	if p.Notes != nil {
		sale.Notes = *p.Notes
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE sales
		SET customer_id = ?, isbn = ?, quantity = ?, sale_date = ?, total_price = ?, notes = ?
		WHERE sale_id = ?
	`, sale.CustomerID, sale.ISBN, sale.Quantity, sale.SaleDate, sale.TotalPrice, sale.Notes, id)
	if err != nil {
		return fmt.Errorf("updating sale: %w", err)
	}
	s.logger.Debug("updated sale", "id", id)
	s.notify(CollectionSales)
	return nil
}

// DeleteSale removes a sale. Deleting an absent ID is a no-op.
func (s *SQLiteStore) DeleteSale(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sales WHERE sale_id = ?", id); err != nil {
		return fmt.Errorf("deleting sale: %w", err)
	}
	s.logger.Debug("deleted sale", "id", id)
	s.notify(CollectionSales)
	return nil
}

// ListSales returns all sales in insertion order.
func (s *SQLiteStore) ListSales(ctx context.Context) ([]*Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, customer_id, isbn, quantity, sale_date, total_price, notes
		FROM sales ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sales: %w", err)
	}
	defer rows.Close()
	return scanSales(rows)
}

// ListSalesByCustomer returns sales for one customer, using idx_sales_customer.
func (s *SQLiteStore) ListSalesByCustomer(ctx context.Context, customerID string) ([]*Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, customer_id, isbn, quantity, sale_date, total_price, notes
		FROM sales WHERE customer_id = ? ORDER BY rowid
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("querying sales by customer: %w", err)
	}
	defer rows.Close()
	return scanSales(rows)
}

func scanSales(rows *sql.Rows) ([]*Sale, error) {
	var sales []*Sale
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.CustomerID, &sale.ISBN, &sale.Quantity, &sale.SaleDate, &sale.TotalPrice, &sale.Notes); err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}
		sales = append(sales, &sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sales: %w", err)
	}
	return sales, nil
}

// CountSales returns the number of sales.
func (s *SQLiteStore) CountSales(ctx context.Context) (int, error) {
	return s.count(ctx, "sales")
}
