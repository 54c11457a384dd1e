// ABOUTME: Store methods for the bibliographic collections
// ABOUTME: Authors, publishers, categories, shelves, and books keyed by ISBN

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddAuthor inserts a new author. Returns ErrConflict if the ID exists.
func (s *SQLiteStore) AddAuthor(ctx context.Context, a *Author) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (author_id, name, country)
		VALUES (?, ?, ?)
	`, a.ID, a.Name, a.Country)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting author: %w", err)
	}
	s.logger.Debug("added author", "id", a.ID)
	s.notify(CollectionAuthors)
	return nil
}

// GetAuthor retrieves an author by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetAuthor(ctx context.Context, id string) (*Author, error) {
	var a Author
	err := s.db.QueryRowContext(ctx, `
		SELECT author_id, name, country FROM authors WHERE author_id = ?
	`, id).Scan(&a.ID, &a.Name, &a.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying author: %w", err)
	}
	return &a, nil
}

// UpdateAuthor merges a patch into an existing author.
// Returns ErrNotFound if the ID is absent.
func (s *SQLiteStore) UpdateAuthor(ctx context.Context, id string, p AuthorPatch) error {
	a, err := s.GetAuthor(ctx, id)
	if err != nil {
		return err
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Country != nil {
		a.Country = *p.Country
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE authors SET name = ?, country = ? WHERE author_id = ?
	`, a.Name, a.Country, id)
	if err != nil {
		return fmt.Errorf("updating author: %w", err)
	}
	s.logger.Debug("updated author", "id", id)
	s.notify(CollectionAuthors)
	return nil
}

// DeleteAuthor removes an author. Deleting an absent ID is a no-op; books
// referencing the author keep their dangling reference.
func (s *SQLiteStore) DeleteAuthor(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM authors WHERE author_id = ?", id); err != nil {
		return fmt.Errorf("deleting author: %w", err)
	}
	s.logger.Debug("deleted author", "id", id)
	s.notify(CollectionAuthors)
	return nil
}

// ListAuthors returns all authors in insertion order.
func (s *SQLiteStore) ListAuthors(ctx context.Context) ([]*Author, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT author_id, name, country FROM authors ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	defer rows.Close()

	var authors []*Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Country); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		authors = append(authors, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating authors: %w", err)
	}
	return authors, nil
}

// CountAuthors returns the number of authors.
func (s *SQLiteStore) CountAuthors(ctx context.Context) (int, error) {
	return s.count(ctx, "authors")
}

// AddPublisher inserts a new publisher. Returns ErrConflict if the ID exists.
func (s *SQLiteStore) AddPublisher(ctx context.Context, p *Publisher) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO publishers (publisher_id, name, address, phone)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Name, p.Address, p.Phone)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting publisher: %w", err)
	}
	s.logger.Debug("added publisher", "id", p.ID)
	s.notify(CollectionPublishers)
	return nil
}

// GetPublisher retrieves a publisher by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetPublisher(ctx context.Context, id string) (*Publisher, error) {
	var p Publisher
	err := s.db.QueryRowContext(ctx, `
		SELECT publisher_id, name, address, phone FROM publishers WHERE publisher_id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Address, &p.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying publisher: %w", err)
	}
	return &p, nil
}

// UpdatePublisher merges a patch into an existing publisher.
func (s *SQLiteStore) UpdatePublisher(ctx context.Context, id string, patch PublisherPatch) error {
	p, err := s.GetPublisher(ctx, id)
	if err != nil {
		return err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE publishers SET name = ?, address = ?, phone = ? WHERE publisher_id = ?
	`, p.Name, p.Address, p.Phone, id)
	if err != nil {
		return fmt.Errorf("updating publisher: %w", err)
	}
	s.logger.Debug("updated publisher", "id", id)
	s.notify(CollectionPublishers)
	return nil
}

// DeletePublisher removes a publisher. Deleting an absent ID is a no-op.
func (s *SQLiteStore) DeletePublisher(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM publishers WHERE publisher_id = ?", id); err != nil {
		return fmt.Errorf("deleting publisher: %w", err)
	}
	s.logger.Debug("deleted publisher", "id", id)
	s.notify(CollectionPublishers)
	return nil
}

// ListPublishers returns all publishers in insertion order.
func (s *SQLiteStore) ListPublishers(ctx context.Context) ([]*Publisher, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT publisher_id, name, address, phone FROM publishers ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying publishers: %w", err)
	}
	defer rows.Close()

	var publishers []*Publisher
	for rows.Next() {
		var p Publisher
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Phone); err != nil {
			return nil, fmt.Errorf("scanning publisher: %w", err)
		}
		publishers = append(publishers, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating publishers: %w", err)
	}
	return publishers, nil
}

// CountPublishers returns the number of publishers.
func (s *SQLiteStore) CountPublishers(ctx context.Context) (int, error) {
	return s.count(ctx, "publishers")
}

// AddCategory inserts a new category. Returns ErrConflict if the ID exists.
func (s *SQLiteStore) AddCategory(ctx context.Context, c *Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (category_id, name, description)
		VALUES (?, ?, ?)
	`, c.ID, c.Name, c.Description)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting category: %w", err)
	}
	s.logger.Debug("added category", "id", c.ID)
	s.notify(CollectionCategories)
	return nil
}

// GetCategory retrieves a category by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*Category, error) {
	var c Category
	err := s.db.QueryRowContext(ctx, `
		SELECT category_id, name, description FROM categories WHERE category_id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying category: %w", err)
	}
	return &c, nil
}

// UpdateCategory merges a patch into an existing category.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, id string, p CategoryPatch) error {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, description = ? WHERE category_id = ?
	`, c.Name, c.Description, id)
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	s.logger.Debug("updated category", "id", id)
	s.notify(CollectionCategories)
	return nil
}

// DeleteCategory removes a category. Deleting an absent ID is a no-op.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE category_id = ?", id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	s.logger.Debug("deleted category", "id", id)
	s.notify(CollectionCategories)
	return nil
}

// ListCategories returns all categories in insertion order.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT category_id, name, description FROM categories ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

// CountCategories returns the number of categories.
func (s *SQLiteStore) CountCategories(ctx context.Context) (int, error) {
	return s.count(ctx, "categories")
}

// AddShelf inserts a new shelf. Returns ErrConflict if the ID exists.
func (s *SQLiteStore) AddShelf(ctx context.Context, sh *Shelf) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shelves (shelf_id, code, location)
		VALUES (?, ?, ?)
	`, sh.ID, sh.Code, sh.Location)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting shelf: %w", err)
	}
	s.logger.Debug("added shelf", "id", sh.ID)
	s.notify(CollectionShelves)
	return nil
}

// GetShelf retrieves a shelf by ID. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetShelf(ctx context.Context, id string) (*Shelf, error) {
	var sh Shelf
	err := s.db.QueryRowContext(ctx, `
		SELECT shelf_id, code, location FROM shelves WHERE shelf_id = ?
	`, id).Scan(&sh.ID, &sh.Code, &sh.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying shelf: %w", err)
	}
	return &sh, nil
}

// UpdateShelf merges a patch into an existing shelf.
func (s *SQLiteStore) UpdateShelf(ctx context.Context, id string, p ShelfPatch) error {
	sh, err := s.GetShelf(ctx, id)
	if err != nil {
		return err
	}
	if p.Code != nil {
		sh.Code = *p.Code
	}
	if p.Location != nil {
		sh.Location = *p.Location
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE shelves SET code = ?, location = ? WHERE shelf_id = ?
	`, sh.Code, sh.Location, id)
	if err != nil {
		return fmt.Errorf("updating shelf: %w", err)
	}
	s.logger.Debug("updated shelf", "id", id)
	s.notify(CollectionShelves)
	return nil
}

// DeleteShelf removes a shelf. Deleting an absent ID is a no-op.
func (s *SQLiteStore) DeleteShelf(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM shelves WHERE shelf_id = ?", id); err != nil {
		return fmt.Errorf("deleting shelf: %w", err)
	}
	s.logger.Debug("deleted shelf", "id", id)
	s.notify(CollectionShelves)
	return nil
}

// ListShelves returns all shelves in insertion order.
func (s *SQLiteStore) ListShelves(ctx context.Context) ([]*Shelf, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT shelf_id, code, location FROM shelves ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying shelves: %w", err)
	}
	defer rows.Close()

	var shelves []*Shelf
	for rows.Next() {
		var sh Shelf
		if err := rows.Scan(&sh.ID, &sh.Code, &sh.Location); err != nil {
			return nil, fmt.Errorf("scanning shelf: %w", err)
		}
		shelves = append(shelves, &sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shelves: %w", err)
	}
	return shelves, nil
}

// CountShelves returns the number of shelves.
func (s *SQLiteStore) CountShelves(ctx context.Context) (int, error) {
	return s.count(ctx, "shelves")
}

// AddBook inserts a new book. Returns ErrConflict if the ISBN exists.
// The author, publisher, and category references are not validated.
func (s *SQLiteStore) AddBook(ctx context.Context, b *Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (isbn, title, author_id, publisher_id, category_id, year_published, price)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.ISBN, b.Title, b.AuthorID, b.PublisherID, b.CategoryID, b.YearPublished, b.Price)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting book: %w", err)
	}
	s.logger.Debug("added book", "isbn", b.ISBN)
	s.notify(CollectionBooks)
	return nil
}

// GetBook retrieves a book by ISBN. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetBook(ctx context.Context, isbn string) (*Book, error) {
	var b Book
	err := s.db.QueryRowContext(ctx, `
		SELECT isbn, title, author_id, publisher_id, category_id, year_published, price
		FROM books WHERE isbn = ?
	`, isbn).Scan(&b.ISBN, &b.Title, &b.AuthorID, &b.PublisherID, &b.CategoryID, &b.YearPublished, &b.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying book: %w", err)
	}
	return &b, nil
}

// UpdateBook merges a patch into an existing book.
// Returns ErrNotFound if the ISBN is absent.
func (s *SQLiteStore) UpdateBook(ctx context.Context, isbn string, p BookPatch) error {
	b, err := s.GetBook(ctx, isbn)
	if err != nil {
		return err
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.AuthorID != nil {
		b.AuthorID = *p.AuthorID
	}
	if p.PublisherID != nil {
		b.PublisherID = *p.PublisherID
	}
	if p.CategoryID != nil {
		b.CategoryID = *p.CategoryID
	}
	if p.YearPublished != nil {
		b.YearPublished = *p.YearPublished
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE books
		SET title = ?, author_id = ?, publisher_id = ?, category_id = ?, year_published = ?, price = ?
		WHERE isbn = ?
	`, b.Title, b.AuthorID, b.PublisherID, b.CategoryID, b.YearPublished, b.Price, isbn)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	s.logger.Debug("updated book", "isbn", isbn)
	s.notify(CollectionBooks)
	return nil
}

// DeleteBook removes a book. Deleting an absent ISBN is a no-op. Stock,
// distribution, and sale rows referencing the ISBN are left dangling.
func (s *SQLiteStore) DeleteBook(ctx context.Context, isbn string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE isbn = ?", isbn); err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	s.logger.Debug("deleted book", "isbn", isbn)
	s.notify(CollectionBooks)
	return nil
}

// ListBooks returns all books in insertion order.
func (s *SQLiteStore) ListBooks(ctx context.Context) ([]*Book, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT isbn, title, author_id, publisher_id, category_id, year_published, price
		FROM books ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

// ListBooksByAuthor returns all books referencing the given author, using
// the idx_books_author index.
func (s *SQLiteStore) ListBooksByAuthor(ctx context.Context, authorID string) ([]*Book, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT isbn, title, author_id, publisher_id, category_id, year_published, price
		FROM books WHERE author_id = ? ORDER BY rowid
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("querying books by author: %w", err)
	}
	defer rows.Close()
	return scanBooks(rows)
}

func scanBooks(rows *sql.Rows) ([]*Book, error) {
	var books []*Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ISBN, &b.Title, &b.AuthorID, &b.PublisherID, &b.CategoryID, &b.YearPublished, &b.Price); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}

// CountBooks returns the number of books.
func (s *SQLiteStore) CountBooks(ctx context.Context) (int, error) {
	return s.count(ctx, "books")
}
