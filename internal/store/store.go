// ABOUTME: Entity types, patch types, and store interfaces for pressbook persistence
// ABOUTME: Declares the thirteen collections and their primary-key/foreign-key shape

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert collides with an existing primary key.
var ErrConflict = errors.New("duplicate key")

// ErrStorageUnavailable is returned when the underlying database cannot be
// opened or initialized.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ValidationError reports a required field missing from a record. The store
// itself does not validate field contents; this is raised at the command
// boundary before a write is issued.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field missing: %s", e.Field)
}

// Collection names, as reported to the change listener after every mutation.
const (
	CollectionAuthors       = "authors"
	CollectionPublishers    = "publishers"
	CollectionCategories    = "categories"
	CollectionShelves       = "shelves"
	CollectionBooks         = "books"
	CollectionStock         = "stock"
	CollectionOutlets       = "outlets"
	CollectionDistributions = "distributions"
	CollectionReturns       = "returns"
	CollectionCustomers     = "customers"
	CollectionSales         = "sales"
	CollectionAccounts      = "accounts"
	CollectionActivityLog   = "activity_log"
)

// Author is a book author.
type Author struct {
	ID      string
	Name    string
	Country string
}

// AuthorPatch updates a subset of Author fields. A nil field is left
// untouched; a non-nil field overwrites, including a pointer to "".
type AuthorPatch struct {
	Name    *string
	Country *string
}

// Publisher is a publishing house.
type Publisher struct {
	ID      string
	Name    string
	Address string
	Phone   string
}

// PublisherPatch updates a subset of Publisher fields.
type PublisherPatch struct {
	Name    *string
	Address *string
	Phone   *string
}

// Category is a book category.
type Category struct {
	ID          string
	Name        string
	Description string
}

// CategoryPatch updates a subset of Category fields.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// Shelf is a physical storage shelf in the warehouse.
type Shelf struct {
	ID       string
	Code     string
	Location string
}

// ShelfPatch updates a subset of Shelf fields.
type ShelfPatch struct {
	Code     *string
	Location *string
}

// Book is a published title, keyed by ISBN. The author, publisher, and
// category references are not enforced by the store; a dangling reference
// resolves to a placeholder at display time.
type Book struct {
	ISBN          string
	Title         string
	AuthorID      string
	PublisherID   string
	CategoryID    string
	YearPublished int
	Price         int64
}

// BookPatch updates a subset of Book fields.
type BookPatch struct {
	Title         *string
	AuthorID      *string
	PublisherID   *string
	CategoryID    *string
	YearPublished *int
	Price         *int64
}

// Stock is an inventory row: a quantity of one title on one shelf.
type Stock struct {
	ID       string
	ISBN     string
	ShelfID  string
	Quantity int
}

// StockPatch updates a subset of Stock fields.
type StockPatch struct {
	ISBN     *string
	ShelfID  *string
	Quantity *int
}

// Outlet is a distribution outlet (a store, in the retail sense).
type Outlet struct {
	ID      string
	Name    string
	Address string
	Phone   string
}

// OutletPatch updates a subset of Outlet fields.
type OutletPatch struct {
	Name    *string
	Address *string
	Phone   *string
}

// Distribution records a shipment of one title to one outlet.
// ShipDate is a calendar date in YYYY-MM-DD form.
type Distribution struct {
	ID       string
	ISBN     string
	OutletID string
	Quantity int
	ShipDate string
	Notes    string
}

// DistributionPatch updates a subset of Distribution fields.
type DistributionPatch struct {
	ISBN     *string
	OutletID *string
	Quantity *int
	ShipDate *string
	Notes    *string
}

// Return records books sent back from a distribution.
type Return struct {
	ID             string
	DistributionID string
	Quantity       int
	ReturnDate     string
	Condition      string
}

// ReturnPatch updates a subset of Return fields.
type ReturnPatch struct {
	DistributionID *string
	Quantity       *int
	ReturnDate     *string
	Condition      *string
}

// Customer is a direct-sale customer.
type Customer struct {
	ID      string
	Name    string
	Address string
	Phone   string
	Email   string
}

// CustomerPatch updates a subset of Customer fields.
type CustomerPatch struct {
	Name    *string
	Address *string
	Phone   *string
	Email   *string
}

// Sale records a direct sale of one title to one customer.
type Sale struct {
	ID         string
	CustomerID string
	ISBN       string
	Quantity   int
	SaleDate   string
	TotalPrice int64
	Notes      string
}

// SalePatch updates a subset of Sale fields.
type SalePatch struct {
	CustomerID *string
	ISBN       *string
	Quantity   *int
	SaleDate   *string
	TotalPrice *int64
	Notes      *string
}

// Account is a login account, keyed by username. The credential is stored
// in plain text; that is a documented property of this design, not an
// oversight to be patched here.
type Account struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// AccountPatch updates a subset of Account fields.
type AccountPatch struct {
	Password    *string
	Role        *string
	DisplayName *string
}

// ActivityEntry is one row of the append-only activity log.
type ActivityEntry struct {
	ID        string
	Username  string
	Activity  string
	Timestamp time.Time
}

// ChangeListener receives the name of a collection after every successful
// mutation against it. Registered once at startup by the live query layer.
type ChangeListener interface {
	CollectionChanged(collection string)
}

// CatalogStore holds the bibliographic collections.
type CatalogStore interface {
	AddAuthor(ctx context.Context, a *Author) error
	GetAuthor(ctx context.Context, id string) (*Author, error)
	UpdateAuthor(ctx context.Context, id string, p AuthorPatch) error
	DeleteAuthor(ctx context.Context, id string) error
	ListAuthors(ctx context.Context) ([]*Author, error)
	CountAuthors(ctx context.Context) (int, error)

	AddPublisher(ctx context.Context, p *Publisher) error
	GetPublisher(ctx context.Context, id string) (*Publisher, error)
	UpdatePublisher(ctx context.Context, id string, p PublisherPatch) error
	DeletePublisher(ctx context.Context, id string) error
	ListPublishers(ctx context.Context) ([]*Publisher, error)
	CountPublishers(ctx context.Context) (int, error)

	AddCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	UpdateCategory(ctx context.Context, id string, p CategoryPatch) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]*Category, error)
	CountCategories(ctx context.Context) (int, error)

	AddShelf(ctx context.Context, s *Shelf) error
	GetShelf(ctx context.Context, id string) (*Shelf, error)
	UpdateShelf(ctx context.Context, id string, p ShelfPatch) error
	DeleteShelf(ctx context.Context, id string) error
	ListShelves(ctx context.Context) ([]*Shelf, error)
	CountShelves(ctx context.Context) (int, error)

	AddBook(ctx context.Context, b *Book) error
	GetBook(ctx context.Context, isbn string) (*Book, error)
	UpdateBook(ctx context.Context, isbn string, p BookPatch) error
	DeleteBook(ctx context.Context, isbn string) error
	ListBooks(ctx context.Context) ([]*Book, error)
	ListBooksByAuthor(ctx context.Context, authorID string) ([]*Book, error)
	CountBooks(ctx context.Context) (int, error)
}

// InventoryStore holds stock and distribution collections.
type InventoryStore interface {
	AddStock(ctx context.Context, s *Stock) error
	GetStock(ctx context.Context, id string) (*Stock, error)
	UpdateStock(ctx context.Context, id string, p StockPatch) error
	DeleteStock(ctx context.Context, id string) error
	ListStock(ctx context.Context) ([]*Stock, error)
	ListStockByISBN(ctx context.Context, isbn string) ([]*Stock, error)
	CountStock(ctx context.Context) (int, error)
	TotalStockQuantity(ctx context.Context) (int, error)

	AddOutlet(ctx context.Context, o *Outlet) error
	GetOutlet(ctx context.Context, id string) (*Outlet, error)
	UpdateOutlet(ctx context.Context, id string, p OutletPatch) error
	DeleteOutlet(ctx context.Context, id string) error
	ListOutlets(ctx context.Context) ([]*Outlet, error)
	CountOutlets(ctx context.Context) (int, error)

	AddDistribution(ctx context.Context, d *Distribution) error
	GetDistribution(ctx context.Context, id string) (*Distribution, error)
	UpdateDistribution(ctx context.Context, id string, p DistributionPatch) error
	DeleteDistribution(ctx context.Context, id string) error
	ListDistributions(ctx context.Context) ([]*Distribution, error)
	ListDistributionsByOutlet(ctx context.Context, outletID string) ([]*Distribution, error)
	CountDistributions(ctx context.Context) (int, error)

	AddReturn(ctx context.Context, r *Return) error
	GetReturn(ctx context.Context, id string) (*Return, error)
	UpdateReturn(ctx context.Context, id string, p ReturnPatch) error
	DeleteReturn(ctx context.Context, id string) error
	ListReturns(ctx context.Context) ([]*Return, error)
	CountReturns(ctx context.Context) (int, error)
}

// SalesStore holds customer and sale collections.
type SalesStore interface {
	AddCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	UpdateCustomer(ctx context.Context, id string, p CustomerPatch) error
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context) ([]*Customer, error)
	CountCustomers(ctx context.Context) (int, error)

	AddSale(ctx context.Context, s *Sale) error
	GetSale(ctx context.Context, id string) (*Sale, error)
	UpdateSale(ctx context.Context, id string, p SalePatch) error
	DeleteSale(ctx context.Context, id string) error
	ListSales(ctx context.Context) ([]*Sale, error)
	ListSalesByCustomer(ctx context.Context, customerID string) ([]*Sale, error)
	CountSales(ctx context.Context) (int, error)
}

// AccountStore holds login accounts.
type AccountStore interface {
	AddAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, username string) (*Account, error)
	UpdateAccount(ctx context.Context, username string, p AccountPatch) error
	DeleteAccount(ctx context.Context, username string) error
	ListAccounts(ctx context.Context) ([]*Account, error)
	CountAccounts(ctx context.Context) (int, error)
}

// ActivityStore is the append-only audit trail.
type ActivityStore interface {
	AppendActivity(ctx context.Context, e *ActivityEntry) error
	ListActivity(ctx context.Context, limit int) ([]*ActivityEntry, error)
	ListActivityByUsername(ctx context.Context, username string, limit int) ([]*ActivityEntry, error)
	CountActivity(ctx context.Context) (int, error)
}

// StateStore is a durable key/value slot, used for the session mirror.
type StateStore interface {
	PutState(ctx context.Context, key string, value []byte) error
	GetState(ctx context.Context, key string) ([]byte, error)
	DeleteState(ctx context.Context, key string) error
}
