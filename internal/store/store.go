package store

import (
	"context"
	"errors"

	"sahasatis/backend/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict reports an append that would overwrite an existing entry.
	ErrConflict = errors.New("already exists")
)

// Repository is the persistence boundary of the core: catalog and customer
// reference data plus durable storage for appended transactions. The core
// never chooses the medium; cmd/server wires memory or postgres.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error)

	// AppendTransaction persists one finalized ledger entry. Entries are
	// immutable; there is no update or delete.
	AppendTransaction(ctx context.Context, tx domain.Transaction) error
	// ListTransactions returns every stored entry in append order, used to
	// restore the in-process ledger at startup.
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
