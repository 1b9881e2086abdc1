package main

import (
	"context"
	"log/slog"

	"github.com/billfold/billfold/internal/auth"
	authmongo "github.com/billfold/billfold/internal/auth/mongo"
	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/invoice"
	invoicemongo "github.com/billfold/billfold/internal/invoice/mongo"
	"github.com/billfold/billfold/internal/store"
)

// App bundles the wired services a subcommand works with.
type App struct {
	Store    *store.Store
	Auth     *auth.Service
	Accounts *auth.AccountService
	Sessions *auth.SessionRepository
	Invoices *invoice.Service
}

// Close releases the store connection.
func (a *App) Close(ctx context.Context) error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close(ctx)
}

// StoreFactory creates a store from a URI and database name.
// Injectable for tests; defaults to store.New.
type StoreFactory func(ctx context.Context, uri, database string) (*store.Store, error)

// newApp connects the store and wires services. If factory is nil the
// default store constructor is used.
func newApp(ctx context.Context, cfg *config.Config, factory StoreFactory) (*App, error) {
	if factory == nil {
		factory = store.New
	}

	st, err := factory(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return nil, err
	}

	users := authmongo.NewUserRepository(st.Users())
	sessions := auth.NewSessionRepository()
	hasher, err := auth.NewGatedHasher(auth.NewArgon2idHasher(), cfg.Auth.HashConcurrency)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}

	authSvc, err := auth.NewServiceWithLogger(users, sessions, hasher, slog.Default())
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	accounts, err := auth.NewAccountService(users, hasher, slog.Default())
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	invoices, err := invoice.NewServiceWithLogger(invoicemongo.NewInvoiceRepository(st.Invoices()), slog.Default())
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}

	return &App{
		Store:    st,
		Auth:     authSvc,
		Accounts: accounts,
		Sessions: sessions,
		Invoices: invoices,
	}, nil
}
