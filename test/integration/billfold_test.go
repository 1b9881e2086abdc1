// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

//go:build integration

package integration

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/billfold/billfold/internal/auth"
	authmongo "github.com/billfold/billfold/internal/auth/mongo"
	"github.com/billfold/billfold/internal/invoice"
	invoicemongo "github.com/billfold/billfold/internal/invoice/mongo"
	"github.com/billfold/billfold/internal/store"
)

// testEnv holds the resources shared by the integration specs.
type testEnv struct {
	ctx       context.Context
	cancel    context.CancelFunc
	container *mongodb.MongoDBContainer
	store     *store.Store
	accounts  *auth.AccountService
	login     *auth.Service
	sessions  *auth.SessionRepository
	invoices  *invoice.Service
}

func setupTestEnv() (*testEnv, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

	env := &testEnv{ctx: ctx, cancel: cancel}

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		cancel()
		return nil, err
	}
	env.container = container

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		env.teardown()
		return nil, err
	}

	st, err := store.New(ctx, uri, "billfold_test")
	if err != nil {
		env.teardown()
		return nil, err
	}
	env.store = st

	users := authmongo.NewUserRepository(st.Users())
	hasher := auth.NewArgon2idHasher()
	env.sessions = auth.NewSessionRepository()

	env.accounts, err = auth.NewAccountService(users, hasher, nil)
	if err == nil {
		env.login, err = auth.NewService(users, env.sessions, hasher)
	}
	if err == nil {
		env.invoices, err = invoice.NewService(invoicemongo.NewInvoiceRepository(st.Invoices()))
	}
	if err != nil {
		env.teardown()
		return nil, err
	}

	return env, nil
}

func (env *testEnv) teardown() {
	if env.store != nil {
		_ = env.store.Close(env.ctx)
	}
	if env.container != nil {
		_ = env.container.Terminate(context.Background())
	}
	env.cancel()
}

var _ = Describe("Billfold", Ordered, func() {
	var env *testEnv

	BeforeAll(func() {
		var err error
		env, err = setupTestEnv()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		env.teardown()
	})

	Describe("account lifecycle", func() {
		var userID string

		It("registers an account", func() {
			var err error
			userID, err = env.accounts.Register(env.ctx, auth.NewUserParams{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "secret123",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(userID).NotTo(BeEmpty())
		})

		It("rejects a duplicate email", func() {
			_, err := env.accounts.Register(env.ctx, auth.NewUserParams{
				Username: "alice2",
				Email:    "alice@example.com",
				Password: "secret123",
			})
			Expect(err).To(MatchError(auth.ErrEmailTaken))
		})

		It("logs in by username and validates the session", func() {
			resp, err := env.login.Login(env.ctx, "alice", "secret123")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Token).NotTo(BeEmpty())

			data, err := env.sessions.Validate(resp.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(data.UserID).To(Equal(userID))
			Expect(data.Exp.Unix()).To(Equal(resp.Exp))
		})

		It("logs in by email", func() {
			resp, err := env.login.Login(env.ctx, "alice@example.com", "secret123")
			Expect(err).NotTo(HaveOccurred())

			data, err := env.sessions.Validate(resp.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(data.UserID).To(Equal(userID))
		})

		It("rejects a wrong password the same way as an unknown user", func() {
			_, errMismatch := env.login.Login(env.ctx, "alice", "wrongpass")
			_, errUnknown := env.login.Login(env.ctx, "nobody", "wrongpass")

			Expect(errMismatch).To(MatchError(auth.ErrInvalidCredentials))
			Expect(errUnknown).To(MatchError(auth.ErrInvalidCredentials))
			Expect(errMismatch.Error()).To(Equal(errUnknown.Error()))
		})

		It("updates the password and keeps it usable", func() {
			modified, err := env.accounts.Update(env.ctx, userID, auth.UpdateAccountParams{
				Password: "newsecret",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(modified).To(BeTrue())

			_, err = env.login.Login(env.ctx, "alice", "secret123")
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))

			_, err = env.login.Login(env.ctx, "alice", "newsecret")
			Expect(err).NotTo(HaveOccurred())
		})

		It("reads the account without exposing the hash over JSON", func() {
			user, err := env.accounts.Get(env.ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Username).To(Equal("alice"))
			Expect(user.PasswordHash).To(HavePrefix("$argon2id$"))
		})

		It("deletes the account but keeps issued sessions valid", func() {
			resp, err := env.login.Login(env.ctx, "alice", "newsecret")
			Expect(err).NotTo(HaveOccurred())

			deleted, err := env.accounts.Delete(env.ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeTrue())

			_, err = env.login.Login(env.ctx, "alice", "newsecret")
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))

			data, err := env.sessions.Validate(resp.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(data.UserID).To(Equal(userID))
		})
	})

	Describe("invoice lifecycle", func() {
		var (
			userID    string
			invoiceID string
		)

		BeforeAll(func() {
			var err error
			userID, err = env.accounts.Register(env.ctx, auth.NewUserParams{
				Username: "bob",
				Email:    "bob@example.com",
				Password: "secret123",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("creates an invoice with defaults applied", func() {
			inv, err := env.invoices.Create(env.ctx, invoice.NewInvoiceParams{
				UserID: userID,
				Items: []invoice.OrderItem{
					{Quantity: 2, Item: invoice.Item{Name: "Widget", PriceInCent: 500}},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Number).NotTo(BeEmpty())
			Expect(inv.Status).To(Equal(invoice.StatusOpen))
			Expect(inv.TaxRate).To(Equal(invoice.DefaultTaxRate))
			invoiceID = inv.ID.Hex()
		})

		It("reads the invoice back", func() {
			inv, err := env.invoices.Get(env.ctx, invoiceID)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.UserID).To(Equal(userID))
			Expect(inv.TotalInCent()).To(Equal(int64(1150)))
		})

		It("marks the invoice paid", func() {
			err := env.invoices.Update(env.ctx, invoiceID, invoice.Update{Status: invoice.StatusPaid})
			Expect(err).NotTo(HaveOccurred())

			inv, err := env.invoices.Get(env.ctx, invoiceID)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Status).To(Equal(invoice.StatusPaid))
		})

		It("deletes the invoice", func() {
			Expect(env.invoices.Delete(env.ctx, invoiceID)).To(Succeed())

			_, err := env.invoices.Get(env.ctx, invoiceID)
			Expect(err).To(MatchError(invoice.ErrNotFound))
		})
	})

	Describe("store health", func() {
		It("reports healthy while connected", func() {
			Expect(env.store.Health(env.ctx)).To(Succeed())
		})
	})
})
