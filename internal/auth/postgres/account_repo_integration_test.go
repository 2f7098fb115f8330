// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/solhub/solhub/internal/auth"
	"github.com/solhub/solhub/internal/auth/postgres"
)

var _ = Describe("AccountRepository", func() {
	var (
		ctx  context.Context
		repo *postgres.AccountRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(testDB.Truncate(ctx)).To(Succeed())
		repo = postgres.NewAccountRepository(testDB.Store.Pool())
	})

	mustAccount := func(identifier string) *auth.Account {
		account, err := auth.NewAccount(identifier, "$argon2id$hash", map[string]string{"email": identifier + "@example.com"})
		Expect(err).NotTo(HaveOccurred())
		return account
	}

	It("round-trips an account", func() {
		account := mustAccount("alice")
		Expect(repo.Create(ctx, account)).To(Succeed())

		stored, err := repo.GetByIdentifier(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.ID).To(Equal(account.ID))
		Expect(stored.PasswordHash).To(Equal("$argon2id$hash"))
		Expect(stored.Profile).To(HaveKeyWithValue("email", "alice@example.com"))
		Expect(stored.LoginHistory).To(BeEmpty())
	})

	It("treats identifiers case-sensitively", func() {
		Expect(repo.Create(ctx, mustAccount("alice"))).To(Succeed())
		Expect(repo.Create(ctx, mustAccount("Alice"))).To(Succeed())

		_, err := repo.GetByIdentifier(ctx, "ALICE")
		Expect(err).To(MatchError(auth.ErrNotFound))
	})

	It("rejects a second account with the same identifier", func() {
		Expect(repo.Create(ctx, mustAccount("bob"))).To(Succeed())
		err := repo.Create(ctx, mustAccount("bob"))
		Expect(err).To(MatchError(auth.ErrDuplicateIdentifier))
	})

	It("lets exactly one of many concurrent creates win", func() {
		const workers = 8
		errs := make([]error, workers)

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := range workers {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				<-start
				errs[i] = repo.Create(ctx, mustAccount("carol"))
			}()
		}
		close(start)
		wg.Wait()

		var ok, dup int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, auth.ErrDuplicateIdentifier):
				dup++
			default:
				Fail(fmt.Sprintf("unexpected error: %v", err))
			}
		}
		Expect(ok).To(Equal(1))
		Expect(dup).To(Equal(workers - 1))

		var count int
		Expect(testDB.Store.Pool().QueryRow(ctx,
			`SELECT count(*) FROM accounts WHERE identifier = 'carol'`).Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))
	})

	It("replaces login history wholesale", func() {
		Expect(repo.Create(ctx, mustAccount("dave"))).To(Succeed())

		history := []auth.LoginEvent{}
		for i := range auth.MaxLoginHistory + 1 {
			history = auth.AppendLoginEvent(history, auth.LoginEvent{
				Timestamp:  time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC),
				AgentLabel: fmt.Sprintf("ua%d", i),
			})
			Expect(repo.ReplaceLoginHistory(ctx, "dave", history)).To(Succeed())
		}

		stored, err := repo.GetByIdentifier(ctx, "dave")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.LoginHistory).To(HaveLen(auth.MaxLoginHistory))
		Expect(stored.LoginHistory[0].AgentLabel).To(Equal("ua8"))
		Expect(stored.LoginHistory[auth.MaxLoginHistory-1].AgentLabel).To(Equal("ua1"))
		Expect(stored.LoginHistory[0].Timestamp.Equal(history[0].Timestamp)).To(BeTrue())
	})

	It("reports not found when replacing history of an unknown account", func() {
		err := repo.ReplaceLoginHistory(ctx, "nobody", nil)
		Expect(err).To(MatchError(auth.ErrNotFound))
	})

	It("runs the full service flow against postgres", func() {
		svc, err := auth.NewService(repo, auth.NewArgon2idHasher())
		Expect(err).NotTo(HaveOccurred())

		Expect(svc.Register(ctx, auth.RegisterRequest{
			Identifier: "erin", Password: "secret1", PasswordConfirmation: "secret1",
		})).To(Succeed())

		user, err := svc.Authenticate(ctx, "erin", "secret1", "curl/8.0")
		Expect(err).NotTo(HaveOccurred())
		Expect(user.LoginHistory).To(HaveLen(1))

		err = svc.Register(ctx, auth.RegisterRequest{
			Identifier: "erin", Password: "x", PasswordConfirmation: "x",
		})
		Expect(err).To(MatchError(auth.ErrIdentifierTaken))
	})
})
