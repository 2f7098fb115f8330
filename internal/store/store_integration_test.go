// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

//go:build integration

package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/solhub/solhub/internal/store"
	"github.com/solhub/solhub/internal/store/storetest"
)

var _ = Describe("Store", Ordered, func() {
	var (
		ctx context.Context
		db  *storetest.Database
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		db, err = storetest.Start(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if db != nil {
			db.Stop(ctx)
		}
	})

	It("answers pings once opened", func() {
		Expect(db.Store.Ping(ctx)).To(Succeed())
	})

	It("reports the latest migration version", func() {
		migrator, err := store.NewMigrator(db.URL)
		Expect(err).NotTo(HaveOccurred())
		defer migrator.Close()

		versions, err := store.MigrationVersions()
		Expect(err).NotTo(HaveOccurred())

		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(version).To(Equal(versions[len(versions)-1]))

		pending, err := migrator.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())
	})

	It("rolls back and reapplies one step", func() {
		migrator, err := store.NewMigrator(db.URL)
		Expect(err).NotTo(HaveOccurred())
		defer migrator.Close()

		before, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())

		Expect(migrator.Steps(-1)).To(Succeed())
		after, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(after).To(Equal(before - 1))

		Expect(migrator.Steps(1)).To(Succeed())
		after, _, err = migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(after).To(Equal(before))
	})

	It("stops answering pings after Close", func() {
		closed, err := store.Open(ctx, db.URL, store.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		closed.Close()
		Expect(closed.Ping(ctx)).NotTo(Succeed())
	})
})
