// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

//go:build integration

package cli_test

import (
	"context"
	"os/exec"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

func solhub(ctx context.Context, environ []string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "go", append([]string{"run", "."}, args...)...)
	cmd.Dir = cliDir
	cmd.Env = environ
	return cmd
}

var _ = Describe("Seed Command", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		cleanupDatabase(ctx, env.pool)
	})

	Describe("Catalog seeding", func() {
		It("migrates and loads the starter sectors and projects", func() {
			output, err := solhub(ctx, env.commandEnv("DATABASE_URL="+env.connStr), "seed").CombinedOutput()
			Expect(err).NotTo(HaveOccurred(), "seed command failed: %s", string(output))
			Expect(string(output)).To(ContainSubstring("Migrations completed successfully"))
			Expect(string(output)).To(ContainSubstring("Sectors: 5 created"))
			Expect(string(output)).To(ContainSubstring("Projects: 6 created"))

			var sectors, projects int
			Expect(env.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sectors").Scan(&sectors)).To(Succeed())
			Expect(env.pool.QueryRow(ctx, "SELECT COUNT(*) FROM projects").Scan(&projects)).To(Succeed())
			Expect(sectors).To(Equal(5))
			Expect(projects).To(Equal(6))
		})

		It("is idempotent (running twice succeeds without duplicates)", func() {
			output1, err := solhub(ctx, env.commandEnv("DATABASE_URL="+env.connStr), "seed").CombinedOutput()
			Expect(err).NotTo(HaveOccurred(), "first seed failed: %s", string(output1))

			output2, err := solhub(ctx, env.commandEnv("DATABASE_URL="+env.connStr), "seed").CombinedOutput()
			Expect(err).NotTo(HaveOccurred(), "second seed failed: %s", string(output2))
			Expect(string(output2)).To(ContainSubstring("No pending migrations"))
			Expect(string(output2)).To(ContainSubstring("Projects: 0 created, 6 already present"))

			var count int
			Expect(env.pool.QueryRow(ctx, "SELECT COUNT(*) FROM projects").Scan(&count)).To(Succeed())
			Expect(count).To(Equal(6))
		})

		It("links every project to its named sector", func() {
			output, err := solhub(ctx, env.commandEnv("DATABASE_URL="+env.connStr), "seed").CombinedOutput()
			Expect(err).NotTo(HaveOccurred(), "seed command failed: %s", string(output))

			var sector string
			err = env.pool.QueryRow(ctx,
				`SELECT s.sector_name FROM projects p JOIN sectors s ON s.id = p.sector_id WHERE p.title = $1`,
				"Alternative Cement",
			).Scan(&sector)
			Expect(err).NotTo(HaveOccurred())
			Expect(sector).To(Equal("Industry"))
		})
	})

	Describe("Migrate command", func() {
		It("reports the schema version after migrating", func() {
			output, err := solhub(ctx, env.commandEnv("DATABASE_URL="+env.connStr), "migrate", "up").CombinedOutput()
			Expect(err).NotTo(HaveOccurred(), "migrate failed: %s", string(output))

			output, err = solhub(ctx, env.commandEnv("DATABASE_URL="+env.connStr), "migrate", "version").CombinedOutput()
			Expect(err).NotTo(HaveOccurred(), "migrate version failed: %s", string(output))
			Expect(string(output)).To(ContainSubstring("000002_catalog"))
		})
	})

	Describe("Error handling", func() {
		It("fails with CONFIG_INVALID when DATABASE_URL is missing", func() {
			output, err := solhub(ctx, env.commandEnv(), "seed").CombinedOutput()
			Expect(err).To(HaveOccurred())
			Expect(string(output)).To(ContainSubstring("DATABASE_URL"))
		})
	})
})
