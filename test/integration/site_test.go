// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/solhub/solhub/internal/auth"
	authpg "github.com/solhub/solhub/internal/auth/postgres"
	"github.com/solhub/solhub/internal/catalog"
	catalogpg "github.com/solhub/solhub/internal/catalog/postgres"
	"github.com/solhub/solhub/internal/seed"
	"github.com/solhub/solhub/internal/web"
)

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	base   string
	client *http.Client
}

func newBrowser(base string) *browser {
	jar, err := cookiejar.New(nil)
	Expect(err).NotTo(HaveOccurred())
	return &browser{
		base: base,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	req.Header.Set("User-Agent", "solhub-integration/1.0")
	resp, err := b.client.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	Expect(err).NotTo(HaveOccurred())
	return b.do(req)
}

func (b *browser) token() string {
	u, err := url.Parse(b.base)
	Expect(err).NotTo(HaveOccurred())
	for range 2 {
		for _, c := range b.client.Jar.Cookies(u) {
			if c.Name == "csrf_token" {
				return c.Value
			}
		}
		b.get("/")
	}
	Fail("no csrf cookie issued")
	return ""
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	form.Set("csrf_token", b.token())
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

var _ = Describe("Site", func() {
	var (
		ctx     context.Context
		srv     *httptest.Server
		catSvc  *catalog.Service
		sectors []catalog.Sector
	)

	BeforeEach(func() {
		ctx = context.Background()
		Expect(db.Truncate(ctx)).To(Succeed())

		accounts := authpg.NewAccountRepository(db.Store.Querier())
		authSvc, err := auth.NewService(accounts, auth.NewArgon2idHasher())
		Expect(err).NotTo(HaveOccurred())

		projects := catalogpg.NewProjectRepository(db.Store.Querier())
		sectorRepo := catalogpg.NewSectorRepository(db.Store.Querier())
		catSvc, err = catalog.NewService(projects, sectorRepo)
		Expect(err).NotTo(HaveOccurred())

		data, err := seed.Default()
		Expect(err).NotTo(HaveOccurred())
		_, err = seed.Apply(ctx, data, projects, sectorRepo)
		Expect(err).NotTo(HaveOccurred())

		sectors, err = catSvc.ListSectors(ctx)
		Expect(err).NotTo(HaveOccurred())

		s, err := web.NewServer(authSvc, catSvc, web.Options{
			SessionSecret:  "integration-secret-0123456789abcdef",
			SessionMaxAge:  time.Hour,
			SessionRefresh: 5 * time.Minute,
			Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		Expect(err).NotTo(HaveOccurred())
		srv = httptest.NewServer(s.Handler())
	})

	AfterEach(func() {
		srv.Close()
	})

	sectorID := func(name string) int {
		for _, s := range sectors {
			if s.Name == name {
				return s.ID
			}
		}
		Fail("unknown sector " + name)
		return 0
	}

	Describe("browsing the catalog", func() {
		It("lists the seeded projects", func() {
			resp, body := newBrowser(srv.URL).get("/solutions/projects")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring("Alternative Cement"))
		})

		It("filters by sector id and by sector name", func() {
			b := newBrowser(srv.URL)

			resp, body := b.get("/solutions/projects?sector=" + strconv.Itoa(sectorID("Industry")))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring("Alternative Cement"))

			resp, body = b.get("/solutions/projects?sector=industry")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring("Alternative Cement"))

			resp, _ = b.get("/solutions/projects?sector=no-such-sector")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("renders a single project", func() {
			all, err := catSvc.ListProjects(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).NotTo(BeEmpty())

			resp, body := newBrowser(srv.URL).get("/solutions/projects/" + strconv.Itoa(all[0].ID))
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(all[0].Title))
		})
	})

	Describe("membership", func() {
		It("registers, logs in, records history, and edits the catalog", func() {
			b := newBrowser(srv.URL)

			resp, body := b.post("/register", url.Values{
				"userName":  {"grace"},
				"password":  {"correct horse battery"},
				"password2": {"correct horse battery"},
				"email":     {"grace@example.com"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK), body)

			resp, body = b.post("/register", url.Values{
				"userName":  {"grace"},
				"password":  {"another password"},
				"password2": {"another password"},
				"email":     {"grace2@example.com"},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusConflict), body)

			resp, _ = b.post("/login", url.Values{"userName": {"grace"}, "password": {"wrong"}})
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))

			resp, _ = b.post("/login", url.Values{"userName": {"grace"}, "password": {"correct horse battery"}})
			Expect(resp.StatusCode).To(Equal(http.StatusSeeOther))
			Expect(resp.Header.Get("Location")).To(Equal("/solutions/projects"))

			resp, body = b.get("/userHistory")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring("solhub-integration/1.0"))

			resp, body = b.post("/solutions/addProject", url.Values{
				"title":         {"Green Hydrogen"},
				"summary_short": {"Electrolysis from renewables"},
				"sector_id":     {strconv.Itoa(sectorID("Electricity"))},
			})
			Expect(resp.StatusCode).To(Equal(http.StatusSeeOther), body)

			added, err := catSvc.ListProjectsBySector(ctx, "Electricity")
			Expect(err).NotTo(HaveOccurred())
			var id int
			for _, p := range added {
				if p.Title == "Green Hydrogen" {
					id = p.ID
				}
			}
			Expect(id).NotTo(BeZero())

			resp, _ = b.get("/solutions/deleteProject/" + strconv.Itoa(id))
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))

			resp, _ = b.get("/solutions/deleteProject/" + strconv.Itoa(id) + "?csrf_token=" + b.token())
			Expect(resp.StatusCode).To(Equal(http.StatusFound))

			_, err = catSvc.GetProject(ctx, id)
			Expect(err).To(MatchError(catalog.ErrProjectNotFound))
		})

		It("keeps anonymous visitors out of member pages", func() {
			resp, _ := newBrowser(srv.URL).get("/solutions/addProject")
			Expect(resp.StatusCode).To(Equal(http.StatusFound))
			Expect(resp.Header.Get("Location")).To(Equal("/login"))
		})
	})
})
