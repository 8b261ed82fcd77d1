package web

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/agrosoja/agrosoja/internal/auth"
	"github.com/agrosoja/agrosoja/internal/catalog"
	"github.com/agrosoja/agrosoja/internal/clock"
	"github.com/agrosoja/agrosoja/internal/db"
	"github.com/agrosoja/agrosoja/internal/docstore"
	"github.com/agrosoja/agrosoja/internal/gallery"
	"github.com/agrosoja/agrosoja/internal/imaging"
	"github.com/agrosoja/agrosoja/internal/media"
	"github.com/agrosoja/agrosoja/internal/model"
	"github.com/agrosoja/agrosoja/internal/store"
)

type testEnv struct {
	server  *httptest.Server
	catalog *catalog.Service
	client  *http.Client
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	return setupTestServerWithPolicy(t, gallery.DefaultPolicy)
}

func setupTestServerWithPolicy(t *testing.T, policy gallery.PageSizePolicy) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	c := clock.Real{}
	local := media.NewLocal(database)
	cat := catalog.NewService(docstore.NewSQLStore(database, c), local, imaging.Options{})

	router, err := NewRouter(Deps{
		DB:       database,
		Auth:     auth.NewService(database, "test-secret", c),
		Catalog:  cat,
		Media:    local,
		PageSize: policy,
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	hash, _ := bcrypt.GenerateFromPassword([]byte("colheita2024"), bcrypt.MinCost)
	if _, err := store.CreateUser(context.Background(), database, "admin@agro.com", string(hash)); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{server: server, catalog: cat, client: client}
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	resp.Body.Close()
	return resp
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	resp := e.postForm(t, "/admin/login", url.Values{"email": {"admin@agro.com"}, "password": {"colheita2024"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login: expected 303, got %d", resp.StatusCode)
	}
}

func seedProducts(t *testing.T, cat *catalog.Service, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		category := model.CategoryGrains
		if i%2 == 1 {
			category = model.CategoryPlanted
		}
		_, err := cat.CreateProduct(context.Background(), catalog.ProductInput{
			Title:    "Produto " + string(rune('A'+i)),
			Category: category,
		})
		if err != nil {
			t.Fatalf("CreateProduct: %v", err)
		}
	}
}

func countCards(body string) int {
	return strings.Count(body, `class="card fade-in"`)
}

func TestLandingPagination(t *testing.T) {
	env := setupTestServer(t)
	seedProducts(t, env.catalog, 7)

	status, body := env.get(t, "/")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if n := countCards(body); n != 6 {
		t.Errorf("expected 6 cards on the first page, got %d", n)
	}
	if !strings.Contains(body, "Próxima") {
		t.Error("expected a next page link")
	}

	_, body = env.get(t, "/?page=1")
	if n := countCards(body); n != 1 {
		t.Errorf("expected 1 card on the second page, got %d", n)
	}

	_, body = env.get(t, "/?filter=plantada&page=1")
	if n := countCards(body); n != 3 {
		t.Errorf("expected stranded page to fall back to 3 planted cards, got %d", n)
	}
}

func TestLandingNarrowViewport(t *testing.T) {
	env := setupTestServer(t)
	seedProducts(t, env.catalog, 3)

	u, _ := url.Parse(env.server.URL)
	env.client.Jar.SetCookies(u, []*http.Cookie{{Name: "vw", Value: "375"}})

	_, body := env.get(t, "/")
	if n := countCards(body); n != 1 {
		t.Errorf("expected 1 card on a narrow viewport, got %d", n)
	}
}

func TestLandingCustomBreakpoint(t *testing.T) {
	env := setupTestServerWithPolicy(t, gallery.PageSizePolicy{Breakpoint: 1024, Narrow: 1, Wide: 6})
	seedProducts(t, env.catalog, 3)

	u, _ := url.Parse(env.server.URL)
	env.client.Jar.SetCookies(u, []*http.Cookie{{Name: "vw", Value: "900"}})

	_, body := env.get(t, "/")
	if !strings.Contains(body, `data-breakpoint="1024"`) {
		t.Error("expected the configured breakpoint on the gallery section")
	}
	if n := countCards(body); n != 1 {
		t.Errorf("expected 1 card below the configured breakpoint, got %d", n)
	}
}

func TestLandingDetailOverlay(t *testing.T) {
	env := setupTestServer(t)
	p, err := env.catalog.CreateProduct(context.Background(), catalog.ProductInput{
		Title:       "Soja Premium",
		Description: "Umidade máxima 14%",
		Category:    model.CategoryGrains,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	_, body := env.get(t, "/?item="+p.ID)
	if !strings.Contains(body, `class="overlay"`) || !strings.Contains(body, "Umidade máxima 14%") {
		t.Error("expected the detail overlay for the selected product")
	}

	_, body = env.get(t, "/?item=missing")
	if strings.Contains(body, `class="overlay"`) {
		t.Error("expected no overlay for an unknown product")
	}
}

func TestContactForm(t *testing.T) {
	env := setupTestServer(t)

	resp := env.postForm(t, "/contato", url.Values{"nome": {"João"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty message, got %d", resp.StatusCode)
	}

	resp = env.postForm(t, "/contato", url.Values{"nome": {"João"}, "mensagem": {"Quero cotação de soja"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}

	msgs, err := env.catalog.ListMessages(context.Background())
	if err != nil || len(msgs) != 1 {
		t.Fatalf("expected 1 stored message, got %d (%v)", len(msgs), err)
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	env := setupTestServer(t)

	status, body := env.get(t, "/admin")
	if status != http.StatusOK || !strings.Contains(body, `action="/admin/login"`) {
		t.Error("expected the login form without a session")
	}

	resp := env.postForm(t, "/admin/contact", url.Values{"telefone": {"1"}})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin" {
		t.Errorf("expected redirect to /admin, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = env.postForm(t, "/admin/login", url.Values{"email": {"admin@agro.com"}, "password": {"wrong"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
}

func TestAdminProductFlow(t *testing.T) {
	env := setupTestServer(t)
	env.login(t)

	status, body := env.get(t, "/admin")
	if status != http.StatusOK || !strings.Contains(body, "Novo produto") {
		t.Fatal("expected the admin panel after login")
	}

	// A new product needs an image.
	resp := postProduct(t, env, "/admin/products", "Soja em grão", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without image, got %d", resp.StatusCode)
	}

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	img.Set(3, 3, color.RGBA{0, 100, 0, 255})
	var buf bytes.Buffer
	png.Encode(&buf, img)

	resp = postProduct(t, env, "/admin/products", "Soja em grão", buf.Bytes())
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after create, got %d", resp.StatusCode)
	}

	products, _ := env.catalog.ListProducts(context.Background())
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]

	status, _ = env.get(t, p.Image())
	if status != http.StatusOK {
		t.Errorf("expected stored image to be served, got %d", status)
	}

	// Editing without a new image keeps the old one.
	resp = postProduct(t, env, "/admin/products/"+p.ID, "Soja exportação", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after edit, got %d", resp.StatusCode)
	}
	edited, _ := env.catalog.GetProduct(context.Background(), p.ID)
	if edited.Title != "Soja exportação" || edited.Image() != p.Image() {
		t.Errorf("unexpected edit result: %+v", edited)
	}

	resp = env.postForm(t, "/admin/products/"+p.ID+"/delete", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after delete, got %d", resp.StatusCode)
	}
	if status, _ := env.get(t, p.Image()); status != http.StatusNotFound {
		t.Errorf("expected image to be removed, got %d", status)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := setupTestServer(t)
	env.login(t)

	u, _ := url.Parse(env.server.URL)
	var token string
	for _, c := range env.client.Jar.Cookies(u) {
		if c.Name == tokenCookie {
			token = c.Value
		}
	}

	env.postForm(t, "/admin/logout", nil)

	// Replaying the old token must not work.
	req, _ := http.NewRequest("GET", env.server.URL+"/admin/settings", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected redirect for revoked token, got %d", resp.StatusCode)
	}
}

func postProduct(t *testing.T, env *testEnv, path, title string, img []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("titulo", title)
	mw.WriteField("descricao", "Safra 2024")
	mw.WriteField("categoria", string(model.CategoryGrains))
	if img != nil {
		fw, _ := mw.CreateFormFile("imagem", "soja.png")
		fw.Write(img)
	}
	mw.Close()

	resp, err := env.client.Post(env.server.URL+path, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	resp.Body.Close()
	return resp
}
