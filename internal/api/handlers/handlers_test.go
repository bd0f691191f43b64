package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/jafarshop/stockimport/internal/config"
	"github.com/jafarshop/stockimport/internal/domain"
	"github.com/jafarshop/stockimport/internal/fingerprint"
	"github.com/jafarshop/stockimport/internal/freepik"
	"github.com/jafarshop/stockimport/internal/service"
	"github.com/jafarshop/stockimport/internal/shopify"
	apperrors "github.com/jafarshop/stockimport/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSearcher struct {
	images []domain.ImageResult
	err    error
	term   string
	page   int
}

func (f *fakeSearcher) Search(ctx context.Context, term string, page int) (*freepik.SearchResult, error) {
	f.term, f.page = term, page
	if f.err != nil {
		return nil, f.err
	}
	return &freepik.SearchResult{Raw: []byte(`{"data":"raw"}`), Images: f.images, Meta: json.RawMessage(`{"page":1}`)}, nil
}

type fakeIndex struct {
	fps []string
	err error
}

func (f *fakeIndex) Build(ctx context.Context) (domain.InventoryIndex, error) {
	if f.err != nil {
		return nil, f.err
	}
	idx := domain.NewInventoryIndex()
	for _, fp := range f.fps {
		idx.Add(fp)
	}
	return idx, nil
}

type fakeCreator struct {
	calls int
	err   error
}

func (f *fakeCreator) CreateProduct(ctx context.Context, input shopify.ProductInput) (*shopify.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &shopify.Product{ID: int64(100 + f.calls), Title: input.Title}, nil
}

func serve(h gin.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	r := gin.New()
	path := strings.SplitN(target, "?", 2)[0]
	r.Handle(method, path, h)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearchDefaultsAndClassification(t *testing.T) {
	dup := "https://img/dup.png"
	searcher := &fakeSearcher{images: []domain.ImageResult{
		{Title: "dup", SourceURL: dup},
		{Title: "new", SourceURL: "https://img/new.png"},
	}}
	svc := service.NewSearchService(searcher, &fakeIndex{fps: []string{fingerprint.Of(dup)}}, fingerprint.Default, nil)

	w := serve(HandleSearch(svc, zaptest.NewLogger(t)), http.MethodGet, "/api/search", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if searcher.term != "jersey" || searcher.page != 1 {
		t.Fatalf("searched %q page %d", searcher.term, searcher.page)
	}

	var res struct {
		Data []struct {
			Title     string `json:"title"`
			SourceURL string `json:"sourceUrl"`
			Duplicate bool   `json:"duplicate"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Data) != 2 || !res.Data[0].Duplicate || res.Data[1].Duplicate {
		t.Fatalf("data = %+v", res.Data)
	}
}

func TestSearchInvalidPage(t *testing.T) {
	svc := service.NewSearchService(&fakeSearcher{}, &fakeIndex{}, fingerprint.Default, nil)
	for _, p := range []string{"0", "-1", "abc"} {
		w := serve(HandleSearch(svc, zap.NewNop()), http.MethodGet, "/api/search?page="+p, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("page=%s: status %d", p, w.Code)
		}
	}
}

func TestSearchRawPassthrough(t *testing.T) {
	svc := service.NewSearchService(&fakeSearcher{}, &fakeIndex{err: errors.New("unused")}, fingerprint.Default, nil)
	w := serve(HandleSearch(svc, zap.NewNop()), http.MethodGet, "/api/search?term=cats&raw=true", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"data":"raw"}` {
		t.Fatalf("status %d body %s", w.Code, w.Body)
	}
}

func TestSearchUpstreamErrorEchoesDetail(t *testing.T) {
	searcher := &fakeSearcher{err: &apperrors.ErrUpstream{Service: "freepik", StatusCode: 401, Body: []byte(`{"message":"Invalid API key"}`)}}
	svc := service.NewSearchService(searcher, &fakeIndex{}, fingerprint.Default, nil)

	w := serve(HandleSearch(svc, zap.NewNop()), http.MethodGet, "/api/search", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"detail":{"message":"Invalid API key"}`) {
		t.Fatalf("body = %s", w.Body)
	}
}

func TestSearchIndexFailureIs500(t *testing.T) {
	svc := service.NewSearchService(&fakeSearcher{}, &fakeIndex{err: errors.New("listing down")}, fingerprint.Default, nil)
	w := serve(HandleSearch(svc, zap.NewNop()), http.MethodGet, "/api/search", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestShopifyHashes(t *testing.T) {
	w := serve(HandleShopifyHashes(&fakeIndex{fps: []string{"fpimg-bbbbbbbb", "fpimg-aaaaaaaa"}}, zap.NewNop()), http.MethodGet, "/api/shopify-hashes", "")
	if w.Code != http.StatusOK || w.Body.String() != `["fpimg-aaaaaaaa","fpimg-bbbbbbbb"]` {
		t.Fatalf("status %d body %s", w.Code, w.Body)
	}

	w = serve(HandleShopifyHashes(&fakeIndex{}, zap.NewNop()), http.MethodGet, "/api/shopify-hashes", "")
	if w.Body.String() != `[]` {
		t.Fatalf("empty index body %s", w.Body)
	}

	w = serve(HandleShopifyHashes(&fakeIndex{err: errors.New("boom")}, zap.NewNop()), http.MethodGet, "/api/shopify-hashes", "")
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "boom") {
		t.Fatalf("status %d body %s", w.Code, w.Body)
	}
}

func newImporter(creator service.ProductCreator, index service.IndexSource) *service.Importer {
	return service.NewImporter(creator, index, config.ImportConfig{Precheck: true, DefaultPricingTier: domain.DefaultPricingTierKey}, fingerprint.Default, nil)
}

func TestAddToShopify(t *testing.T) {
	dup := "https://img/dup.png"
	creator := &fakeCreator{}
	h := HandleAddToShopify(newImporter(creator, &fakeIndex{fps: []string{fingerprint.Of(dup)}}), zap.NewNop())

	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantStatus domain.ImportStatus
	}{
		{"added", `{"title":"Jersey","sourceUrl":"https://img/new.png"}`, http.StatusOK, domain.ImportStatusAdded},
		{"imageUrl alias", `{"imageUrl":"https://img/other.png","pricingTier":"399-499"}`, http.StatusOK, domain.ImportStatusAdded},
		{"duplicate", `{"title":"Dup","sourceUrl":"` + dup + `"}`, http.StatusOK, domain.ImportStatusDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h, http.MethodPost, "/api/add-to-shopify", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d: %s", w.Code, w.Body)
			}
			var res domain.ImportResult
			if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
				t.Fatal(err)
			}
			if res.Status != tt.wantStatus {
				t.Fatalf("result status = %s", res.Status)
			}
		})
	}
	if creator.calls != 2 {
		t.Fatalf("created %d products", creator.calls)
	}
}

func TestAddToShopifyMissingURL(t *testing.T) {
	creator := &fakeCreator{}
	w := serve(HandleAddToShopify(newImporter(creator, &fakeIndex{}), zap.NewNop()), http.MethodPost, "/api/add-to-shopify", `{"title":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if creator.calls != 0 {
		t.Fatal("no upstream call expected")
	}
}

func TestAddToShopifyPlatformError(t *testing.T) {
	creator := &fakeCreator{err: &apperrors.ErrUpstream{Service: "shopify", StatusCode: 422, Body: []byte(`{"errors":{"title":["is too long"]}}`)}}
	w := serve(HandleAddToShopify(newImporter(creator, &fakeIndex{}), zap.NewNop()), http.MethodPost, "/api/add-to-shopify", `{"sourceUrl":"https://img/a.png"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"detail":{"errors":{"title":["is too long"]}}`) {
		t.Fatalf("body = %s", w.Body)
	}
}

func TestAddToShopifyBulk(t *testing.T) {
	creator := &fakeCreator{}
	h := HandleAddToShopify(newImporter(creator, &fakeIndex{}), zap.NewNop())
	body := `{"images":[
		{"title":"a","url":"https://img/a.png"},
		{"title":"a again","url":"https://img/a.png"},
		{"title":"no url"}
	]}`

	w := serve(h, http.MethodPost, "/api/add-to-shopify", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res BulkImportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Added != 1 || res.Duplicates != 1 || res.Errors != 1 || len(res.Results) != 3 {
		t.Fatalf("response = %+v", res)
	}
}

func TestAddToShopifyBulkIndexFailure(t *testing.T) {
	creator := &fakeCreator{}
	index := &fakeIndex{err: &apperrors.ErrUpstream{Service: "shopify", StatusCode: 503, Body: []byte(`{"errors":"down"}`)}}
	h := HandleAddToShopify(newImporter(creator, index), zap.NewNop())

	w := serve(h, http.MethodPost, "/api/add-to-shopify", `{"images":[{"title":"a","url":"https://img/a.png"}]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), `"detail":{"errors":"down"}`) {
		t.Fatalf("body = %s", w.Body)
	}
	if creator.calls != 0 {
		t.Fatal("no product should be created")
	}
}

func TestAddToShopifyBulkAllFailed(t *testing.T) {
	creator := &fakeCreator{err: &apperrors.ErrUpstream{Service: "shopify", StatusCode: 502}}
	h := HandleAddToShopify(newImporter(creator, &fakeIndex{}), zap.NewNop())

	w := serve(h, http.MethodPost, "/api/add-to-shopify", `{"images":[{"url":"https://img/a.png"},{"url":"https://img/b.png"}]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var res BulkImportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Errors != 2 || len(res.Results) != 2 {
		t.Fatalf("response = %+v", res)
	}
}

func TestAddToShopifyMalformedBody(t *testing.T) {
	w := serve(HandleAddToShopify(newImporter(&fakeCreator{}, nil), zap.NewNop()), http.MethodPost, "/api/add-to-shopify", `{`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func newOAuth(t *testing.T, exchange http.HandlerFunc) *shopify.OAuth {
	t.Helper()
	o := shopify.NewOAuth(config.OAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURI:  "https://app.example.com/api/auth/callback",
		Scopes:       "read_products,write_products",
	}, nil, zaptest.NewLogger(t))
	if exchange != nil {
		srv := httptest.NewServer(exchange)
		t.Cleanup(srv.Close)
		o.ShopBaseURL = func(string) string { return srv.URL }
	}
	return o
}

func TestAuthRedirect(t *testing.T) {
	h := HandleAuth(newOAuth(t, nil), zap.NewNop())

	if w := serve(h, http.MethodGet, "/api/auth", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing shop: %d", w.Code)
	}
	if w := serve(h, http.MethodGet, "/api/auth?shop=evil.com", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad shop: %d", w.Code)
	}

	w := serve(h, http.MethodGet, "/api/auth?shop=demo.myshopify.com", "")
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "https://demo.myshopify.com/admin/oauth/authorize?") {
		t.Fatalf("location = %s", loc)
	}
}

func TestAuthNotConfigured(t *testing.T) {
	o := shopify.NewOAuth(config.OAuthConfig{}, nil, nil)
	w := serve(HandleAuth(o, zap.NewNop()), http.MethodGet, "/api/auth?shop=demo.myshopify.com", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func signedCallback(secret string, q url.Values) string {
	q.Set("hmac", shopify.SignQuery(q, secret))
	return "/api/auth/callback?" + q.Encode()
}

func TestAuthCallback(t *testing.T) {
	exchange := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"shpat_123456789"}`))
	}
	h := HandleAuthCallback(newOAuth(t, exchange), zap.NewNop())
	base := url.Values{"shop": {"demo.myshopify.com"}, "code": {"abc"}, "timestamp": {"1700000000"}}

	w := serve(h, http.MethodGet, signedCallback("secret", base), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if strings.Contains(w.Body.String(), "shpat_") {
		t.Fatal("token must not be echoed")
	}
}

func TestAuthCallbackRejects(t *testing.T) {
	exchangeCalled := false
	exchange := func(w http.ResponseWriter, r *http.Request) {
		exchangeCalled = true
		w.WriteHeader(http.StatusBadRequest)
	}
	h := HandleAuthCallback(newOAuth(t, exchange), zap.NewNop())

	tests := []struct {
		name   string
		target string
	}{
		{"missing code", signedCallback("secret", url.Values{"shop": {"demo.myshopify.com"}})},
		{"missing hmac", "/api/auth/callback?shop=demo.myshopify.com&code=abc"},
		{"wrong secret", signedCallback("other", url.Values{"shop": {"demo.myshopify.com"}, "code": {"abc"}})},
		{"tampered", signedCallback("secret", url.Values{"shop": {"demo.myshopify.com"}, "code": {"abc"}}) + "&state=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := serve(h, http.MethodGet, tt.target, ""); w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
		})
	}
	if exchangeCalled {
		t.Fatal("token exchange attempted for a rejected callback")
	}
}

func TestAuthCallbackExchangeFailure(t *testing.T) {
	exchange := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_request"}`))
	}
	h := HandleAuthCallback(newOAuth(t, exchange), zap.NewNop())
	w := serve(h, http.MethodGet, signedCallback("secret", url.Values{"shop": {"demo.myshopify.com"}, "code": {"abc"}}), "")
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "invalid_request") {
		t.Fatalf("status %d body %s", w.Code, w.Body)
	}
}

func TestRedact(t *testing.T) {
	if got := redact("shpat_abcdef1234"); got != "****1234" {
		t.Fatalf("redact = %s", got)
	}
	if got := redact("ab"); got != "****" {
		t.Fatalf("redact short = %s", got)
	}
}
