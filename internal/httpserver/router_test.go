package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	reviewsvc "storefront/internal/service/review"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubUserService struct {
	signupIn  usersvc.SignupInput
	signupErr error
	loginUser *domain.User
	loginErr  error
	loggedOut []string
	logoutErr error
}

var (
	testUser  = &domain.User{ID: 7, Email: "kim@example.com", Name: "Kim", Role: domain.RoleUser}
	testAdmin = &domain.User{ID: 1, Email: "admin@example.com", Name: "Admin", Role: domain.RoleAdmin}
)

func (s *stubUserService) Signup(_ context.Context, in usersvc.SignupInput) (*domain.User, error) {
	s.signupIn = in
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	return &domain.User{ID: 42, Email: in.Email, Name: in.Name, Role: domain.RoleUser}, nil
}

func (s *stubUserService) Login(_ context.Context, _, _ string) (*domain.User, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return s.loginUser, userToken, nil
}

func (s *stubUserService) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return s.logoutErr
}

func (s *stubUserService) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	switch token {
	case userToken:
		return testUser, nil
	case adminToken:
		return testAdmin, nil
	}
	return nil, usersvc.ErrInvalidToken
}

type stubCartService struct {
	view      *cartsvc.View
	line      domain.CartLine
	created   bool
	err       error
	gotUserID int64
}

func (s *stubCartService) View(_ context.Context, userID int64) (*cartsvc.View, error) {
	s.gotUserID = userID
	return s.view, s.err
}

func (s *stubCartService) Add(_ context.Context, userID, _ int64, _ int) (domain.CartLine, bool, error) {
	s.gotUserID = userID
	return s.line, s.created, s.err
}

func (s *stubCartService) Update(_ context.Context, userID, _ int64, _ int) error {
	s.gotUserID = userID
	return s.err
}

func (s *stubCartService) Remove(_ context.Context, userID, _ int64) error {
	s.gotUserID = userID
	return s.err
}

type stubOrderService struct {
	orders []domain.Order
	err    error
}

func (s *stubOrderService) History(_ context.Context, _ int64) ([]domain.Order, error) {
	return s.orders, s.err
}

type stubCheckoutService struct {
	receipt  *checkout.Receipt
	err      error
	calls    int
	got      checkout.Request
	deadline time.Time
}

func (s *stubCheckoutService) Checkout(ctx context.Context, req checkout.Request) (*checkout.Receipt, error) {
	s.calls++
	s.got = req
	s.deadline, _ = ctx.Deadline()
	return s.receipt, s.err
}

type stubProductService struct {
	variant  *domain.ProductVariant
	err      error
	got      productrepo.VariantPatch
	popular  []productsvc.PopularItem
	gotLimit int
}

func (s *stubProductService) PatchVariant(_ context.Context, _ int64, patch productrepo.VariantPatch) (*domain.ProductVariant, error) {
	s.got = patch
	return s.variant, s.err
}

func (s *stubProductService) Popular(_ context.Context, limit int) ([]productsvc.PopularItem, error) {
	s.gotLimit = limit
	return s.popular, s.err
}

type stubReviewService struct {
	id      int64
	summary *reviewsvc.Summary
	err     error
	got     domain.Review
	calls   int
}

func (s *stubReviewService) Create(_ context.Context, r domain.Review) (int64, error) {
	s.calls++
	s.got = r
	return s.id, s.err
}

func (s *stubReviewService) List(_ context.Context, productID int64) (*reviewsvc.Summary, error) {
	s.calls++
	s.got = domain.Review{ProductID: productID}
	return s.summary, s.err
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func testDeps() Deps {
	return Deps{
		UserSvc:     &stubUserService{},
		CartSvc:     &stubCartService{view: &cartsvc.View{Items: []cartsvc.Item{}}},
		OrderSvc:    &stubOrderService{orders: []domain.Order{}},
		CheckoutSvc: &stubCheckoutService{},
		ProductSvc:  &stubProductService{},
		ReviewSvc:   &stubReviewService{},
	}
}

func newTestRouter(t *testing.T, db Pinger, deps Deps) *gin.Engine {
	t.Helper()
	router, err := buildRouter(logDiscard(), db, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	gin.SetMode(gin.TestMode)
	return router
}

func serve(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil, testDeps())

	rec := serve(router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	cases := []struct {
		name string
		db   Pinger
		want int
	}{
		{name: "no db", db: nil, want: http.StatusServiceUnavailable},
		{name: "ping fails", db: stubPinger{err: errors.New("connection refused")}, want: http.StatusServiceUnavailable},
		{name: "ready", db: stubPinger{}, want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, tc.db, testDeps())
			rec := serve(router, http.MethodGet, "/readyz", "", nil)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestReadyz_ChecksIdempotencyStore(t *testing.T) {
	store, mr := newIdempotencyStore(t)
	deps := testDeps()
	deps.Idempotency = store
	router := newTestRouter(t, stubPinger{}, deps)

	rec := serve(router, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	mr.Close()
	rec = serve(router, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "redis not reachable") {
		t.Fatalf("expected redis failure, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestBuildRouter_RequiresServices(t *testing.T) {
	deps := testDeps()
	deps.CheckoutSvc = nil
	if _, err := buildRouter(logDiscard(), nil, deps); err == nil {
		t.Fatalf("expected error for missing checkout service")
	}

	deps = testDeps()
	deps.ReviewSvc = nil
	if _, err := buildRouter(logDiscard(), nil, deps); err == nil {
		t.Fatalf("expected error for missing review service")
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(t, nil, testDeps())

	cases := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{name: "missing header", headers: nil, want: http.StatusUnauthorized},
		{name: "wrong scheme", headers: map[string]string{"Authorization": "Basic abc"}, want: http.StatusUnauthorized},
		{name: "empty token", headers: map[string]string{"Authorization": "Bearer "}, want: http.StatusUnauthorized},
		{name: "unknown token", headers: bearer("nope"), want: http.StatusUnauthorized},
		{name: "valid token", headers: bearer(userToken), want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, "/api/cart", "", tc.headers)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	deps := testDeps()
	deps.ProductSvc = &stubProductService{variant: &domain.ProductVariant{ID: 3, DiscountRate: 20}}
	router := newTestRouter(t, nil, deps)

	rec := serve(router, http.MethodPatch, "/api/admin/variants/3", `{"discountRate":20}`, bearer(userToken))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	rec = serve(router, http.MethodPatch, "/api/admin/variants/3", `{"discountRate":20}`, bearer(adminToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(t, nil, testDeps())

	rec := serve(router, http.MethodGet, "/healthz", "", map[string]string{requestIDHeader: "req-123"})
	if got := rec.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}

	rec = serve(router, http.MethodGet, "/healthz", "", nil)
	if got := rec.Header().Get(requestIDHeader); len(got) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	deps := testDeps()
	deps.Metrics = metrics.New(reg)
	deps.Gatherer = reg
	router := newTestRouter(t, nil, deps)

	serve(router, http.MethodGet, "/healthz", "", nil)
	serve(router, http.MethodGet, "/does-not-exist", "", nil)

	rec := serve(router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `storefront_http_requests_total{handler="/healthz",status="OK"} 1`) {
		t.Fatalf("healthz request not counted:\n%s", body)
	}
	if !strings.Contains(body, `handler="unmatched"`) {
		t.Fatalf("unmatched route not counted:\n%s", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	deps := testDeps()
	deps.CORSOrigins = []string{"http://localhost:5173"}
	router := newTestRouter(t, nil, deps)

	rec := serve(router, http.MethodOptions, "/api/checkout", "", map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin header, got %q (status %d)", got, rec.Code)
	}
}
