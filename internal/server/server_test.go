package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/printhaus/portal/internal/auth/domain"
	"github.com/printhaus/portal/internal/auth/events"
	authrepo "github.com/printhaus/portal/internal/auth/repository"
	authservice "github.com/printhaus/portal/internal/auth/service"
	"github.com/printhaus/portal/internal/auth/session"
	"github.com/printhaus/portal/internal/clock"
	"github.com/printhaus/portal/internal/config"
	"github.com/printhaus/portal/internal/dashboard"
	invoicedomain "github.com/printhaus/portal/internal/invoice/domain"
	invoicerepo "github.com/printhaus/portal/internal/invoice/repository"
	invoiceservice "github.com/printhaus/portal/internal/invoice/service"
	orderdomain "github.com/printhaus/portal/internal/order/domain"
	orderrepo "github.com/printhaus/portal/internal/order/repository"
	orderservice "github.com/printhaus/portal/internal/order/service"
	statusdomain "github.com/printhaus/portal/internal/orderstatus/domain"
	statusrepo "github.com/printhaus/portal/internal/orderstatus/repository"
	statusservice "github.com/printhaus/portal/internal/orderstatus/service"
	profiledomain "github.com/printhaus/portal/internal/profile/domain"
	profilerepo "github.com/printhaus/portal/internal/profile/repository"
	profileservice "github.com/printhaus/portal/internal/profile/service"
	"github.com/printhaus/portal/internal/providers/email"
	"github.com/printhaus/portal/internal/ratelimit"
	"github.com/printhaus/portal/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&authdomain.PasswordResetToken{},
		&profiledomain.Profile{},
		&orderdomain.Order{},
		&statusdomain.StatusEvent{},
		&invoicedomain.Invoice{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	log := zap.NewNop()
	holder := config.NewStaticPortalConfigHolder(config.DefaultPortalConfig())

	userRepo, sessionRepo, resetRepo := authrepo.New(dbConn)
	authsvc := authservice.New(
		log, userRepo, sessionRepo, resetRepo, node, holder,
		&email.NoOpProvider{}, events.NewHub(),
		config.Config{ResetBaseURL: "http://localhost:8080/reset"},
	)

	profiles := profilerepo.New(dbConn)
	profilesvc := profileservice.New(profileservice.Params{
		Log:    log,
		GenID:  node,
		Repo:   profiles,
		Users:  userRepo,
		Holder: holder,
	})

	statuses := statusservice.New(statusservice.Params{
		Log:   log,
		GenID: node,
		Repo:  statusrepo.New(dbConn),
	})
	orders := orderrepo.New(dbConn)
	ordersvc := orderservice.New(orderservice.Params{
		Log:      log,
		GenID:    node,
		Repo:     orders,
		Profiles: profiles,
		Statuses: statuses,
	})
	invoicesvc := invoiceservice.New(invoiceservice.Params{
		Log:    log,
		GenID:  node,
		Repo:   invoicerepo.New(dbConn),
		Orders: orders,
	})
	dashboardsvc := dashboard.New(dashboard.Params{
		Log:      log,
		Profiles: profiles,
		Orders:   orders,
		Statuses: statuses,
		Invoices: invoicerepo.New(dbConn),
		Clock:    clock.NewSystem(),
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:          engine,
		Cfg:          config.Config{},
		Authsvc:      authsvc,
		Sessions:     session.NewManager(config.Config{}),
		Profilesvc:   profilesvc,
		Ordersvc:     ordersvc,
		Statussvc:    statuses,
		Invoicesvc:   invoicesvc,
		Dashboardsvc: dashboardsvc,
		LoginLimiter: ratelimit.NewLoginLimiter(nil, holder),
	})

	return engine, dbConn
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func signupSession(t *testing.T, engine *gin.Engine, emailAddr string) []*http.Cookie {
	t.Helper()
	resp := doRequest(t, engine, http.MethodPost, "/auth/signup",
		`{"email":"`+emailAddr+`","password":"secret-pass","display_name":"Test User"}`, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 from signup, got %d: %s", resp.Code, resp.Body.String())
	}
	cookies := resp.Result().Cookies()
	for _, cookie := range cookies {
		if cookie.Name == session.DefaultCookieName && cookie.Value != "" {
			return cookies
		}
	}
	t.Fatal("expected session cookie on signup")
	return nil
}

func TestSignupSignsIn(t *testing.T) {
	engine, _ := newTestServer(t)
	cookies := signupSession(t, engine, "alice@example.com")

	resp := doRequest(t, engine, http.MethodGet, "/auth/me", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from me, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Profile struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode me response: %v", err)
	}
	if body.Profile.Email != "alice@example.com" {
		t.Fatalf("expected profile email, got %q", body.Profile.Email)
	}
}

func TestPortalRequiresSession(t *testing.T) {
	engine, _ := newTestServer(t)

	resp := doRequest(t, engine, http.MethodGet, "/portal/orders", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	engine, _ := newTestServer(t)
	signupSession(t, engine, "bob@example.com")

	resp := doRequest(t, engine, http.MethodPost, "/auth/login",
		`{"email":"bob@example.com","password":"wrong-pass"}`, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestOrderLifecycle(t *testing.T) {
	engine, _ := newTestServer(t)
	cookies := signupSession(t, engine, "carol@example.com")

	resp := doRequest(t, engine, http.MethodPost, "/portal/orders",
		`{"order_type":"Business Cards","quantity":500,"rate":20,"amount_received":4000}`, cookies)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		DisplayID string `json:"display_id"`
		Status    string `json:"status"`
		Order     struct {
			TotalAmount   int64 `json:"total_amount"`
			BalanceAmount int64 `json:"balance_amount"`
		} `json:"order"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if created.Status != "Pending" {
		t.Fatalf("expected Pending, got %q", created.Status)
	}
	if created.Order.TotalAmount != 10000 || created.Order.BalanceAmount != 6000 {
		t.Fatalf("unexpected totals: %+v", created.Order)
	}

	// Unknown pipeline labels are rejected at the write boundary.
	resp = doRequest(t, engine, http.MethodPost, "/portal/orders/"+created.DisplayID+"/status",
		`{"status":"Shipped"}`, cookies)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.Code)
	}

	resp = doRequest(t, engine, http.MethodPost, "/portal/orders/"+created.DisplayID+"/status",
		`{"status":"Printing"}`, cookies)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, engine, http.MethodGet, "/portal/orders/"+created.DisplayID+"/status", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var status struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode status response: %v", err)
	}
	if status.Status != "Printing" {
		t.Fatalf("expected Printing, got %q", status.Status)
	}

	resp = doRequest(t, engine, http.MethodDelete, "/portal/orders/"+created.DisplayID, "", cookies)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	resp = doRequest(t, engine, http.MethodGet, "/portal/orders/"+created.DisplayID, "", cookies)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}

func TestInvoicePaymentEndpointsStubbed(t *testing.T) {
	engine, _ := newTestServer(t)
	cookies := signupSession(t, engine, "dave@example.com")

	resp := doRequest(t, engine, http.MethodPost, "/portal/invoices/123/pay", "", cookies)
	if resp.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.Code)
	}

	resp = doRequest(t, engine, http.MethodGet, "/portal/invoices/123/pdf", "", cookies)
	if resp.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.Code)
	}
}

func TestListEndpointsDegradeOnBackendFailure(t *testing.T) {
	engine, dbConn := newTestServer(t)
	cookies := signupSession(t, engine, "frank@example.com")

	// Dropping the tables makes every list query fail at the store; the
	// portal must answer with empty datasets, never a fatal error.
	if err := dbConn.Migrator().DropTable(&invoicedomain.Invoice{}); err != nil {
		t.Fatalf("failed to drop invoices: %v", err)
	}
	if err := dbConn.Migrator().DropTable(&orderdomain.Order{}); err != nil {
		t.Fatalf("failed to drop orders: %v", err)
	}

	resp := doRequest(t, engine, http.MethodGet, "/portal/invoices", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var invoices struct {
		Invoices []json.RawMessage `json:"invoices"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &invoices); err != nil {
		t.Fatalf("failed to decode invoices: %v", err)
	}
	if len(invoices.Invoices) != 0 {
		t.Fatalf("expected empty invoice list, got %d rows", len(invoices.Invoices))
	}

	resp = doRequest(t, engine, http.MethodGet, "/portal/orders", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var orders struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &orders); err != nil {
		t.Fatalf("failed to decode orders: %v", err)
	}
	if len(orders.Orders) != 0 {
		t.Fatalf("expected empty order list, got %d rows", len(orders.Orders))
	}

	resp = doRequest(t, engine, http.MethodGet, "/portal/dashboard", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDashboardOverHTTP(t *testing.T) {
	engine, _ := newTestServer(t)
	cookies := signupSession(t, engine, "erin@example.com")

	if resp := doRequest(t, engine, http.MethodPost, "/portal/orders",
		`{"order_type":"Flyers","quantity":100,"rate":30}`, cookies); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp := doRequest(t, engine, http.MethodGet, "/portal/dashboard", "", cookies)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var stats struct {
		TotalOrders   int64 `json:"total_orders"`
		PendingOrders int   `json:"pending_orders"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode dashboard: %v", err)
	}
	if stats.TotalOrders != 1 || stats.PendingOrders != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
