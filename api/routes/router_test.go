package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meditrack-ph/meditrack-backend/internal/auth"
	"github.com/meditrack-ph/meditrack-backend/internal/cart"
	"github.com/meditrack-ph/meditrack-backend/internal/cartsync"
	"github.com/meditrack-ph/meditrack-backend/internal/catalog"
	"github.com/meditrack-ph/meditrack-backend/internal/transactions"
	pkgauth "github.com/meditrack-ph/meditrack-backend/pkg/auth"
	"github.com/meditrack-ph/meditrack-backend/pkg/config"
	"github.com/meditrack-ph/meditrack-backend/pkg/db/models"
	"github.com/meditrack-ph/meditrack-backend/pkg/docstore"
	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

type noopSyncer struct{}

func (noopSyncer) UpsertItem(uuid.UUID, cart.LineItem, time.Time) {}
func (noopSyncer) DeleteItem(uuid.UUID, string, time.Time)        {}
func (noopSyncer) TouchCart(uuid.UUID, time.Time)                 {}

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, auth.RegisterRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) List(context.Context, catalog.Filter) (catalog.Page, error) {
	return catalog.Page{Products: []models.Product{}}, nil
}

func (stubCatalogService) Get(context.Context, uuid.UUID) (models.Product, error) {
	return models.Product{}, nil
}

func (stubCatalogService) Snapshot(context.Context, uuid.UUID) (cart.ProductSnapshot, error) {
	return cart.ProductSnapshot{}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Checkout(context.Context, *cart.Manager, []string) (transactions.Record, error) {
	return transactions.Record{}, nil
}

func (stubCheckoutService) CheckoutItem(context.Context, *cart.Manager, string) (transactions.Record, error) {
	return transactions.Record{}, nil
}

func (stubCheckoutService) CheckoutAll(context.Context, *cart.Manager) (transactions.Record, error) {
	return transactions.Record{}, nil
}

type stubReservationsService struct{}

func (stubReservationsService) Create(context.Context, uuid.UUID, uuid.UUID, int) (models.Reservation, error) {
	return models.Reservation{}, nil
}

func (stubReservationsService) List(context.Context, uuid.UUID, enums.ReservationStatus) ([]models.Reservation, error) {
	return []models.Reservation{}, nil
}

func (stubReservationsService) Cancel(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubReservationsService) Convert(context.Context, uuid.UUID, uuid.UUID, *cart.Manager) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: zerolog.Disabled, Output: io.Discard})

	remote, err := cartsync.NewStore(docstore.NewMemory())
	if err != nil {
		t.Fatalf("new remote store: %v", err)
	}
	registry, err := cart.NewRegistry(remote, noopSyncer{}, logg)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	txRepo, err := transactions.NewRepository(docstore.NewMemory())
	if err != nil {
		t.Fatalf("new transactions repository: %v", err)
	}

	return NewRouter(
		cfg,
		logg,
		nil,
		registry,
		stubAuthService{},
		stubCatalogService{},
		stubCheckoutService{},
		stubReservationsService{},
		txRepo,
	)
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "tester",
		JTI:      uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestProductsArePublic(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public listing got %d", resp.Code)
	}
}

func TestCartRejectsMissingSession(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session got %d", resp.Code)
	}
}

func TestCartAcceptsGuestHeader(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("X-Guest-Session", "guest-abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for guest cart got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), `"cart_id"`) {
		t.Fatalf("guest cart should not be bound, got %s", resp.Body.String())
	}
}

func TestCartAcceptsBearerToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for bound cart got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"cart_id"`) {
		t.Fatalf("expected bound cart payload got %s", resp.Body.String())
	}
}

func TestReservationsRequireJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	anon := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestGuestHeaderCannotCheckout(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/", nil)
	req.Header.Set("X-Guest-Session", "guest-abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest checkout got %d", resp.Code)
	}
}

func TestTransactionsRequireJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	anon := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestRegisterRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed payload got %d", resp.Code)
	}
}
