package fulfillment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/config"
	"github.com/velure-commerce/velure/internal/entity"
	service "github.com/velure-commerce/velure/internal/service/fulfillment"
)

type emptyStore struct{}

func (emptyStore) GetByID(context.Context, int64) (*entity.Order, error) {
	return nil, errors.New("not found")
}

func (emptyStore) GetByNumber(context.Context, string) (*entity.Order, error) {
	return nil, errors.New("not found")
}

func (emptyStore) Update(context.Context, *entity.Order, ...string) error { return nil }

func (emptyStore) ListAwaitingSettlement(context.Context) ([]*entity.Order, error) {
	return nil, nil
}

func (emptyStore) ListAwaitingAWB(context.Context) ([]*entity.Order, error) { return nil, nil }

func (emptyStore) ListTrackable(context.Context) ([]*entity.Order, error) { return nil, nil }

func (emptyStore) ListAwaitingNotification(context.Context) ([]*entity.Order, error) {
	return nil, nil
}

func newTestHandler() *Handler {
	cfg := config.Config{
		Cron: config.Cron{
			Secret:        "cron-secret",
			TrackingToken: "tracking-token",
		},
	}
	svc := service.NewService(service.Deps{
		Store:  emptyStore{},
		Config: cfg,
		Logger: zap.NewNop(),
	})
	return NewHandler(svc, cfg)
}

func invoke(t *testing.T, fn echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := fn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestSettleSweepRequiresCronSecret(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/internal/fulfillment/settle", nil)

	rec := invoke(t, h.settle, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSettleSweepAcceptsValidSecret(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/internal/fulfillment/settle", nil)
	req.Header.Set(CronSecretHeader, "cron-secret")

	rec := invoke(t, h.settle, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSettleRejectsMalformedOrderID(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/internal/fulfillment/settle?order_id=abc", nil)

	rec := invoke(t, h.settle, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTrackRequiresBearerToken(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/internal/fulfillment/track", nil)
	if rec := invoke(t, h.track, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/internal/fulfillment/track", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer wrong")
	if rec := invoke(t, h.track, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/internal/fulfillment/track", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tracking-token")
	if rec := invoke(t, h.track, req); rec.Code != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200", rec.Code)
	}
}

func TestReconcileRequiresCronSecret(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/internal/fulfillment/reconcile", nil)
	req.Header.Set(CronSecretHeader, "wrong")

	rec := invoke(t, h.reconcile, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestBookRequiresOrderID(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/internal/fulfillment/book", nil)

	rec := invoke(t, h.book, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
