package fulfillment

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/client/easyparcel"
	"github.com/velure-commerce/velure/internal/config"
	"github.com/velure-commerce/velure/internal/entity"
	"github.com/velure-commerce/velure/internal/mailer"
)

var errNotFound = errors.New("order not found")

// fakeStore is an in-memory OrderStore. Updates are recorded per call so tests
// can assert which columns a step persisted.
type fakeStore struct {
	mu        sync.Mutex
	orders    map[int64]*entity.Order
	updates   [][]string
	updateErr error

	awaitingSettlement   []*entity.Order
	awaitingAWB          []*entity.Order
	trackable            []*entity.Order
	awaitingNotification []*entity.Order
}

func newFakeStore(orders ...*entity.Order) *fakeStore {
	s := &fakeStore{orders: make(map[int64]*entity.Order, len(orders))}
	for _, order := range orders {
		s.orders[order.ID] = order
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, errNotFound
	}
	return order, nil
}

func (s *fakeStore) GetByNumber(_ context.Context, number string) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.Number == number {
			return order, nil
		}
	}
	return nil, errNotFound
}

func (s *fakeStore) Update(_ context.Context, order *entity.Order, columns ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.orders[order.ID] = order
	s.updates = append(s.updates, columns)
	return nil
}

func (s *fakeStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *fakeStore) ListAwaitingSettlement(context.Context) ([]*entity.Order, error) {
	return s.awaitingSettlement, nil
}

func (s *fakeStore) ListAwaitingAWB(context.Context) ([]*entity.Order, error) {
	return s.awaitingAWB, nil
}

func (s *fakeStore) ListTrackable(context.Context) ([]*entity.Order, error) {
	return s.trackable, nil
}

func (s *fakeStore) ListAwaitingNotification(context.Context) ([]*entity.Order, error) {
	return s.awaitingNotification, nil
}

// fakeCourier dispatches to per-endpoint funcs; unset endpoints fail loudly so
// a test only stubs the calls it expects.
type fakeCourier struct {
	submitFn func(ctx context.Context, req easyparcel.SubmitOrderRequest) (*easyparcel.OrderResult, error)
	payFn    func(ctx context.Context, orderNo string) (*easyparcel.OrderResult, error)
	statusFn func(ctx context.Context, orderNo string) (*easyparcel.OrderResult, error)
	trackFn  func(ctx context.Context, orderNos []string) ([]easyparcel.OrderResult, error)
	awbFn    func(ctx context.Context, url string) ([]byte, error)
}

func (c *fakeCourier) SubmitOrder(ctx context.Context, req easyparcel.SubmitOrderRequest) (*easyparcel.OrderResult, error) {
	if c.submitFn == nil {
		return nil, errors.New("unexpected SubmitOrder call")
	}
	return c.submitFn(ctx, req)
}

func (c *fakeCourier) PayOrder(ctx context.Context, orderNo string) (*easyparcel.OrderResult, error) {
	if c.payFn == nil {
		return nil, errors.New("unexpected PayOrder call")
	}
	return c.payFn(ctx, orderNo)
}

func (c *fakeCourier) OrderStatus(ctx context.Context, orderNo string) (*easyparcel.OrderResult, error) {
	if c.statusFn == nil {
		return nil, errors.New("unexpected OrderStatus call")
	}
	return c.statusFn(ctx, orderNo)
}

func (c *fakeCourier) TrackOrders(ctx context.Context, orderNos []string) ([]easyparcel.OrderResult, error) {
	if c.trackFn == nil {
		return nil, errors.New("unexpected TrackOrders call")
	}
	return c.trackFn(ctx, orderNos)
}

func (c *fakeCourier) FetchAWB(ctx context.Context, url string) ([]byte, error) {
	if c.awbFn == nil {
		return nil, errors.New("unexpected FetchAWB call")
	}
	return c.awbFn(ctx, url)
}

// fakeMailer records outbound messages.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	sendErr error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// fakeRenderer returns a fixed PDF payload.
type fakeRenderer struct {
	pdf []byte
	err error
}

func (r *fakeRenderer) Render(context.Context, *entity.Order) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.pdf, nil
}

func testConfig() config.Config {
	return config.Config{
		Shop: config.Shop{Name: "Velure"},
		Mail: config.Mail{OpsAddress: "ops@velure.test"},
		Courier: config.Courier{
			RequestTimeout: time.Second,
		},
	}
}

func newTestService(store OrderStore, courier CourierGateway, sender mailer.Sender, renderer *fakeRenderer) *Service {
	if renderer == nil {
		renderer = &fakeRenderer{pdf: []byte("%PDF-manifest")}
	}
	return NewService(Deps{
		Store:    store,
		Courier:  courier,
		Mailer:   sender,
		Manifest: renderer,
		Config:   testConfig(),
		Logger:   zap.NewNop(),
	})
}
