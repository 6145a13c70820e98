package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/velure-commerce/velure/internal/database"
	"github.com/velure-commerce/velure/internal/entity"
)

var repoTracer = otel.Tracer("github.com/velure-commerce/velure/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// Repository encapsulates read/write access for orders and their items.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists a new order together with its line items.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.String("order.number", order.Number)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		for _, item := range order.Items {
			item.OrderID = order.ID
		}
		if len(order.Items) > 0 {
			if _, err := tx.NewInsert().Model(&order.Items).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order with its items by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Relation("Items").Where("o.id = ?", id).Scan(ctx)
	return checkedOrder(span, order, err)
}

// GetByNumber fetches an order with its items by its external order number.
func (r *Repository) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByNumber", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Relation("Items").Where("o.number = ?", number).Scan(ctx)
	return checkedOrder(span, order, err)
}

// Update writes the supplied columns of an order back to the store and bumps
// updated_at. Each pipeline step performs exactly one such conditional write.
func (r *Repository) Update(ctx context.Context, order *entity.Order, columns ...string) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	order.UpdatedAt = time.Now().UTC()
	query := r.writer.NewUpdate().Model(order).WherePK()
	if len(columns) > 0 {
		query = query.Column(append(columns, "updated_at")...)
	}
	if _, err := query.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return nil
}

// ListAwaitingSettlement selects paid orders whose EasyParcel booking exists
// but which have not been assigned a tracking number yet.
func (r *Repository) ListAwaitingSettlement(ctx context.Context) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListAwaitingSettlement")
	defer span.End()

	return r.listWhere(ctx, span, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("o.workflow_status = ?", entity.WorkflowCourierCreated).
			Where("o.payment_status = ?", entity.PaymentPaid).
			Where("o.tracking_number IS NULL OR o.tracking_number = ''")
	})
}

// ListAwaitingAWB selects orders whose settlement succeeded but whose AWB has
// not been issued yet.
func (r *Repository) ListAwaitingAWB(ctx context.Context) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListAwaitingAWB")
	defer span.End()

	return r.listWhere(ctx, span, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("o.workflow_status = ?", entity.WorkflowAWBPending)
	})
}

// ListTrackable selects orders with a carrier order number that have not yet
// reached a terminal delivery status.
func (r *Repository) ListTrackable(ctx context.Context) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListTrackable")
	defer span.End()

	return r.listWhere(ctx, span, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("o.courier_order_no IS NOT NULL AND o.courier_order_no != ''").
			Where("o.delivery_status NOT IN (?)", bun.In(entity.TerminalDeliveryStatuses)).
			Where("o.workflow_status IN (?)", bun.In([]entity.WorkflowStatus{
				entity.WorkflowAWBGenerated,
				entity.WorkflowEmailSent,
			}))
	})
}

// ListAwaitingNotification selects paid orders with a generated AWB whose
// customer email has not gone out yet.
func (r *Repository) ListAwaitingNotification(ctx context.Context) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ListAwaitingNotification")
	defer span.End()

	return r.listWhere(ctx, span, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("o.payment_status = ?", entity.PaymentPaid).
			Where("o.awb_number IS NOT NULL AND o.awb_number != ''").
			Where("o.workflow_status = ?", entity.WorkflowAWBGenerated).
			Where("o.email_sent = ?", false)
	})
}

func (r *Repository) listWhere(ctx context.Context, span trace.Span, apply func(*bun.SelectQuery) *bun.SelectQuery) ([]*entity.Order, error) {
	var orders []*entity.Order
	query := r.reader.NewSelect().Model(&orders).Relation("Items").Order("o.id ASC")
	if err := apply(query).Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

func checkedOrder(span trace.Span, order *entity.Order, err error) (*entity.Order, error) {
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}
