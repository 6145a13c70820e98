package fulfillment

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/velure-commerce/velure/internal/dto"
	"github.com/velure-commerce/velure/internal/entity"
	"github.com/velure-commerce/velure/internal/mailer"
	"github.com/velure-commerce/velure/pkg/errorbank"
)

// Notify runs the notification dispatch for exactly one order.
func (s *Service) Notify(ctx context.Context, orderID int64) (*dto.SweepReport, error) {
	ctx, span := serviceTracer.Start(ctx, "Fulfillment.Notify", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	order, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, errorbank.NotFound("order not found", errorbank.WithCause(err))
	}

	report := &dto.SweepReport{}
	s.notifyOne(ctx, order, report)
	return report, nil
}

// NotifyAll dispatches notifications for every order with a freshly generated
// AWB whose emails have not gone out yet.
func (s *Service) NotifyAll(ctx context.Context) (*dto.SweepReport, error) {
	ctx, span := serviceTracer.Start(ctx, "Fulfillment.NotifyAll")
	defer span.End()

	orders, err := s.store.ListAwaitingNotification(ctx)
	if err != nil {
		return nil, errorbank.Internal("failed to load orders awaiting notification", errorbank.WithCause(err))
	}

	report := &dto.SweepReport{}
	for _, order := range orders {
		s.notifyOne(ctx, order, report)
	}

	s.logger.Info("notification sweep finished",
		zap.Int("processed", report.Processed),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}

// notifyOne sends the customer tracking email and the internal new-order
// notice with pickup slip and AWB attachments, then flips the write-once
// email_sent guard. Email delivery is at-least-once while the state update is
// at-most-once: when the final write fails the order is reported failed even
// though the mail already went out.
func (s *Service) notifyOne(ctx context.Context, order *entity.Order, report *dto.SweepReport) {
	report.Processed++
	log := s.logger.With(zap.String("order_number", order.Number))

	// Re-invoking on an already-notified order is a no-op.
	if order.EmailSent || order.WorkflowStatus == entity.WorkflowEmailSent {
		log.Info("order already notified; skipping")
		report.Skipped++
		return
	}
	if order.WorkflowStatus != entity.WorkflowAWBGenerated {
		report.Failures = append(report.Failures, failure(order, "order has no generated awb yet"))
		return
	}
	if order.AWBNumber == "" {
		report.Failures = append(report.Failures, failure(order, "order is missing awb number"))
		return
	}
	if order.CustomerEmail == "" {
		report.Failures = append(report.Failures, failure(order, "order has no customer email"))
		return
	}

	sendFailed := false

	if err := s.sendTrackingEmail(ctx, order); err != nil {
		log.Error("tracking email failed", zap.Error(err))
		report.Failures = append(report.Failures, failure(order, "tracking email: "+err.Error()))
		sendFailed = true
	}

	attachments := s.collectAttachments(ctx, order, log)

	if err := s.sendOpsEmail(ctx, order, attachments); err != nil {
		log.Error("ops email failed", zap.Error(err))
		report.Failures = append(report.Failures, failure(order, "ops email: "+err.Error()))
		sendFailed = true
	}

	if sendFailed {
		return
	}

	order.EmailSent = true
	if err := order.AdvanceWorkflow(entity.WorkflowEmailSent); err != nil {
		log.Warn("workflow already past email; skipping", zap.Error(err))
		report.Skipped++
		return
	}
	if err := s.store.Update(ctx, order, "email_sent", "workflow_status"); err != nil {
		// The emails are already out; only the guard write failed.
		log.Error("emails sent but status update failed", zap.Error(err))
		report.Failures = append(report.Failures, failure(order, "status update failed after email delivery"))
		return
	}

	log.Info("order notifications sent")
	report.Updated++
}

func (s *Service) sendTrackingEmail(ctx context.Context, order *entity.Order) error {
	html, err := mailer.RenderTracking(s.cfg.Shop.Name, order)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, mailer.Message{
		To:      []string{order.CustomerEmail},
		Subject: s.cfg.Shop.Name + ": order " + order.Number + " is on its way",
		HTML:    html,
	})
}

// collectAttachments gathers the AWB PDF and the rendered pickup manifest.
// Either may fail independently; a failure only omits that attachment.
func (s *Service) collectAttachments(ctx context.Context, order *entity.Order, log *zap.Logger) []mailer.Attachment {
	var attachments []mailer.Attachment

	if order.AWBPDFURL != "" {
		if pdf, err := s.courier.FetchAWB(ctx, order.AWBPDFURL); err != nil {
			log.Warn("awb pdf fetch failed; attachment omitted", zap.Error(err))
		} else {
			attachments = append(attachments, mailer.Attachment{
				Filename: "awb-" + order.Number + ".pdf",
				Content:  pdf,
			})
		}
	}

	if pdf, err := s.manifest.Render(ctx, order); err != nil {
		log.Warn("pickup manifest render failed; attachment omitted", zap.Error(err))
	} else {
		attachments = append(attachments, mailer.Attachment{
			Filename: "pickup-" + order.Number + ".pdf",
			Content:  pdf,
		})
	}

	return attachments
}

func (s *Service) sendOpsEmail(ctx context.Context, order *entity.Order, attachments []mailer.Attachment) error {
	html, err := mailer.RenderNewOrder(s.cfg.Shop.Name, order)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, mailer.Message{
		To:          []string{s.cfg.Mail.OpsAddress},
		Subject:     "New order " + order.Number + " ready for pickup",
		HTML:        html,
		Attachments: attachments,
	})
}
