package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/ryucoder/crown-backend/internal/email"
	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/pkg/logger"
	"github.com/ryucoder/crown-backend/pkg/messaging"
	"github.com/ryucoder/crown-backend/pkg/metrics"
)

const (
	channelEmail  = "email"
	channelBroker = "broker"

	topicOrders   = "orders"
	topicConnects = "connects"
)

// Service fans application events out to email and the message broker.
// Every method is best effort: delivery runs after the owning database
// transaction has committed, and failures are logged and counted but
// never returned to the caller.
type Service struct {
	emailSvc email.Service
	broker   messaging.Broker
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(emailSvc email.Service, broker messaging.Broker, logger *logger.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		emailSvc: emailSvc,
		broker:   broker,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *Service) NotifySignupToken(ctx context.Context, to, token string) {
	s.deliver(channelEmail, "signup_token", s.emailSvc.SendSignupVerification(ctx, to, token))
}

func (s *Service) NotifyPasswordResetToken(ctx context.Context, to, token string) {
	s.deliver(channelEmail, "reset_token", s.emailSvc.SendPasswordReset(ctx, to, token))
}

func (s *Service) NotifyOwnerInvite(ctx context.Context, to, businessName string) {
	s.deliver(channelEmail, "owner_invite", s.emailSvc.SendOwnerInvite(ctx, to, businessName))
}

type orderEvent struct {
	Type       string    `json:"type"`
	OrderID    uuid.UUID `json:"order_id"`
	FromID     uuid.UUID `json:"from_business_id"`
	ToID       uuid.UUID `json:"to_business_id"`
	Status     string    `json:"status"`
	PrevStatus string    `json:"prev_status,omitempty"`
}

func (s *Service) NotifyOrderCreated(ctx context.Context, order *model.Order) {
	err := s.broker.Publish(ctx, topicOrders, orderEvent{
		Type:    "order_created",
		OrderID: order.ID,
		FromID:  order.FromBusinessID,
		ToID:    order.ToBusinessID,
		Status:  string(order.LatestStatus),
	})
	s.countPublish(topicOrders, err)
	s.deliver(channelBroker, "order_created", err)
}

func (s *Service) NotifyOrderStatusChanged(ctx context.Context, order *model.Order, prev model.OrderStatusValue) {
	err := s.broker.Publish(ctx, topicOrders, orderEvent{
		Type:       "order_status_changed",
		OrderID:    order.ID,
		FromID:     order.FromBusinessID,
		ToID:       order.ToBusinessID,
		Status:     string(order.LatestStatus),
		PrevStatus: string(prev),
	})
	s.countPublish(topicOrders, err)
	s.deliver(channelBroker, "order_status_changed", err)
}

type connectEvent struct {
	Type         string    `json:"type"`
	ConnectID    uuid.UUID `json:"connect_id"`
	DentistID    uuid.UUID `json:"dentist_id"`
	LaboratoryID uuid.UUID `json:"laboratory_id"`
	IsActive     bool      `json:"is_active"`
}

func (s *Service) NotifyConnectChanged(ctx context.Context, connect *model.BusinessConnect, kind string) {
	err := s.broker.Publish(ctx, topicConnects, connectEvent{
		Type:         kind,
		ConnectID:    connect.ID,
		DentistID:    connect.DentistID,
		LaboratoryID: connect.LaboratoryID,
		IsActive:     connect.IsActive,
	})
	s.countPublish(topicConnects, err)
	s.deliver(channelBroker, kind, err)
}

func (s *Service) countPublish(topic string, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.BrokerPublishes.WithLabelValues(topic, status).Inc()
}

func (s *Service) deliver(channel, kind string, err error) {
	if err != nil {
		if s.metrics != nil {
			s.metrics.NotificationsFailed.WithLabelValues(channel).Inc()
		}
		s.logger.Error(err, "notification delivery failed", "channel", channel, "kind", kind)
		return
	}
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(channel).Inc()
	}
}
