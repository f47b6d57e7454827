package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/repository"
	"github.com/ryucoder/crown-backend/internal/service/notification"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
	"github.com/ryucoder/crown-backend/pkg/logger"
	"github.com/ryucoder/crown-backend/pkg/metrics"
)

const (
	orderTypePlaced   = "placed"
	orderTypeReceived = "received"
)

type Service struct {
	orders     repository.OrderRepository
	businesses repository.BusinessRepository
	connects   repository.ConnectRepository
	directory  repository.DirectoryRepository
	notifier   *notification.Service
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewService(
	orders repository.OrderRepository,
	businesses repository.BusinessRepository,
	connects repository.ConnectRepository,
	directory repository.DirectoryRepository,
	notifier *notification.Service,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		orders:     orders,
		businesses: businesses,
		connects:   connects,
		directory:  directory,
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics,
	}
}

// Create places an order from the actor's dentist business to a
// connected laboratory. The order, its option tags, and the initial
// pending status are written in one transaction; the created event is
// published after commit.
func (s *Service) Create(ctx context.Context, actor *model.Actor, req *model.CreateOrderRequest) (*model.Order, error) {
	if !actor.IsDentistSide() {
		return nil, apperrors.Forbidden("only dentist businesses can place orders")
	}

	if rule := req.Teeth.Check(); rule != "" {
		return nil, apperrors.InvalidFormat("teeth", rule)
	}

	connect, err := s.connects.GetByPair(ctx, actor.Business.ID, req.ToBusinessID)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeAbsent {
			return nil, apperrors.Precondition("to_business_id", "no connect with this laboratory")
		}
		return nil, err
	}
	if !connect.IsActive {
		return nil, apperrors.Precondition("to_business_id", "connect with this laboratory is inactive")
	}

	missing, err := s.directory.MissingOptionIDs(ctx, req.OptionIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, apperrors.Absent("options_ids")
	}

	toUserID, err := s.businesses.GetOwnerID(ctx, req.ToBusinessID)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		DoctorName:     req.DoctorName,
		PatientName:    req.PatientName,
		PatientAge:     req.PatientAge,
		Referrer:       req.Referrer,
		DeliveryDate:   req.DeliveryDate,
		Notes:          req.Notes,
		IsUrgent:       req.IsUrgent,
		IsActive:       true,
		Teeth:          req.Teeth,
		LatestStatus:   model.StatusPending,
		FromBusinessID: actor.Business.ID,
		FromUserID:     actor.User.ID,
		ToBusinessID:   req.ToBusinessID,
		ToUserID:       toUserID,
	}
	if err := s.orders.Create(ctx, order, req.OptionIDs); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	s.notifier.NotifyOrderCreated(ctx, order)
	return order, nil
}

// Get returns an order visible to the actor, with order_type annotated
// relative to the actor's business.
func (s *Service) Get(ctx context.Context, actor *model.Actor, id uuid.UUID) (*model.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, order); err != nil {
		return nil, err
	}
	annotate(order, actor.Business.ID)
	return order, nil
}

// List pages through orders for the actor's business. Owners see every
// order of the business; employees only the ones they placed or are
// assigned to receive.
func (s *Service) List(ctx context.Context, actor *model.Actor, status model.OrderStatusValue, p model.Pagination) ([]*model.Order, int, error) {
	if status != "" && !model.ValidStatus(status) {
		return nil, 0, apperrors.InvalidFormat("status", "unknown status")
	}

	filter := repository.OrderFilter{
		BusinessID: actor.Business.ID,
		Status:     status,
		ActiveOnly: true,
		Pagination: p,
	}
	if !actor.IsOwner() {
		filter.UserID = actor.User.ID
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for _, order := range orders {
		annotate(order, actor.Business.ID)
	}
	return orders, total, nil
}

// Update edits the mutable order fields. Only the placing dentist side
// may edit, and only while the order is still pending.
func (s *Service) Update(ctx context.Context, actor *model.Actor, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.FromBusinessID != actor.Business.ID {
		return nil, apperrors.Forbidden("only the placing business can edit an order")
	}
	if order.LatestStatus != model.StatusPending {
		return nil, apperrors.Precondition("status", "only pending orders can be edited")
	}

	if req.DoctorName != nil {
		order.DoctorName = *req.DoctorName
	}
	if req.PatientName != nil {
		order.PatientName = *req.PatientName
	}
	if req.PatientAge != nil {
		order.PatientAge = *req.PatientAge
	}
	if req.Referrer != nil {
		order.Referrer = req.Referrer
	}
	if req.DeliveryDate != nil {
		order.DeliveryDate = *req.DeliveryDate
	}
	if req.Notes != nil {
		order.Notes = req.Notes
	}
	if req.IsUrgent != nil {
		order.IsUrgent = *req.IsUrgent
	}
	if req.Teeth != nil {
		if rule := req.Teeth.Check(); rule != "" {
			return nil, apperrors.InvalidFormat("teeth", rule)
		}
		order.Teeth = req.Teeth
	}

	var optionIDs []uuid.UUID
	if req.OptionIDs != nil {
		missing, err := s.directory.MissingOptionIDs(ctx, req.OptionIDs)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			return nil, apperrors.Absent("options_ids")
		}
		optionIDs = req.OptionIDs
	}

	if err := s.orders.Update(ctx, order, optionIDs); err != nil {
		return nil, err
	}
	annotate(order, actor.Business.ID)
	return order, nil
}

// UpdateStatus moves the order along the lifecycle. The move is checked
// against the transition table first and again in the database against
// the current latest_status, so concurrent movers cannot race past it.
func (s *Service) UpdateStatus(ctx context.Context, actor *model.Actor, id uuid.UUID, to model.OrderStatusValue) (*model.Order, error) {
	if !model.ValidStatus(to) {
		return nil, apperrors.InvalidFormat("status", "unknown status")
	}

	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, order); err != nil {
		return nil, err
	}

	from := order.LatestStatus
	if !model.CanTransition(from, to) {
		return nil, apperrors.IllegalTransition(string(from), string(to))
	}

	if err := s.orders.UpdateStatus(ctx, id, from, to, actor.User.ID); err != nil {
		return nil, err
	}

	order.LatestStatus = to
	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(from), string(to)).Inc()
	}
	s.notifier.NotifyOrderStatusChanged(ctx, order, from)

	annotate(order, actor.Business.ID)
	return order, nil
}

// ListStatuses returns the order's full status history.
func (s *Service) ListStatuses(ctx context.Context, actor *model.Actor, id uuid.UUID) ([]*model.OrderStatus, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, order); err != nil {
		return nil, err
	}
	return s.orders.ListStatuses(ctx, id)
}

// Delete soft deletes an order. Only the placing dentist side may
// delete, and only while the order is still pending.
func (s *Service) Delete(ctx context.Context, actor *model.Actor, id uuid.UUID) error {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.FromBusinessID != actor.Business.ID {
		return apperrors.Forbidden("only the placing business can delete an order")
	}
	if order.LatestStatus != model.StatusPending {
		return apperrors.Precondition("status", "only pending orders can be deleted")
	}
	return s.orders.Deactivate(ctx, id)
}

func (s *Service) authorize(actor *model.Actor, order *model.Order) error {
	if order.FromBusinessID != actor.Business.ID && order.ToBusinessID != actor.Business.ID {
		return apperrors.Forbidden("order does not involve your business")
	}
	if !actor.IsOwner() && order.FromUserID != actor.User.ID && order.ToUserID != actor.User.ID {
		return apperrors.Forbidden("order is not assigned to you")
	}
	return nil
}

// annotate sets order_type relative to the viewing business.
func annotate(order *model.Order, businessID uuid.UUID) {
	if order.FromBusinessID == businessID {
		order.OrderType = orderTypePlaced
	} else {
		order.OrderType = orderTypeReceived
	}
}
