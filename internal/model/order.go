package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatusValue string

const (
	StatusOnhold    OrderStatusValue = "onhold"
	StatusPending   OrderStatusValue = "pending"
	StatusWorking   OrderStatusValue = "working"
	StatusCompleted OrderStatusValue = "completed"
	StatusDelivered OrderStatusValue = "delivered"
	StatusRework    OrderStatusValue = "rework"
)

// statusTransitions is the legal adjacency of the order lifecycle.
// Delivered is terminal; rework restarts the cycle.
var statusTransitions = map[OrderStatusValue][]OrderStatusValue{
	StatusPending:   {StatusWorking, StatusOnhold, StatusRework},
	StatusWorking:   {StatusCompleted, StatusOnhold, StatusRework},
	StatusOnhold:    {StatusPending, StatusWorking},
	StatusCompleted: {StatusDelivered, StatusRework},
	StatusRework:    {StatusPending},
	StatusDelivered: {},
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s OrderStatusValue) bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransition reports whether from→to is a legal move.
func CanTransition(from, to OrderStatusValue) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TeethMap identifies which teeth an order covers. Keys are 4-char
// positions like "ul_1": quadrant (u/l), side (l/r), then tooth 1-8.
// Values must be literal true; false entries are rejected outright.
type TeethMap map[string]bool

const (
	teethMinSize = 1
	teethMaxSize = 32
	teethKeyLen  = 4
)

// Check validates the map and returns the offending rule name, empty
// when valid. Byte 2 of the key is deliberately not checked.
func (t TeethMap) Check() string {
	if len(t) < teethMinSize {
		return "teeth_min"
	}
	if len(t) > teethMaxSize {
		return "teeth_max"
	}

	for key, value := range t {
		if len(key) != teethKeyLen {
			return "invalid_key_length"
		}
		if key[0] != 'u' && key[0] != 'l' {
			return "invalid_key_start"
		}
		if key[1] != 'l' && key[1] != 'r' {
			return "invalid_key_side"
		}
		if key[3] < '1' || key[3] > '8' {
			return "invalid_key_end"
		}
		if !value {
			return "invalid_value"
		}
	}
	return ""
}

type Order struct {
	Base
	DoctorName   string    `db:"doctor_name" json:"doctor_name"`
	PatientName  string    `db:"patient_name" json:"patient_name"`
	PatientAge   int       `db:"patient_age" json:"patient_age"`
	Referrer     *string   `db:"referrer" json:"referrer,omitempty"`
	DeliveryDate time.Time `db:"delivery_date" json:"delivery_date"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	IsUrgent     bool      `db:"is_urgent" json:"is_urgent"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	Teeth        TeethMap  `db:"-" json:"teeth"`

	LatestStatus OrderStatusValue `db:"latest_status" json:"latest_status"`

	FromBusinessID uuid.UUID `db:"from_business_id" json:"from_business_id"`
	FromUserID     uuid.UUID `db:"from_user_id" json:"from_user_id"`
	ToBusinessID   uuid.UUID `db:"to_business_id" json:"to_business_id"`
	ToUserID       uuid.UUID `db:"to_user_id" json:"to_user_id"`

	// OrderType is placed|received relative to the caller's business,
	// filled on list reads.
	OrderType string `db:"-" json:"order_type,omitempty"`

	Options []*OrderOption `db:"-" json:"options,omitempty"`
}

// OrderStatus is one immutable row of the order's status history.
type OrderStatus struct {
	Base
	OrderID uuid.UUID        `db:"order_id" json:"order_id"`
	Status  OrderStatusValue `db:"status" json:"status"`
	UserID  uuid.UUID        `db:"user_id" json:"user_id"`
}

type CreateOrderRequest struct {
	ToBusinessID uuid.UUID   `json:"to_business_id" binding:"required"`
	OptionIDs    []uuid.UUID `json:"options_ids" binding:"required"`
	DoctorName   string      `json:"doctor_name" binding:"required"`
	PatientName  string      `json:"patient_name" binding:"required"`
	PatientAge   int         `json:"patient_age" binding:"required,gt=0"`
	Referrer     *string     `json:"referrer"`
	DeliveryDate time.Time   `json:"delivery_date" binding:"required"`
	Notes        *string     `json:"notes"`
	IsUrgent     bool        `json:"is_urgent"`
	Teeth        TeethMap    `json:"teeth" binding:"required,teeth"`
}

type UpdateOrderRequest struct {
	DoctorName   *string     `json:"doctor_name"`
	PatientName  *string     `json:"patient_name"`
	PatientAge   *int        `json:"patient_age" binding:"omitempty,gt=0"`
	Referrer     *string     `json:"referrer"`
	DeliveryDate *time.Time  `json:"delivery_date"`
	Notes        *string     `json:"notes"`
	IsUrgent     *bool       `json:"is_urgent"`
	Teeth        TeethMap    `json:"teeth" binding:"omitempty,teeth"`
	OptionIDs    []uuid.UUID `json:"options_ids"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatusValue `json:"status" binding:"required"`
}
