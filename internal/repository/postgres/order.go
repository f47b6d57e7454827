package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/repository"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
)

type orderRepository struct {
	BaseRepository
}

func NewOrderRepository(base BaseRepository) repository.OrderRepository {
	return &orderRepository{base}
}

// orderRow carries the teeth JSONB column alongside the model fields.
type orderRow struct {
	model.Order
	TeethJSON []byte `db:"teeth"`
}

func (row *orderRow) toModel() (*model.Order, error) {
	order := row.Order
	if len(row.TeethJSON) > 0 {
		if err := json.Unmarshal(row.TeethJSON, &order.Teeth); err != nil {
			return nil, fmt.Errorf("failed to decode teeth map: %w", err)
		}
	}
	return &order, nil
}

const orderColumns = `
	id, doctor_name, patient_name, patient_age, referrer, delivery_date,
	notes, is_urgent, is_active, teeth, latest_status,
	from_business_id, from_user_id, to_business_id, to_user_id,
	created_at, updated_at
`

func (r *orderRepository) Create(ctx context.Context, order *model.Order, optionIDs []uuid.UUID) error {
	teethJSON, err := json.Marshal(order.Teeth)
	if err != nil {
		return fmt.Errorf("failed to encode teeth map: %w", err)
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		order.ID = uuid.New()
		order.CreatedAt = now
		order.UpdatedAt = now

		orderQuery := `
			INSERT INTO orders (
				id, doctor_name, patient_name, patient_age, referrer,
				delivery_date, notes, is_urgent, is_active, teeth,
				latest_status, from_business_id, from_user_id,
				to_business_id, to_user_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`
		_, err := tx.ExecContext(ctx, orderQuery,
			order.ID, order.DoctorName, order.PatientName, order.PatientAge,
			order.Referrer, order.DeliveryDate, order.Notes, order.IsUrgent,
			order.IsActive, teethJSON, order.LatestStatus,
			order.FromBusinessID, order.FromUserID,
			order.ToBusinessID, order.ToUserID,
			order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, optionID := range optionIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_option_tags (order_id, option_id) VALUES ($1, $2)`,
				order.ID, optionID,
			)
			if err != nil {
				return fmt.Errorf("failed to tag order option: %w", err)
			}
		}

		statusQuery := `
			INSERT INTO order_statuses (id, order_id, status, user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = tx.ExecContext(ctx, statusQuery,
			uuid.New(), order.ID, order.LatestStatus, order.FromUserID, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to create initial order status: %w", err)
		}

		return nil
	})
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var row orderRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("order")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	order, err := row.toModel()
	if err != nil {
		return nil, err
	}

	if err := r.loadOptions(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) loadOptions(ctx context.Context, order *model.Order) error {
	query := `
		SELECT o.id, o.job_type_id, o.name, o.created_at, o.updated_at
		FROM order_options o
		JOIN order_option_tags t ON t.option_id = o.id
		WHERE t.order_id = $1
		ORDER BY o.name
	`
	options := []*model.OrderOption{}
	if err := r.db.SelectContext(ctx, &options, query, order.ID); err != nil {
		return fmt.Errorf("failed to load order options: %w", err)
	}
	order.Options = options
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order, optionIDs []uuid.UUID) error {
	teethJSON, err := json.Marshal(order.Teeth)
	if err != nil {
		return fmt.Errorf("failed to encode teeth map: %w", err)
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE orders
			SET doctor_name = $1, patient_name = $2, patient_age = $3,
				referrer = $4, delivery_date = $5, notes = $6,
				is_urgent = $7, is_active = $8, teeth = $9, updated_at = $10
			WHERE id = $11
		`
		order.UpdatedAt = time.Now()

		result, err := tx.ExecContext(ctx, query,
			order.DoctorName, order.PatientName, order.PatientAge,
			order.Referrer, order.DeliveryDate, order.Notes,
			order.IsUrgent, order.IsActive, teethJSON, order.UpdatedAt,
			order.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.Absent("order")
		}

		if optionIDs != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM order_option_tags WHERE order_id = $1`, order.ID); err != nil {
				return fmt.Errorf("failed to clear order options: %w", err)
			}
			for _, optionID := range optionIDs {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO order_option_tags (order_id, option_id) VALUES ($1, $2)`,
					order.ID, optionID,
				)
				if err != nil {
					return fmt.Errorf("failed to tag order option: %w", err)
				}
			}
		}

		return nil
	})
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to model.OrderStatusValue, actorID uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()

		// Guard on the from status so a concurrent transition loses
		// cleanly instead of double-writing.
		query := `
			UPDATE orders
			SET latest_status = $1, updated_at = $2
			WHERE id = $3 AND latest_status = $4
		`
		result, err := tx.ExecContext(ctx, query, to, now, orderID, from)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			var current model.OrderStatusValue
			err := tx.GetContext(ctx, &current, `SELECT latest_status FROM orders WHERE id = $1`, orderID)
			if err != nil {
				if isNoRows(err) {
					return apperrors.Absent("order")
				}
				return fmt.Errorf("failed to read order status: %w", err)
			}
			return apperrors.IllegalTransition(string(current), string(to))
		}

		statusQuery := `
			INSERT INTO order_statuses (id, order_id, status, user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = tx.ExecContext(ctx, statusQuery, uuid.New(), orderID, to, actorID, now, now)
		if err != nil {
			return fmt.Errorf("failed to append order status: %w", err)
		}
		return nil
	})
}

func (r *orderRepository) ListStatuses(ctx context.Context, orderID uuid.UUID) ([]*model.OrderStatus, error) {
	query := `
		SELECT id, order_id, status, user_id, created_at, updated_at
		FROM order_statuses
		WHERE order_id = $1
		ORDER BY created_at
	`
	statuses := []*model.OrderStatus{}
	if err := r.db.SelectContext(ctx, &statuses, query, orderID); err != nil {
		return nil, fmt.Errorf("failed to list order statuses: %w", err)
	}
	return statuses, nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*model.Order, int, error) {
	where := `(from_business_id = $1 OR to_business_id = $1)`
	args := []interface{}{filter.BusinessID}

	if filter.UserID != uuid.Nil {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(` AND (from_user_id = $%d OR to_user_id = $%d)`, len(args), len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND latest_status = $%d`, len(args))
	}
	if filter.ActiveOnly {
		where += ` AND is_active`
	}

	var total int
	countQuery := `SELECT count(*) FROM orders WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	args = append(args, filter.Pagination.PageSize, filter.Pagination.Offset())
	query := fmt.Sprintf(
		`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args),
	)

	rows := []*orderRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*model.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.toModel()
		if err != nil {
			return nil, 0, err
		}
		if err := r.loadOptions(ctx, order); err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, nil
}

func (r *orderRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE orders SET is_active = false, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.Absent("order")
	}
	return nil
}
