package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/repository"
	apperrors "github.com/ryucoder/crown-backend/pkg/errors"
)

type directoryRepository struct {
	BaseRepository
}

func NewDirectoryRepository(base BaseRepository) repository.DirectoryRepository {
	return &directoryRepository{base}
}

func (r *directoryRepository) ListStates(ctx context.Context) ([]*model.State, error) {
	query := `SELECT id, name, gst_code, created_at, updated_at FROM states ORDER BY name`

	states := []*model.State{}
	if err := r.db.SelectContext(ctx, &states, query); err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	return states, nil
}

func (r *directoryRepository) GetState(ctx context.Context, id uuid.UUID) (*model.State, error) {
	query := `SELECT id, name, gst_code, created_at, updated_at FROM states WHERE id = $1`

	var state model.State
	if err := r.db.GetContext(ctx, &state, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.Absent("state")
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	return &state, nil
}

func (r *directoryRepository) ListDistricts(ctx context.Context, stateID uuid.UUID) ([]*model.District, error) {
	query := `
		SELECT id, name, state_id, created_at, updated_at
		FROM districts
		WHERE state_id = $1
		ORDER BY name
	`
	districts := []*model.District{}
	if err := r.db.SelectContext(ctx, &districts, query, stateID); err != nil {
		return nil, fmt.Errorf("failed to list districts: %w", err)
	}
	return districts, nil
}

func (r *directoryRepository) ListCities(ctx context.Context, districtID uuid.UUID) ([]*model.City, error) {
	query := `
		SELECT id, name, district_id, created_at, updated_at
		FROM cities
		WHERE district_id = $1
		ORDER BY name
	`
	cities := []*model.City{}
	if err := r.db.SelectContext(ctx, &cities, query, districtID); err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

func (r *directoryRepository) ListJobTypes(ctx context.Context) ([]*model.JobType, error) {
	query := `SELECT id, option, created_at, updated_at FROM job_types ORDER BY option`

	jobTypes := []*model.JobType{}
	if err := r.db.SelectContext(ctx, &jobTypes, query); err != nil {
		return nil, fmt.Errorf("failed to list job types: %w", err)
	}
	return jobTypes, nil
}

func (r *directoryRepository) ListOptions(ctx context.Context) ([]*model.OrderOption, error) {
	query := `SELECT id, job_type_id, name, created_at, updated_at FROM order_options ORDER BY name`

	options := []*model.OrderOption{}
	if err := r.db.SelectContext(ctx, &options, query); err != nil {
		return nil, fmt.Errorf("failed to list order options: %w", err)
	}
	return options, nil
}

func (r *directoryRepository) MissingOptionIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT candidate.id
		FROM unnest($1::uuid[]) AS candidate(id)
		LEFT JOIN order_options o ON o.id = candidate.id
		WHERE o.id IS NULL
	`
	missing := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &missing, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to check option ids: %w", err)
	}
	return missing, nil
}
