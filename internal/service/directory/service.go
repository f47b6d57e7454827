package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ryucoder/crown-backend/internal/model"
	"github.com/ryucoder/crown-backend/internal/repository"
)

// Reference data changes rarely, so reads are served from an in-process
// cache in front of the database.
const (
	cacheTTL     = 30 * time.Minute
	cacheCleanup = time.Hour

	keyStates   = "states"
	keyJobTypes = "job_types"
	keyOptions  = "options"
)

type Service struct {
	repo  repository.DirectoryRepository
	cache *gocache.Cache
}

func NewService(repo repository.DirectoryRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) ListStates(ctx context.Context) ([]*model.State, error) {
	if cached, ok := s.cache.Get(keyStates); ok {
		return cached.([]*model.State), nil
	}
	states, err := s.repo.ListStates(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(keyStates, states)
	return states, nil
}

func (s *Service) ListDistricts(ctx context.Context, stateID uuid.UUID) ([]*model.District, error) {
	key := fmt.Sprintf("districts:%s", stateID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.District), nil
	}

	// Missing states surface as Absent instead of an empty list.
	if _, err := s.repo.GetState(ctx, stateID); err != nil {
		return nil, err
	}
	districts, err := s.repo.ListDistricts(ctx, stateID)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, districts)
	return districts, nil
}

func (s *Service) ListCities(ctx context.Context, districtID uuid.UUID) ([]*model.City, error) {
	key := fmt.Sprintf("cities:%s", districtID)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.City), nil
	}
	cities, err := s.repo.ListCities(ctx, districtID)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, cities)
	return cities, nil
}

func (s *Service) ListJobTypes(ctx context.Context) ([]*model.JobType, error) {
	if cached, ok := s.cache.Get(keyJobTypes); ok {
		return cached.([]*model.JobType), nil
	}
	jobTypes, err := s.repo.ListJobTypes(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(keyJobTypes, jobTypes)
	return jobTypes, nil
}

func (s *Service) ListOptions(ctx context.Context) ([]*model.OrderOption, error) {
	if cached, ok := s.cache.Get(keyOptions); ok {
		return cached.([]*model.OrderOption), nil
	}
	options, err := s.repo.ListOptions(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(keyOptions, options)
	return options, nil
}
