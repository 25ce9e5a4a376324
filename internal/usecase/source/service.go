package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"balanced-news/internal/domain/entity"
	"balanced-news/internal/repository"
)

// CreateInput represents the input parameters for registering a new source.
// Empty Category and Region fall back to the entity defaults.
type CreateInput struct {
	Name     string
	FeedURL  string
	Category string
	Region   string
}

// Service provides source registry use cases.
// It handles business logic for source operations and delegates persistence
// to the repository.
type Service struct {
	Repo repository.SourceRepository
}

// Create registers a new source. New sources start active and unpolled.
// Returns a ValidationError for bad input and an error satisfying
// errors.Is(err, entity.ErrDuplicateSource) when the feed URL is already
// registered.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Source, error) {
	src := &entity.Source{
		Name:      in.Name,
		FeedURL:   in.FeedURL,
		Category:  in.Category,
		Region:    in.Region,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, src); err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	return src, nil
}

// List retrieves all sources from the registry.
// Returns an error if the repository operation fails.
func (s *Service) List(ctx context.Context) ([]*entity.Source, error) {
	sources, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// Get retrieves a single source by its ID.
// Returns ErrSourceNotFound if the source does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Source, error) {
	if id <= 0 {
		return nil, &entity.ValidationError{Field: "id", Message: "must be positive"}
	}

	src, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if src == nil {
		return nil, ErrSourceNotFound
	}
	return src, nil
}

// Delete removes a source by its ID.
// Returns ErrSourceNotFound if the source does not exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return &entity.ValidationError{Field: "id", Message: "must be positive"}
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrSourceNotFound
		}
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

// SetActive flips the polling flag. Inactive sources are skipped by full
// ingestion passes but remain reachable through targeted ones.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	if id <= 0 {
		return &entity.ValidationError{Field: "id", Message: "must be positive"}
	}

	if err := s.Repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrSourceNotFound
		}
		return fmt.Errorf("set source active: %w", err)
	}
	return nil
}
