package field

import (
	"context"
	"strings"
)

// CreateFieldRequest carries data to create a field.
type CreateFieldRequest struct {
	ID          string
	Name        string
	Surface     string
	Description string
	Order       int
	Active      bool
}

// UpdateFieldRequest carries data for partial updates.
type UpdateFieldRequest struct {
	Name        *string
	Surface     *string
	Description *string
	Order       *int
	Active      *bool
}

type Service interface {
	Create(ctx context.Context, req CreateFieldRequest) (*Field, error)
	GetByID(ctx context.Context, id string) (*Field, error)
	List(ctx context.Context, filter Filter) ([]*Field, error)
	// ListActive returns the bookable fields in display order.
	ListActive(ctx context.Context) ([]*Field, error)
	Update(ctx context.Context, id string, req UpdateFieldRequest) (*Field, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateFieldRequest) (*Field, error) {
	id := strings.TrimSpace(req.ID)
	if !idPattern.MatchString(id) {
		return nil, ErrInvalidID
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	f := &Field{
		ID:          id,
		Name:        name,
		Surface:     req.Surface,
		Description: req.Description,
		Order:       req.Order,
		Active:      req.Active,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Field, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Field, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListActive(ctx context.Context) ([]*Field, error) {
	return s.repo.List(ctx, Filter{ActiveOnly: true})
}

func (s *service) Update(ctx context.Context, id string, req UpdateFieldRequest) (*Field, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		f.Name = name
	}
	if req.Surface != nil {
		f.Surface = *req.Surface
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.Order != nil {
		f.Order = *req.Order
	}
	if req.Active != nil {
		f.Active = *req.Active
	}

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}
