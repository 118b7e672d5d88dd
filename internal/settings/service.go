package settings

import (
	"context"
	"errors"
	"strings"
)

// UpdateRequest carries data for partial updates.
type UpdateRequest struct {
	OpeningTime        *string
	ClosingTime        *string
	SlotDurations      []int
	PricePerHour       *int64
	PriceEvening       *int64
	Currency           *string
	ContactPhone       *string
	ContactTelegram    *string
	LocationAddress    *string
	CancellationPolicy *string
}

type Service interface {
	// Get returns the stored settings, or Defaults when none were saved yet.
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, req UpdateRequest) (Settings, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context) (Settings, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Defaults(), nil
		}
		return Settings{}, err
	}
	return *st, nil
}

func (s *service) Update(ctx context.Context, req UpdateRequest) (Settings, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return Settings{}, err
	}

	// Apply non-nil fields
	if req.OpeningTime != nil {
		st.OpeningTime = strings.TrimSpace(*req.OpeningTime)
	}
	if req.ClosingTime != nil {
		st.ClosingTime = strings.TrimSpace(*req.ClosingTime)
	}
	if req.SlotDurations != nil {
		st.SlotDurations = append([]int(nil), req.SlotDurations...)
	}
	if req.PricePerHour != nil {
		st.PricePerHour = *req.PricePerHour
	}
	if req.PriceEvening != nil {
		st.PriceEvening = *req.PriceEvening
	}
	if req.Currency != nil {
		st.Currency = strings.TrimSpace(*req.Currency)
	}
	if req.ContactPhone != nil {
		st.ContactPhone = *req.ContactPhone
	}
	if req.ContactTelegram != nil {
		st.ContactTelegram = *req.ContactTelegram
	}
	if req.LocationAddress != nil {
		st.LocationAddress = *req.LocationAddress
	}
	if req.CancellationPolicy != nil {
		st.CancellationPolicy = *req.CancellationPolicy
	}

	if err := st.Validate(); err != nil {
		return Settings{}, err
	}

	if err := s.repo.Save(ctx, &st); err != nil {
		return Settings{}, err
	}
	return st, nil
}
