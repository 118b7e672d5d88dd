package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	stored *Settings
	err    error
}

func (r *memRepo) Get(ctx context.Context) (*Settings, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.stored == nil {
		return nil, ErrNotFound
	}
	cp := *r.stored
	return &cp, nil
}

func (r *memRepo) Save(ctx context.Context, s *Settings) error {
	if r.err != nil {
		return r.err
	}
	s.UpdatedAt = time.Now()
	cp := *s
	r.stored = &cp
	return nil
}

func TestService_GetFallsBackToDefaults(t *testing.T) {
	svc := NewService(&memRepo{})

	st, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), st)
}

func TestService_GetPropagatesStoreErrors(t *testing.T) {
	svc := NewService(&memRepo{err: errors.New("connection refused")})

	_, err := svc.Get(context.Background())
	assert.Error(t, err)
}

func TestService_UpdatePartial(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)

	opening := "08:00"
	evening := int64(350000)
	st, err := svc.Update(context.Background(), UpdateRequest{
		OpeningTime:  &opening,
		PriceEvening: &evening,
	})
	require.NoError(t, err)

	assert.Equal(t, "08:00", st.OpeningTime)
	assert.Equal(t, "24:00", st.ClosingTime)
	assert.Equal(t, int64(350000), st.PriceEvening)
	assert.Equal(t, int64(200000), st.PricePerHour)
	require.NotNil(t, repo.stored)
	assert.Equal(t, "08:00", repo.stored.OpeningTime)
}

func TestService_UpdateValidation(t *testing.T) {
	bad := "8 o'clock"
	midnight := "24:00"
	negative := int64(-1)

	tests := []struct {
		name string
		req  UpdateRequest
		want error
	}{
		{"opening time", UpdateRequest{OpeningTime: &bad}, ErrInvalidOpeningTime},
		{"opening at 24:00", UpdateRequest{OpeningTime: &midnight}, ErrInvalidOpeningTime},
		{"closing time", UpdateRequest{ClosingTime: &bad}, ErrInvalidClosingTime},
		{"negative price", UpdateRequest{PricePerHour: &negative}, ErrInvalidPrice},
		{"empty durations", UpdateRequest{SlotDurations: []int{}}, ErrInvalidSlotDurations},
		{"zero duration", UpdateRequest{SlotDurations: []int{60, 0}}, ErrInvalidSlotDurations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{}
			svc := NewService(repo)

			_, err := svc.Update(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, repo.stored)
		})
	}
}

func TestSettings_PriceFor(t *testing.T) {
	st := Defaults()

	tests := []struct {
		name       string
		start, end string
		want       int64
	}{
		{"day hour", "10:00", "11:00", 200000},
		{"last day minute", "17:59", "18:59", 200000},
		{"evening starts at 18", "18:00", "19:00", 300000},
		{"two hours", "10:00", "12:00", 400000},
		{"ninety minutes", "19:00", "20:30", 450000},
		{"evening rate past midnight", "23:00", "01:00", 600000},
		{"early morning is day rate", "00:00", "01:00", 200000},
		{"degenerate", "10:00", "10:00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.PriceFor(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettings_CrossesMidnight(t *testing.T) {
	st := Defaults()
	assert.False(t, st.CrossesMidnight())

	st.OpeningTime, st.ClosingTime = "16:00", "02:00"
	assert.True(t, st.CrossesMidnight())
}
