package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/pitch-booking-backend/internal/api"
	"github.com/nekogravitycat/pitch-booking-backend/internal/app"
	"github.com/nekogravitycat/pitch-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/pitch-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/pitch-booking-backend/internal/db"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/storage"
)

const (
	adminUser = "admin"
	adminPass = "pitch-pass"
)

var (
	testRouter    *gin.Engine
	testPool      *pgxpool.Pool
	testContainer *app.Container
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestMain(m *testing.M) {
	// Attempt to load .env from the repository root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("No .env file found or failed to load: %v", err)
	}

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		log.Printf("TEST_DB_DSN not set, skipping database tests")
		os.Exit(0)
	}

	ctx := context.Background()
	var err error
	testPool, err = db.NewPool(ctx, dsn, 4)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	if err := db.Migrate(ctx, testPool); err != nil {
		log.Fatalf("Unable to migrate database: %v\n", err)
	}

	dir, err := os.MkdirTemp("", "pitch-photos")
	if err != nil {
		log.Fatalf("Unable to create storage dir: %v\n", err)
	}
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		log.Fatalf("Unable to init storage: %v\n", err)
	}

	loc, err := time.LoadLocation("Asia/Tashkent")
	if err != nil {
		log.Fatalf("Unable to load timezone: %v\n", err)
	}

	testContainer, err = app.NewContainer(app.Config{
		Logger:        zerolog.Nop(),
		DBPool:        testPool,
		JWTSecret:     "test-secret",
		JWTTTL:        30 * time.Minute,
		BcryptCost:    4, // Lower cost for testing purposes
		AdminUsername: adminUser,
		AdminPassword: adminPass,
		Booking: booking.Config{
			Location:    loc,
			LeadTime:    30 * time.Minute,
			HorizonDays: 30,
			SlotMinutes: 60,
		},
		Clock:   fixedClock{time.Date(2024, 6, 1, 8, 0, 0, 0, loc)},
		Storage: store,
	})
	if err != nil {
		log.Fatalf("Unable to build container: %v\n", err)
	}
	testRouter = testContainer.Router

	gin.SetMode(gin.TestMode)

	exitCode := m.Run()

	testPool.Close()
	_ = os.RemoveAll(dir)
	os.Exit(exitCode)
}

func clearTables() {
	ctx := context.Background()
	queries := []string{
		"TRUNCATE TABLE public.bookings CASCADE",
		"TRUNCATE TABLE public.field_photos CASCADE",
	}
	for _, q := range queries {
		if _, err := testPool.Exec(ctx, q); err != nil {
			log.Printf("Failed to clean table: %v", err)
		}
	}
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func login(t *testing.T) string {
	t.Helper()
	w := executeRequest("POST", "/v1/auth/login", api.LoginRequest{Username: adminUser, Password: adminPass}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res api.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.AccessToken)
	return res.AccessToken
}

func TestAdminLogin(t *testing.T) {
	w := executeRequest("POST", "/v1/auth/login", api.LoginRequest{Username: adminUser, Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t)
	w = executeRequest("GET", "/v1/auth/me", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = executeRequest("GET", "/v1/admin/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingFlow(t *testing.T) {
	clearTables()
	token := login(t)

	var bookingID string

	t.Run("Seeded fields are listed", func(t *testing.T) {
		w := executeRequest("GET", "/v1/fields", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var res struct {
			Items []map[string]any `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Len(t, res.Items, 3)
	})

	t.Run("Customer books a slot", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
			FieldID:       "field_1",
			Date:          "2024-06-02",
			StartTime:     "10:00",
			EndTime:       "11:00",
			CustomerName:  "Aziz",
			CustomerPhone: "+998 90 123-45-67",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var res bookingHttp.CreatedBookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "pending", res.Status)
		assert.Equal(t, int64(200000), res.Price)
		bookingID = res.ID
	})

	t.Run("Overlapping request is rejected", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
			FieldID:       "field_1",
			Date:          "2024-06-02",
			StartTime:     "10:30",
			EndTime:       "11:30",
			CustomerName:  "Bobur",
			CustomerPhone: "901234567",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Availability shows the booking", func(t *testing.T) {
		w := executeRequest("GET", "/v1/availability?date=2024-06-02&field=field_1", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var res bookingHttp.AvailabilityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res.Availability, 1)

		var taken int
		for _, s := range res.Availability[0].Slots {
			if s.Status != booking.SlotFree {
				taken++
				assert.Equal(t, "10:00", s.Start)
			}
		}
		assert.Equal(t, 1, taken)
	})

	t.Run("Admin confirms", func(t *testing.T) {
		status := "confirmed"
		w := executeRequest("PATCH", "/v1/admin/bookings/"+bookingID, bookingHttp.UpdateBookingRequest{Status: &status}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "confirmed", res.Status)
	})

	t.Run("Admin blocks the evening", func(t *testing.T) {
		w := executeRequest("POST", "/v1/admin/blocks", bookingHttp.BlockRequest{
			FieldID: "field_1", Date: "2024-06-02", StartTime: "18:00", EndTime: "20:00",
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var res bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "blocked", res.Status)
		assert.Equal(t, booking.DefaultBlockReason, res.BlockReason)
	})

	t.Run("Admin list filters by status", func(t *testing.T) {
		w := executeRequest("GET", "/v1/admin/bookings?date=2024-06-02&status=confirmed", nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		var res bookingHttp.ListBookingsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, 1, res.Total)
		require.Len(t, res.Items, 1)
		assert.Equal(t, bookingID, res.Items[0].ID)
	})

	t.Run("Cancel frees the slot", func(t *testing.T) {
		status := "cancelled"
		w := executeRequest("PATCH", "/v1/admin/bookings/"+bookingID, bookingHttp.UpdateBookingRequest{Status: &status}, token)
		require.Equal(t, http.StatusOK, w.Code)

		w = executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
			FieldID:       "field_1",
			Date:          "2024-06-02",
			StartTime:     "10:30",
			EndTime:       "11:30",
			CustomerName:  "Bobur",
			CustomerPhone: "901234567",
		}, "")
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("Delete", func(t *testing.T) {
		w := executeRequest("DELETE", "/v1/admin/bookings/"+bookingID, nil, token)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = executeRequest("GET", "/v1/admin/bookings/"+bookingID, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReminderCandidates(t *testing.T) {
	clearTables()
	ctx := context.Background()
	userID := int64(4242)

	created, err := testContainer.BookingService.AdminCreate(ctx, booking.AdminCreateRequest{
		FieldID:      "field_2",
		Date:         "2024-06-01",
		StartTime:    "09:00",
		EndTime:      "10:00",
		CustomerName: "Jasur",
	})
	require.NoError(t, err)

	// Attach a Telegram user directly; admin bookings do not carry one.
	_, err = testPool.Exec(ctx,
		"UPDATE public.bookings SET telegram_user_id = $1, status = 'confirmed' WHERE id = $2", userID, created.ID)
	require.NoError(t, err)

	candidates, err := testContainer.BookingRepo.ListReminderCandidates(ctx, []string{"2024-06-01"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, created.ID, candidates[0].ID)

	require.NoError(t, testContainer.BookingRepo.MarkReminderSent(ctx, created.ID))

	candidates, err = testContainer.BookingRepo.ListReminderCandidates(ctx, []string{"2024-06-01"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestConcurrentBookingsSingleWinner(t *testing.T) {
	clearTables()

	const n = 8
	codes := make(chan int, n)
	for i := 0; i < n; i++ {
		go func() {
			w := executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
				FieldID:       "field_3",
				Date:          "2024-06-03",
				StartTime:     "20:00",
				EndTime:       "21:00",
				CustomerName:  "Racer",
				CustomerPhone: "998901112233",
			}, "")
			codes <- w.Code
		}()
	}

	created := 0
	for i := 0; i < n; i++ {
		switch <-codes {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Errorf("unexpected status")
		}
	}
	assert.Equal(t, 1, created)
}
