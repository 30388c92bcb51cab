package counters

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/equigest/internal/http/middlewarectx"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Counters(ctx context.Context, ownerUID string) (map[string]int64, error) {
	args := m.Called(ctx, ownerUID)
	counters, _ := args.Get(0).(map[string]int64)
	return counters, args.Error(1)
}

func TestCountersHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		result         map[string]int64
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "счётчики",
			result:         map[string]int64{"total_pregnancies": 4, "pregnancies_in_progress": 2},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_pregnancies":4`,
		},
		{
			name:           "redis недоступен",
			err:            errors.New("dial tcp: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Counters", mock.Anything, "uid-1").Return(tt.result, tt.err)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/mares/counters", nil)
			req = req.WithContext(middlewarectx.WithUser(req.Context(), "uid-1", "studfarm"))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}
