package remove

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/equigest/internal/http/middlewarectx"
	"github.com/magabrotheeeer/equigest/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, ownerUID, name string, outcome models.PregnancyOutcome) error {
	args := m.Called(ctx, ownerUID, name, outcome)
	return args.Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "успешные роды",
			query: "?outcome=SUCCESS_PREGNANCY",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "uid-1", "Zarya", models.OutcomeSuccess).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"deleted":"Zarya"`,
		},
		{
			name:           "без исхода",
			query:          "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "unknown pregnancy outcome",
		},
		{
			name:  "кобыла не найдена",
			query: "?outcome=FAIL_PREGNANCY",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, "uid-1", "Zarya", models.OutcomeFail).Return(models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/mares/Zarya"+tt.query, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("name", "Zarya")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithUser(ctx, "uid-1", "studfarm"))

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
