package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	golangjwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/equigest/internal/http/middlewarectx"
	"github.com/magabrotheeeer/equigest/internal/lib/jwt"
	"github.com/magabrotheeeer/equigest/internal/models"
)

type TokenParserMock struct {
	mock.Mock
}

func (m *TokenParserMock) ParseToken(token string) (*jwt.Claims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*jwt.Claims)
	return claims, args.Error(1)
}

type PaymentServiceMock struct {
	mock.Mock
}

func (m *PaymentServiceMock) EnsureActive(ctx context.Context, userUID string, now time.Time) (models.User, error) {
	args := m.Called(ctx, userUID, now)
	return args.Get(0).(models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const testUID = "550e8400-e29b-41d4-a716-446655440000"

func TestJWTMiddleware(t *testing.T) {
	claims := &jwt.Claims{
		Username:         "studfarm",
		RegisteredClaims: golangjwt.RegisteredClaims{Subject: testUID},
	}
	notUUID := &jwt.Claims{
		Username:         "studfarm",
		RegisteredClaims: golangjwt.RegisteredClaims{Subject: "uid-1"},
	}

	tests := []struct {
		name           string
		authHeader     string
		setupMock      func(m *TokenParserMock)
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:       "valid token",
			authHeader: "Bearer good",
			setupMock: func(m *TokenParserMock) {
				m.On("ParseToken", "good").Return(claims, nil)
			},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:           "missing header",
			setupMock:      func(_ *TokenParserMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic Zm9vOmJhcg==",
			setupMock:      func(_ *TokenParserMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer bad",
			setupMock: func(m *TokenParserMock) {
				m.On("ParseToken", "bad").Return(nil, jwt.ErrInvalidToken)
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "subject is not a uuid",
			authHeader: "Bearer foreign",
			setupMock: func(m *TokenParserMock) {
				m.On("ParseToken", "foreign").Return(notUUID, nil)
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := new(TokenParserMock)
			tt.setupMock(parser)

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				uid, ok := middlewarectx.UserUIDFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, testUID, uid)
				assert.Equal(t, "studfarm", r.Context().Value(middlewarectx.User))
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/mares", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			middlewarectx.JWTMiddleware(parser, newNoopLogger())(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Equal(t, tt.wantCalled, called)
			parser.AssertExpectations(t)
		})
	}
}

func TestPaymentStatusMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		withUser       bool
		serviceErr     error
		wantStatusCode int
		wantHeader     string
		wantCalled     bool
	}{
		{name: "active user passes", withUser: true, wantStatusCode: http.StatusOK, wantCalled: true},
		{
			name:           "defeated user gets 402",
			withUser:       true,
			serviceErr:     models.ErrPaymentRequired,
			wantStatusCode: http.StatusPaymentRequired,
			wantHeader:     "true",
		},
		{name: "deleted user", withUser: true, serviceErr: models.ErrNotFound, wantStatusCode: http.StatusUnauthorized},
		{name: "storage failure", withUser: true, serviceErr: errors.New("db down"), wantStatusCode: http.StatusInternalServerError},
		{name: "no user in context", wantStatusCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := new(PaymentServiceMock)
			if tt.withUser {
				payments.On("EnsureActive", mock.Anything, "uid-1", mock.AnythingOfType("time.Time")).
					Return(models.User{UID: "uid-1"}, tt.serviceErr)
			}

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/mares", nil)
			if tt.withUser {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), "uid-1", "studfarm"))
			}
			w := httptest.NewRecorder()

			middlewarectx.PaymentStatusMiddleware(newNoopLogger(), payments)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Equal(t, tt.wantHeader, w.Header().Get(middlewarectx.PaymentRequiredHeader))
			assert.Equal(t, tt.wantCalled, called)
			payments.AssertExpectations(t)
		})
	}
}
