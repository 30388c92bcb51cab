package query

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/equigest/internal/models"
)

func get(url string) *http.Request {
	return httptest.NewRequest(http.MethodGet, url, nil)
}

func TestDateRange(t *testing.T) {
	start, end, err := DateRange(get("/x?start_date=2024-04-10&end_date=2024-04-20"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC), end)

	for _, url := range []string{
		"/x?end_date=2024-04-20",
		"/x?start_date=2024-04-10",
		"/x?start_date=10.04.2024&end_date=2024-04-20",
		"/x?start_date=2024-02-30&end_date=2024-04-20",
	} {
		_, _, err := DateRange(get(url))
		assert.ErrorIs(t, err, models.ErrInvalidArgument, url)
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		url     string
		want    models.Pagination
		wantErr bool
	}{
		{url: "/x", want: models.Pagination{Page: 1, Size: 10}},
		{url: "/x?page=3&size=25", want: models.Pagination{Page: 3, Size: 25}},
		{url: "/x?page=0", wantErr: true},
		{url: "/x?page=-1", wantErr: true},
		{url: "/x?size=101", wantErr: true},
		{url: "/x?size=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := Pagination(get(tt.url))
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMareType(t *testing.T) {
	got, err := MareType(get("/x"))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = MareType(get("/x?mare_type=RECEIVER"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.MareTypeReceiver, *got)

	_, err = MareType(get("/x?mare_type=DONOR"))
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}
