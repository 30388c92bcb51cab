package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGetHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "regular password", password: "password123"},
		{name: "password with special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "72 bytes is the bcrypt limit", password: string(make([]byte, 72))},
		{name: "longer than 72 bytes", password: string(make([]byte, 73)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := GetHash(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NoError(t, CompareHash(hash, tt.password))
		})
	}
}

func TestCompareHash(t *testing.T) {
	correct, err := GetHash("correct_password")
	require.NoError(t, err)
	another, err := GetHash("another_password")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		wantErr  error
	}{
		{name: "matching password", hash: correct, password: "correct_password"},
		{name: "wrong password", hash: correct, password: "wrong_password", wantErr: ErrMismatch},
		{name: "other hash", hash: another, password: "correct_password", wantErr: ErrMismatch},
		{name: "empty password", hash: correct, password: "", wantErr: ErrMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompareHash(tt.hash, tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompareHash_BrokenHash(t *testing.T) {
	err := CompareHash("not-a-bcrypt-hash", "password")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}
