package auth

import (
	"testing"
	"time"

	"postboard/app/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", time.Hour, GoogleIssuers)
}

func testUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Email: "jane@example.com", Name: "Jane Doe"}
}

func TestIssueAndResolve(t *testing.T) {
	m := newTestManager()
	user := testUser()

	token, err := m.Issue(user)
	require.NoError(t, err)

	id, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), id)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestResolveRejects(t *testing.T) {
	m := newTestManager()
	user := testUser()

	t.Run("empty token", func(t *testing.T) {
		_, err := m.Resolve("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Resolve("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("id claim signed with another secret", func(t *testing.T) {
		forged, err := NewTokenManager("other-secret", time.Hour, nil).Issue(user)
		require.NoError(t, err)

		_, err = m.Resolve(forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired first-party token", func(t *testing.T) {
		token, err := m.Issue(user)
		require.NoError(t, err)

		later := newTestManager()
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.Resolve(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token with id claim", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"id":  user.ID.Hex(),
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Resolve(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestResolveThirdParty(t *testing.T) {
	m := newTestManager()

	thirdParty := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("provider-key"))
		require.NoError(t, err)
		return token
	}

	t.Run("trusted issuer yields subject", func(t *testing.T) {
		id, err := m.Resolve(thirdParty(jwt.MapClaims{
			"iss": "https://accounts.google.com",
			"sub": "109876543210",
			"exp": time.Now().Add(time.Hour).Unix(),
		}))
		require.NoError(t, err)
		assert.Equal(t, "accounts.google.com|109876543210", id)
	})

	t.Run("subject shaped like a user id stays namespaced", func(t *testing.T) {
		victim := primitive.NewObjectID().Hex()
		id, err := m.Resolve(thirdParty(jwt.MapClaims{
			"iss": "accounts.google.com",
			"sub": victim,
		}))
		require.NoError(t, err)
		assert.NotEqual(t, victim, id)
		assert.Equal(t, ExternalID("https://accounts.google.com", victim), id)
		_, err = primitive.ObjectIDFromHex(id)
		assert.Error(t, err)
	})

	t.Run("untrusted issuer", func(t *testing.T) {
		_, err := m.Resolve(thirdParty(jwt.MapClaims{
			"iss": "https://evil.example.com",
			"sub": "1",
		}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := m.Resolve(thirdParty(jwt.MapClaims{
			"iss": "accounts.google.com",
			"sub": "1",
			"exp": time.Now().Add(-time.Minute).Unix(),
		}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := m.Resolve(thirdParty(jwt.MapClaims{"iss": "accounts.google.com"}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no trusted issuers configured", func(t *testing.T) {
		strict := NewTokenManager("test-secret", time.Hour, nil)
		_, err := strict.Resolve(thirdParty(jwt.MapClaims{"iss": "accounts.google.com", "sub": "1"}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer   abc ", want: "abc"},
		{header: "", wantErr: ErrMissingToken},
		{header: "Bearer ", wantErr: ErrMissingToken},
		{header: "bearer", wantErr: ErrMissingToken},
		{header: "Basic abc", wantErr: ErrInvalidToken},
		{header: "abc", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
