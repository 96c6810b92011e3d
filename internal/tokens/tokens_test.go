package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todofy/todofy/internal/config"
	"github.com/todofy/todofy/internal/models"
)

func testConfig(secret string) *config.Config {
	return &config.Config{Auth: config.AuthConfig{Secret: secret}}
}

func testUser() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Email: "alice@example.com",
		Name:  "Alice",
	}
}

func TestGenerateAndVerifyRoundTrip(t *testing.T) {
	cfg := testConfig("test-secret")
	u := testUser()

	raw, err := GenerateAccessToken(cfg, u, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	tok, err := NewHS256Verifier("test-secret").Verify(context.Background(), raw)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, u.ID.Hex(), claims["sub"])
	require.Equal(t, "Alice", claims["name"])
	require.Equal(t, "alice@example.com", claims["email"])
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	cfg := testConfig("test-secret")
	raw, err := GenerateAccessToken(cfg, testUser(), -time.Minute)
	require.NoError(t, err)

	_, err = NewHS256Verifier("test-secret").Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	cfg := testConfig("test-secret")
	raw, err := GenerateAccessToken(cfg, testUser(), time.Minute)
	require.NoError(t, err)

	_, err = NewHS256Verifier("other-secret").Verify(context.Background(), raw)
	require.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewHS256Verifier("test-secret").Verify(context.Background(), "not.a.jwt")
	require.Error(t, err)
}
