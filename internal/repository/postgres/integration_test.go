//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pkondratev/auth-server/internal/model"
	repo "github.com/pkondratev/auth-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "auth_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/auth_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func createUser(t *testing.T, ur *repo.UserRepository, email string) model.User {
	t.Helper()
	user, err := ur.Create(context.Background(), model.User{
		Email:          email,
		HashedPassword: "$argon2id$v=19$m=65536,t=2,p=2$c2FsdA$aGFzaA",
		Role:           model.RoleUser,
		IsActive:       true,
	})
	require.NoError(t, err)
	return user
}

func TestUserRepository_Integration(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	user := createUser(t, ur, "user@example.com")

	byEmail, err := ur.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	byID, err := ur.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, byID.Email)

	_, err = ur.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, ur.SetPassword(ctx, user.ID, "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"))
	updated, err := ur.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, user.HashedPassword, updated.HashedPassword)

	// Duplicate email violates the unique constraint.
	_, err = ur.Create(ctx, model.User{
		Email:          user.Email,
		HashedPassword: "x",
		Role:           model.RoleUser,
		IsActive:       true,
	})
	require.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestRefreshTokenRepository_Integration(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	rr := repo.NewRefreshTokenRepository(conn)
	user := createUser(t, ur, "tokens@example.com")

	family := uuid.NewString()
	first := model.RefreshToken{
		UserID:    user.ID,
		TokenHash: "hash-1",
		Family:    family,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, rr.Create(ctx, first))
	require.NoError(t, rr.Create(ctx, model.RefreshToken{
		UserID:    user.ID,
		TokenHash: "hash-2",
		Family:    family,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	got, err := rr.GetByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.UserID)
	require.False(t, got.IsRevoked)

	// First revocation wins, the second observes an already revoked row.
	revoked, err := rr.Revoke(ctx, "hash-1", model.RevokeReasonRotated)
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = rr.Revoke(ctx, "hash-1", model.RevokeReasonRotated)
	require.NoError(t, err)
	require.False(t, revoked)

	got, err = rr.GetByHash(ctx, "hash-1")
	require.NoError(t, err)
	require.True(t, got.IsRevoked)
	require.NotNil(t, got.RevokedAt)
	require.NotNil(t, got.RevokedReason)
	require.Equal(t, model.RevokeReasonRotated, *got.RevokedReason)

	count, err := rr.RevokeFamily(ctx, family, model.RevokeReasonReuse)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	require.NoError(t, rr.Create(ctx, model.RefreshToken{
		UserID:    user.ID,
		TokenHash: "hash-3",
		Family:    uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	count, err = rr.RevokeAllByUser(ctx, user.ID, model.RevokeReasonLogoutAll)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	require.NoError(t, rr.Create(ctx, model.RefreshToken{
		UserID:    user.ID,
		TokenHash: "hash-expired",
		Family:    uuid.NewString(),
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	deleted, err := rr.DeleteExpired(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, deleted, int64(1))

	_, err = rr.GetByHash(ctx, "hash-expired")
	require.ErrorIs(t, err, model.ErrNotFound)
}
