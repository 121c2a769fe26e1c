//go:build integration

package users

import (
	"context"
	"testing"
	"time"

	"github.com/prajeshElEvEn/microauth/internal/common"
	"github.com/prajeshElEvEn/microauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func startMongo(t *testing.T) *MongoRepository {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	repo := NewMongoRepository(client.Database("microauth_test"))
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo
}

func TestMongo_Integration(t *testing.T) {
	repo := startMongo(t)
	ctx := context.Background()

	t.Run("indexes", func(t *testing.T) {
		// a second call must be a no-op against the same definitions
		require.NoError(t, repo.EnsureIndexes(ctx))

		cur, err := repo.coll.Indexes().List(ctx)
		require.NoError(t, err)
		var specs []bson.M
		require.NoError(t, cur.All(ctx, &specs))

		names := map[string]bool{}
		for _, s := range specs {
			names[s["name"].(string)] = true
		}
		assert.True(t, names["users_email_key"])
		assert.True(t, names["users_reset_password_token_idx"])
	})

	u := &models.User{ID: "0b7c6f5e-1f7a-4e44-9a53-6f0c1d0a2b11", FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Role: models.RoleUser, Password: "hash"}
	_, err := repo.Create(ctx, u)
	require.NoError(t, err)

	t.Run("lookup", func(t *testing.T) {
		byEmail, err := repo.GetUserByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
		assert.Equal(t, "Lovelace", byEmail.LastName)

		byID, err := repo.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
		assert.Nil(t, byID.ResetPasswordToken)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, common.ErrorNotFound)
		_, err = repo.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, common.ErrorNotFound)
		_, err = repo.GetUserByValidResetToken(ctx, "missing", time.Now())
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := *u
		dup.ID = "5d0e1e55-7a44-4f0b-9f0e-3a7b8c2d4e66"
		_, err := repo.Create(ctx, &dup)
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	})

	t.Run("reset token expiry", func(t *testing.T) {
		// BSON dates carry millisecond precision
		expires := time.Now().UTC().Truncate(time.Millisecond).Add(time.Hour)
		u.SetResetToken("tok", expires)
		require.NoError(t, repo.Save(ctx, u))

		got, err := repo.GetUserByValidResetToken(ctx, "tok", expires.Add(-time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		require.NotNil(t, got.ResetPasswordExpires)
		assert.True(t, expires.Equal(*got.ResetPasswordExpires))

		_, err = repo.GetUserByValidResetToken(ctx, "tok", expires)
		assert.ErrorIs(t, err, common.ErrorNotFound)
		_, err = repo.GetUserByValidResetToken(ctx, "other", expires.Add(-time.Hour))
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("save", func(t *testing.T) {
		u.Password = "newhash"
		u.ClearResetToken()
		require.NoError(t, repo.Save(ctx, u))

		got, err := repo.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "newhash", got.Password)
		assert.Nil(t, got.ResetPasswordToken)
		assert.Nil(t, got.ResetPasswordExpires)
	})

	t.Run("save unknown id", func(t *testing.T) {
		ghost := &models.User{ID: "9f1c2d3e-0000-4000-8000-000000000000", Email: "ghost@example.com", Role: models.RoleUser}
		assert.ErrorIs(t, repo.Save(ctx, ghost), common.ErrorNotFound)
	})

	t.Run("save onto taken email", func(t *testing.T) {
		other := &models.User{ID: "7a8b9c0d-1111-4222-8333-444455556666", FirstName: "Grace", LastName: "Hopper",
			Email: "grace@example.com", Role: models.RoleUser, Password: "hash"}
		_, err := repo.Create(ctx, other)
		require.NoError(t, err)

		other.Email = u.Email
		assert.ErrorIs(t, repo.Save(ctx, other), common.ErrorAlreadyExists)
	})
}
