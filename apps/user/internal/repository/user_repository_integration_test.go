package repository

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"DateServer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		log.Printf("failed to start mongo container, integration tests skipped: %s", err)
		os.Exit(m.Run())
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		log.Fatalf("failed to get connection string: %v", err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("failed to connect mongo: %v", err)
	}
	testDB = client.Database("justdate_test")

	code := m.Run()

	_ = client.Disconnect(ctx)
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func newIntegrationRepo(t *testing.T) IUserRepository {
	t.Helper()
	if testDB == nil {
		t.Skip("mongo container not available")
	}
	t.Cleanup(func() {
		require.NoError(t, testDB.Collection(model.CollectionUsers).Drop(context.Background()))
	})
	repo := NewUserRepository(testDB)
	require.NoError(t, repo.EnsureIndexes(context.Background()))
	return repo
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{ID: "1", FirstName: "Ada", Email: "ada@example.com", Password: "hash"}))

	got, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.Empty(t, got.Likes)

	err = repo.Create(ctx, &model.User{ID: "2", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUserRepository_LikeAndMatch(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.User{ID: "1", Email: "a@example.com"}))
	require.NoError(t, repo.Create(ctx, &model.User{ID: "2", Email: "b@example.com"}))

	require.NoError(t, repo.AddLike(ctx, "2", "1"))
	require.NoError(t, repo.AddLike(ctx, "2", "1"))
	b, err := repo.FindByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, b.Likes)

	require.NoError(t, repo.LinkMatch(ctx, "2", "1"))
	require.NoError(t, repo.LinkMatch(ctx, "1", "2"))
	b, err = repo.FindByID(ctx, "2")
	require.NoError(t, err)
	assert.Empty(t, b.Likes)
	assert.Equal(t, []string{"1"}, b.Matches)

	require.NoError(t, repo.UnlinkMatch(ctx, "1", "2"))
	a, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Empty(t, a.Matches)

	assert.ErrorIs(t, repo.UnlinkMatch(ctx, "missing", "1"), ErrRecordNotFound)
}

func TestUserRepository_PushAndPullMessages(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.User{ID: "1", Email: "a@example.com"}))

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, repo.PushMessage(ctx, "1", &model.Message{ID: id, Sender: "1", Receiver: "2", Content: id, Timestamp: ts}))
	}
	require.NoError(t, repo.PullMessages(ctx, "1", "m1"))

	a, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	require.Len(t, a.Messages, 2)
	assert.Equal(t, "m2", a.Messages[0].ID)
	assert.Equal(t, "m3", a.Messages[1].ID)
}

func TestUserRepository_Discover(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()
	complete := func(id string, age int) *model.User {
		return &model.User{
			ID: id, Email: id + "@example.com", Interests: "films",
			Details: &model.Details{Age: age, Height: 170, BodyType: "Average", Gender: "Female"},
		}
	}
	require.NoError(t, repo.Create(ctx, complete("me", 30)))
	require.NoError(t, repo.Create(ctx, complete("a", 25)))
	require.NoError(t, repo.Create(ctx, complete("b", 40)))
	require.NoError(t, repo.Create(ctx, complete("matched", 26)))
	require.NoError(t, repo.Create(ctx, &model.User{ID: "bare", Email: "bare@example.com"}))

	users, total, err := repo.Discover(ctx, DiscoverFilter{ExcludeIDs: []string{"me", "matched"}, MaxAge: 35}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "a", users[0].ID)
	assert.Empty(t, users[0].Password)

	ok, err := repo.DeleteIfUnverified(ctx, "bare")
	require.NoError(t, err)
	assert.True(t, ok)
}
