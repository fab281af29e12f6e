package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"DateServer/model"
	"DateServer/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func init() {
	logger.ReplaceGlobal(zap.NewNop())
}

func TestWrapDBError(t *testing.T) {
	assert.NoError(t, WrapDBError(nil))
	assert.ErrorIs(t, WrapDBError(mongo.ErrNoDocuments), ErrRecordNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, WrapDBError(dup), ErrDuplicateKey)

	err := WrapDBError(errors.New("socket closed"))
	assert.ErrorIs(t, err, ErrDatabase)
	assert.Contains(t, err.Error(), "socket closed")
}

func TestWrapRedisError(t *testing.T) {
	assert.ErrorIs(t, WrapRedisError(redis.Nil), ErrRedisNil)
	assert.ErrorIs(t, WrapRedisError(errors.New("i/o timeout")), ErrRedis)
}

func TestGetRandomExpireTime(t *testing.T) {
	base := time.Hour
	for i := 0; i < 100; i++ {
		got := getRandomExpireTime(base)
		assert.GreaterOrEqual(t, got, base-base/10)
		assert.LessOrEqual(t, got, base+base/10)
	}
}

func TestOrderByIDs(t *testing.T) {
	users := []*model.User{{ID: "3"}, {ID: "1"}, {ID: "2"}}
	got := orderByIDs([]string{"1", "9", "2", "3"}, users, func(u *model.User) string { return u.ID })

	ids := make([]string, 0, len(got))
	for _, u := range got {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestBuildDiscoverQuery(t *testing.T) {
	q := buildDiscoverQuery(DiscoverFilter{
		ExcludeIDs: []string{"me", "m1"},
		MinAge:     21,
		MaxAge:     30,
		Gender:     "Female",
		Location:   "Pune",
	})

	assert.Equal(t, bson.M{"$nin": []string{"me", "m1"}}, q["_id"])
	assert.Equal(t, bson.M{"$exists": true, "$ne": nil, "$gte": 21, "$lte": 30}, q["details.age"])
	assert.Equal(t, "Female", q["details.gender"])
	assert.Equal(t, "Pune", q["details.location"])
	assert.Equal(t, bson.M{"$exists": true, "$ne": ""}, q["details.bodyType"])
	assert.Equal(t, bson.M{"$exists": true, "$ne": ""}, q["interests"])
}

func TestBuildDiscoverQueryNoOptionalFilters(t *testing.T) {
	q := buildDiscoverQuery(DiscoverFilter{})

	assert.NotContains(t, q, "_id")
	assert.NotContains(t, q, "details.gender")
	assert.Equal(t, bson.M{"$exists": true, "$ne": nil}, q["details.age"])
}

// fakeUserRepository 只覆盖用到的方法，其余调用会 panic
type fakeUserRepository struct {
	IUserRepository
	findByID func(ctx context.Context, id string) (*model.User, error)
	calls    int
}

func (f *fakeUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.calls++
	return f.findByID(ctx, id)
}

func TestCardCacheLocalHit(t *testing.T) {
	repo := &fakeUserRepository{findByID: func(_ context.Context, id string) (*model.User, error) {
		return &model.User{ID: id, FirstName: "Ada", LastName: "L", IsVerified: true, Messages: []model.Message{{ID: "m"}}}, nil
	}}
	cache := NewCardCache(repo, nil)

	card, err := cache.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, &model.UserCard{ID: "1", FirstName: "Ada", LastName: "L", IsVerified: true}, card)

	_, err = cache.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "second read served from the in-process cache")

	cache.Invalidate(context.Background(), "1")
	_, err = cache.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestCardCacheNotFound(t *testing.T) {
	repo := &fakeUserRepository{findByID: func(context.Context, string) (*model.User, error) {
		return nil, ErrRecordNotFound
	}}
	cache := NewCardCache(repo, nil)

	_, err := cache.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAuthRepositoryWithoutRedis(t *testing.T) {
	repo := NewAuthRepository(nil)

	_, err := repo.GetOTP(context.Background(), "a@b.c", 1)
	assert.ErrorIs(t, err, ErrRedisUnavailable)
	assert.ErrorIs(t, repo.StoreSession(context.Background(), "1", "h", time.Minute), ErrRedisUnavailable)
}
