package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"DateServer/apps/user/internal/repository"
	rediskey "DateServer/consts/redisKey"
	"DateServer/model"
	"DateServer/pkg/errorx"
	"DateServer/pkg/logger"
	"DateServer/pkg/scheduler"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var serviceLoggerOnce sync.Once

func initServiceTestLogger() {
	serviceLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestScheduler 虚拟时钟 + 同步执行
func newTestScheduler() (*scheduler.FakeClock, *scheduler.Scheduler) {
	clock := scheduler.NewFakeClock(testEpoch)
	return clock, scheduler.New(clock, scheduler.WithRunner(scheduler.InlineRunner()))
}

// memUserRepository 内存版用户仓储，*Err 字段用于注入失败
type memUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User

	findErr     error
	addLikeErr  error
	unlinkErr   error
	pushErr     error
	pullErr     error
	updateErr   error
	linkMatchFn func(userID, otherID string) error
	discoverFn  func(filter repository.DiscoverFilter, skip, limit int64) ([]*model.User, int64, error)

	linkCalls   int
	unlinkCalls int
}

func newMemUserRepository(users ...*model.User) *memUserRepository {
	r := &memUserRepository{users: make(map[string]*model.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Likes = append([]string(nil), u.Likes...)
	c.Matches = append([]string(nil), u.Matches...)
	c.Messages = append([]model.Message(nil), u.Messages...)
	c.Shows = append([]model.Show(nil), u.Shows...)
	return &c
}

func (r *memUserRepository) get(id string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u)
	}
	return nil
}

func (r *memUserRepository) EnsureIndexes(ctx context.Context) error { return nil }

func (r *memUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u := r.get(id); u != nil {
		return u, nil
	}
	return nil, repository.ErrRecordNotFound
}

func (r *memUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (r *memUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u := r.get(id); u != nil {
			u.Messages = nil
			u.Password = ""
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	delete(r.users, id)
	return ok, nil
}

func (r *memUserRepository) DeleteIfUnverified(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.IsVerified {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *memUserRepository) mutate(id string, fn func(u *model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrRecordNotFound
	}
	fn(u)
	return nil
}

func (r *memUserRepository) UpdateFields(ctx context.Context, id string, set map[string]interface{}, unset ...string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.mutate(id, func(u *model.User) {
		for k, v := range set {
			switch k {
			case "isVerified":
				u.IsVerified = v.(bool)
			case "password":
				u.Password = v.(string)
			case "firstName":
				u.FirstName = v.(string)
			case "lastName":
				u.LastName = v.(string)
			case "interests":
				u.Interests = v.(string)
			case "links":
				u.Links = v.(*model.Links)
			case "details":
				u.Details = v.(*model.Details)
			case "shows":
				u.Shows = v.([]model.Show)
			}
		}
	})
}

func (r *memUserRepository) Discover(ctx context.Context, filter repository.DiscoverFilter, skip, limit int64) ([]*model.User, int64, error) {
	if r.discoverFn != nil {
		return r.discoverFn(filter, skip, limit)
	}
	excluded := make(map[string]bool, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = true
	}
	r.mu.Lock()
	var all []*model.User
	for _, u := range r.users {
		if !excluded[u.ID] {
			all = append(all, cloneUser(u))
		}
	}
	r.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	if skip >= total {
		return []*model.User{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (r *memUserRepository) AddLike(ctx context.Context, targetID, likerID string) error {
	if r.addLikeErr != nil {
		return r.addLikeErr
	}
	return r.mutate(targetID, func(u *model.User) {
		if !u.HasLiked(likerID) {
			u.Likes = append(u.Likes, likerID)
		}
	})
}

func (r *memUserRepository) LinkMatch(ctx context.Context, userID, otherID string) error {
	r.linkCalls++
	if r.linkMatchFn != nil {
		if err := r.linkMatchFn(userID, otherID); err != nil {
			return err
		}
	}
	return r.mutate(userID, func(u *model.User) {
		u.Likes = removeID(u.Likes, otherID)
		if !u.IsMatchedWith(otherID) {
			u.Matches = append(u.Matches, otherID)
		}
	})
}

func (r *memUserRepository) UnlinkMatch(ctx context.Context, userID, otherID string) error {
	r.unlinkCalls++
	if r.unlinkErr != nil {
		return r.unlinkErr
	}
	return r.mutate(userID, func(u *model.User) {
		u.Matches = removeID(u.Matches, otherID)
	})
}

func (r *memUserRepository) PushMessage(ctx context.Context, ownerID string, msg *model.Message) error {
	if r.pushErr != nil {
		return r.pushErr
	}
	return r.mutate(ownerID, func(u *model.User) {
		u.Messages = append(u.Messages, *msg)
	})
}

func (r *memUserRepository) PullMessages(ctx context.Context, ownerID string, messageIDs ...string) error {
	if r.pullErr != nil {
		return r.pullErr
	}
	drop := make(map[string]bool, len(messageIDs))
	for _, id := range messageIDs {
		drop[id] = true
	}
	return r.mutate(ownerID, func(u *model.User) {
		kept := u.Messages[:0]
		for _, m := range u.Messages {
			if !drop[m.ID] {
				kept = append(kept, m)
			}
		}
		u.Messages = kept
	})
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// memAuthRepository 内存版验证码与会话仓储
type memAuthRepository struct {
	mu       sync.Mutex
	otps     map[string]string
	sessions map[string]string
	resent   map[string]bool

	unavailable bool
}

func newMemAuthRepository() *memAuthRepository {
	return &memAuthRepository{
		otps:     make(map[string]string),
		sessions: make(map[string]string),
		resent:   make(map[string]bool),
	}
}

func otpMapKey(email string, otpType int32) string {
	return fmt.Sprintf("%s|%d", email, otpType)
}

func (r *memAuthRepository) StoreOTP(ctx context.Context, email, otp string, otpType int32, ttl time.Duration) error {
	if r.unavailable {
		return repository.ErrRedisUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.otps[otpMapKey(email, otpType)] = otp
	return nil
}

func (r *memAuthRepository) GetOTP(ctx context.Context, email string, otpType int32) (string, error) {
	if r.unavailable {
		return "", repository.ErrRedisUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.otps[otpMapKey(email, otpType)]
	if !ok {
		return "", repository.ErrRedisNil
	}
	return v, nil
}

func (r *memAuthRepository) DeleteOTP(ctx context.Context, email string, otpType int32) error {
	if r.unavailable {
		return repository.ErrRedisUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.otps, otpMapKey(email, otpType))
	return nil
}

func (r *memAuthRepository) AcquireResend(ctx context.Context, email string) (bool, error) {
	if r.unavailable {
		return false, repository.ErrRedisUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resent[email] {
		return false, nil
	}
	r.resent[email] = true
	return true, nil
}

func (r *memAuthRepository) StoreSession(ctx context.Context, userID, tokenHash string, ttl time.Duration) error {
	if r.unavailable {
		return repository.ErrRedisUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = tokenHash
	return nil
}

func (r *memAuthRepository) GetSession(ctx context.Context, userID string) (string, error) {
	if r.unavailable {
		return "", repository.ErrRedisUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.sessions[userID]
	if !ok {
		return "", repository.ErrRedisNil
	}
	return v, nil
}

func (r *memAuthRepository) DeleteSession(ctx context.Context, userID string) error {
	if r.unavailable {
		return repository.ErrRedisUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}

func (r *memAuthRepository) ClearAccount(ctx context.Context, userID, email string) error {
	if r.unavailable {
		return repository.ErrRedisUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	delete(r.otps, otpMapKey(email, rediskey.OTPTypeSignup))
	delete(r.otps, otpMapKey(email, rediskey.OTPTypeReset))
	delete(r.resent, email)
	return nil
}

// fakeCardCache 直接读仓储，记录失效调用
type fakeCardCache struct {
	users       repository.IUserRepository
	invalidated []string
}

func (c *fakeCardCache) Get(ctx context.Context, userID string) (*model.UserCard, error) {
	u, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Card(), nil
}

func (c *fakeCardCache) Invalidate(ctx context.Context, userIDs ...string) {
	c.invalidated = append(c.invalidated, userIDs...)
}

func requireAppCode(t *testing.T, err error, wantCode int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, wantCode, errorx.CodeOf(err))
}
