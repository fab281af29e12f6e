package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"DateServer/apps/user/internal/dto"
	"DateServer/apps/user/internal/repository"
	"DateServer/config"
	"DateServer/consts"
	rediskey "DateServer/consts/redisKey"
	"DateServer/pkg/mail/mocks"
	"DateServer/pkg/scheduler"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Sup3r$ecret"

type authFixture struct {
	users   *memUserRepository
	auth    *memAuthRepository
	cards   *fakeCardCache
	clock   *scheduler.FakeClock
	sched   *scheduler.Scheduler
	tracker *WindowTracker
	mailer  *mocks.MockSender
	svc     IAuthService
}

func newAuthFixture(t *testing.T, match config.MatchConfig) *authFixture {
	t.Helper()
	initServiceTestLogger()
	clock, sched := newTestScheduler()
	users := newMemUserRepository()
	f := &authFixture{
		users:   users,
		auth:    newMemAuthRepository(),
		cards:   &fakeCardCache{users: users},
		clock:   clock,
		sched:   sched,
		tracker: NewWindowTracker(users, sched, match.MessageWindow),
		mailer:  mocks.NewMockSender(gomock.NewController(t)),
	}
	f.svc = NewAuthService(f.users, f.auth, f.cards, f.sched, f.tracker, f.mailer, match, config.DefaultJWTConfig())
	return f
}

func (f *authFixture) signup(t *testing.T, email string) *dto.SignupResponse {
	t.Helper()
	f.mailer.EXPECT().Send(gomock.Any(), email, gomock.Any(), gomock.Any()).Return(nil)
	resp, err := f.svc.Signup(context.Background(), &dto.SignupRequest{
		FirstName:       "Alice",
		LastName:        "Liddell",
		Email:           email,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
	return resp
}

func (f *authFixture) otp(t *testing.T, email string, otpType int32) string {
	t.Helper()
	otp, err := f.auth.GetOTP(context.Background(), email, otpType)
	require.NoError(t, err)
	return otp
}

func TestAuthService_SignupCreatesUnverifiedUser(t *testing.T) {
	f := newAuthFixture(t, config.DefaultMatchConfig())

	var mailed string
	f.mailer.EXPECT().
		Send(gomock.Any(), "alice@example.com", gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, to, subject, html string) error {
			mailed = html
			return nil
		})

	resp, err := f.svc.Signup(context.Background(), &dto.SignupRequest{
		FirstName:       "Alice",
		LastName:        "Liddell",
		Email:           " Alice@Example.com ",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.Equal(t, int64(120), resp.ExpireSeconds)

	user := f.users.get(resp.UserID)
	require.NotNil(t, user)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, testPassword, user.Password)

	otp := f.otp(t, "alice@example.com", rediskey.OTPTypeSignup)
	assert.Len(t, otp, 6)
	assert.Contains(t, mailed, otp)

	_, ok := f.sched.Get(UnverifiedKey(resp.UserID))
	assert.True(t, ok)
}

func TestAuthService_SignupValidation(t *testing.T) {
	f := newAuthFixture(t, config.DefaultMatchConfig())
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, &dto.SignupRequest{Email: "a@example.com", Password: "alllowercase1", ConfirmPassword: "alllowercase1"})
	requireAppCode(t, err, consts.CodeParamError)

	_, err = f.svc.Signup(ctx, &dto.SignupRequest{Email: "a@example.com", Password: testPassword, ConfirmPassword: testPassword + "x"})
	requireAppCode(t, err, consts.CodeParamError)
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, config.DefaultMatchConfig())
	f.signup(t, "alice@example.com")

	_, err := f.svc.Signup(context.Background(), &dto.SignupRequest{
		FirstName: "A", LastName: "B", Email: "alice@example.com", Password: testPassword, ConfirmPassword: testPassword,
	})
	requireAppCode(t, err, consts.CodeUserAlreadyExist)
}

func TestAuthService_SignupMailFailureRollsBack(t *testing.T) {
	f := newAuthFixture(t, config.DefaultMatchConfig())
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	_, err := f.svc.Signup(context.Background(), &dto.SignupRequest{
		FirstName: "A", LastName: "B", Email: "alice@example.com", Password: testPassword, ConfirmPassword: testPassword,
	})
	requireAppCode(t, err, consts.CodeServiceUnavailable)

	_, err = f.users.FindByEmail(context.Background(), "alice@example.com")
	assert.Error(t, err)
	assert.Equal(t, 0, f.sched.Pending())
}

func TestAuthService_UnverifiedAccountIsDeletedAfterTTL(t *testing.T) {
	f := newAuthFixture(t, config.DefaultMatchConfig())
	resp := f.signup(t, "alice@example.com")

	f.clock.Advance(2*time.Minute - time.Second)
	assert.NotNil(t, f.users.get(resp.UserID))

	f.clock.Advance(time.Second)
	assert.Nil(t, f.users.get(resp.UserID))
	_, err := f.auth.GetOTP(context.Background(), "alice@example.com", rediskey.OTPTypeSignup)
	assert.Error(t, err)
}

func TestAuthService_VerifyOtp(t *testing.T) {
	f := newAuthFixture(t, config.DefaultMatchConfig())
	resp := f.signup(t, "alice@example.com")
	ctx := context.Background()

	err := f.svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "alice@example.com", Otp: "000000"})
	requireAppCode(t, err, consts.CodeVerifyCodeError)

	otp := f.otp(t, "alice@example.com", rediskey.OTPTypeSignup)
	require.NoError(t, f.svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "alice@example.com", Otp: otp}))

	assert.True(t, f.users.get(resp.UserID).IsVerified)
	assert.Contains(t, f.cards.invalidated, resp.UserID)
	assert.Equal(t, 0, f.sched.Pending())

	f.clock.Advance(time.Hour)
	assert.NotNil(t, f.users.get(resp.UserID))

	// 重复验证直接成功
	require.NoError(t, f.svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "alice@example.com", Otp: otp}))
}

func TestAuthService_VerifyOtpExpiredOrUnknown(t *testing.T) {
	f := newAuthFixture(t, config.DefaultMatchConfig())
	f.signup(t, "alice@example.com")
	ctx := context.Background()
	require.NoError(t, f.auth.DeleteOTP(ctx, "alice@example.com", rediskey.OTPTypeSignup))

	err := f.svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "alice@example.com", Otp: "123456"})
	requireAppCode(t, err, consts.CodeVerifyCodeExpire)

	err = f.svc.VerifyOtp(ctx, &dto.VerifyOtpRequest{Email: "nobody@example.com", Otp: "123456"})
	requireAppCode(t, err, consts.CodeUserNotFound)
}

func TestAuthService_LoginAuthenticateLogout(t *testing.T) {
	f := newAuthFixture(t, config.DefaultMatchConfig())
	signup := f.signup(t, "alice@example.com")
	ctx := context.Background()

	_, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "Wrong-Pass1"})
	requireAppCode(t, err, consts.CodePasswordError)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: testPassword})
	requireAppCode(t, err, consts.CodeUserNotFound)

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(24*3600), resp.ExpiresIn)
	assert.Equal(t, signup.UserID, resp.User.ID)

	userID, err := f.svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, signup.UserID, userID)

	require.NoError(t, f.svc.Logout(ctx, userID))
	_, err = f.svc.Authenticate(ctx, resp.Token)
	requireAppCode(t, err, consts.CodeInvalidToken)
}

func TestAuthService_AuthenticateWithoutRedis(t *testing.T) {
	f := newAuthFixture(t, config.DefaultMatchConfig())
	f.signup(t, "alice@example.com")
	ctx := context.Background()

	f.auth.unavailable = true
	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	userID, err := f.svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)

	_, err = f.svc.Authenticate(ctx, "not-a-jwt")
	requireAppCode(t, err, consts.CodeInvalidToken)
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(t, config.DefaultMatchConfig())
	f.signup(t, "alice@example.com")
	ctx := context.Background()

	f.mailer.EXPECT().Send(gomock.Any(), "alice@example.com", gomock.Any(), gomock.Any()).Return(nil)
	forgot, err := f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(600), forgot.ExpireSeconds)

	_, err = f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "alice@example.com"})
	requireAppCode(t, err, consts.CodeVerifyCodeTooMany)

	otp := f.otp(t, "alice@example.com", rediskey.OTPTypeReset)
	const newPassword = "N3w-Passw0rd"
	require.NoError(t, f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{
		Email: "alice@example.com", Otp: otp, NewPassword: newPassword, ConfirmNewPassword: newPassword,
	}))

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: testPassword})
	requireAppCode(t, err, consts.CodePasswordError)
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: newPassword})
	require.NoError(t, err)

	// 验证码只能使用一次
	err = f.svc.ResetPassword(ctx, &dto.ResetPasswordRequest{
		Email: "alice@example.com", Otp: otp, NewPassword: newPassword, ConfirmNewPassword: newPassword,
	})
	requireAppCode(t, err, consts.CodeVerifyCodeExpire)
}

func TestAuthService_DeleteAccount(t *testing.T) {
	match := config.DefaultMatchConfig()
	match.CancelOnDissolve = true
	f := newAuthFixture(t, match)
	signup := f.signup(t, "alice@example.com")
	ctx := context.Background()
	f.tracker.Arm(ctx, signup.UserID, "bob")
	f.tracker.Arm(ctx, "carol", "dave")

	err := f.svc.DeleteAccount(ctx, &dto.DeleteAccountRequest{Email: "alice@example.com", Password: "Wrong-Pass1"})
	requireAppCode(t, err, consts.CodePasswordError)

	require.NoError(t, f.svc.DeleteAccount(ctx, &dto.DeleteAccountRequest{Email: "alice@example.com", Password: testPassword}))
	assert.Nil(t, f.users.get(signup.UserID))
	assert.Contains(t, f.cards.invalidated, signup.UserID)
	_, err = f.auth.GetOTP(ctx, "alice@example.com", rediskey.OTPTypeSignup)
	assert.ErrorIs(t, err, repository.ErrRedisNil)

	// 未验证删除任务与该用户的窗口都已取消，其他用户的窗口保留
	_, ok := f.sched.Get(UnverifiedKey(signup.UserID))
	assert.False(t, ok)
	_, ok = f.sched.Get(WindowKey(signup.UserID, "bob"))
	assert.False(t, ok)
	_, ok = f.sched.Get(WindowKey("carol", "dave"))
	assert.True(t, ok)
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, isStrongPassword("Sup3r$ecret"))
	assert.False(t, isStrongPassword("Sh0rt!"))
	assert.False(t, isStrongPassword("nouppercase1!"))
	assert.False(t, isStrongPassword("NOLOWERCASE1!"))
	assert.False(t, isStrongPassword("NoDigitsHere!"))
	assert.False(t, isStrongPassword("NoSymbols123"))
}
