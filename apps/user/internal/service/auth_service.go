package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"DateServer/apps/user/internal/dto"
	"DateServer/apps/user/internal/repository"
	"DateServer/config"
	"DateServer/consts"
	rediskey "DateServer/consts/redisKey"
	"DateServer/model"
	"DateServer/pkg/ctxmeta"
	"DateServer/pkg/errorx"
	"DateServer/pkg/logger"
	"DateServer/pkg/mail"
	"DateServer/pkg/scheduler"
	"DateServer/pkg/util"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// unverifiedKeyPrefix 未验证账号删除任务键前缀，完整键为 unverified:{user_id}
const unverifiedKeyPrefix = "unverified:"

// tokenType 登录令牌类型
const tokenType = "Bearer"

// UnverifiedKey 未验证账号删除任务键
func UnverifiedKey(userID string) string {
	return unverifiedKeyPrefix + userID
}

// authServiceImpl 认证服务实现
type authServiceImpl struct {
	users   repository.IUserRepository
	auth    repository.IAuthRepository
	cards   repository.ICardCache
	sched   *scheduler.Scheduler
	tracker *WindowTracker
	mailer  mail.Sender
	match   config.MatchConfig
	jwt     config.JWTConfig
}

// NewAuthService 创建认证服务实例
func NewAuthService(
	users repository.IUserRepository,
	auth repository.IAuthRepository,
	cards repository.ICardCache,
	sched *scheduler.Scheduler,
	tracker *WindowTracker,
	mailer mail.Sender,
	match config.MatchConfig,
	jwtCfg config.JWTConfig,
) IAuthService {
	return &authServiceImpl{
		users:   users,
		auth:    auth,
		cards:   cards,
		sched:   sched,
		tracker: tracker,
		mailer:  mailer,
		match:   match,
		jwt:     jwtCfg,
	}
}

// Signup 用户注册
// 业务流程：
//  1. 校验密码强度、邮箱是否已注册
//  2. 创建未验证账号（bcrypt 加密密码）
//  3. 生成验证码写入 Redis 并发送邮件，任一步失败回滚账号
//  4. 注册 UnverifiedTTL 后的删除任务，到期仍未验证则删除账号
func (s *authServiceImpl) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	email := normalizeEmail(req.Email)
	if req.Password != req.ConfirmPassword {
		return nil, errorx.Validation(consts.CodeParamError, "passwords do not match")
	}
	if !isStrongPassword(req.Password) {
		return nil, errorx.Validation(consts.CodeParamError, "password must contain upper and lower case letters, a number and a symbol")
	}

	// 1. 邮箱是否已注册
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, errorx.Conflict(consts.CodeUserAlreadyExist)
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		logger.Error(ctx, "注册查询邮箱失败",
			logger.String("email", util.MaskEmail(email)),
			logger.ErrorField("error", err),
		)
		return nil, errorx.Dependency("find user by email", err)
	}

	// 2. 创建账号
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errorx.Internal("hash password", err)
	}
	user := &model.User{
		ID:        util.GenIDString(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, errorx.Conflict(consts.CodeUserAlreadyExist)
		}
		logger.Error(ctx, "创建用户失败",
			logger.String("email", util.MaskEmail(email)),
			logger.ErrorField("error", err),
		)
		return nil, errorx.Dependency("create user", err)
	}

	// 3. 验证码
	if err := s.sendOTP(ctx, user, rediskey.OTPTypeSignup, rediskey.SignupOTPTTL,
		"Thanks for signing up. Use the code below to verify your email address."); err != nil {
		s.rollbackSignup(ctx, user.ID)
		return nil, err
	}

	// 4. 未验证账号到期删除
	s.armUnverified(ctx, user.ID, email)

	logger.Info(ctx, "用户注册成功，等待邮箱验证",
		logger.String("user_id", user.ID),
		logger.String("email", util.MaskEmail(email)),
	)
	return &dto.SignupResponse{
		UserID:        user.ID,
		Email:         email,
		ExpireSeconds: int64(rediskey.SignupOTPTTL / time.Second),
	}, nil
}

// armUnverified 注册未验证账号删除任务
func (s *authServiceImpl) armUnverified(ctx context.Context, userID, email string) {
	s.sched.Schedule(ctxmeta.Detach(ctx), UnverifiedKey(userID), s.match.UnverifiedTTL, func(runCtx context.Context) {
		deleted, err := s.users.DeleteIfUnverified(runCtx, userID)
		if err != nil {
			logger.Error(runCtx, "删除未验证账号失败",
				logger.String("user_id", userID),
				logger.ErrorField("error", err),
			)
			return
		}
		if !deleted {
			return
		}
		if err := s.auth.DeleteOTP(runCtx, email, rediskey.OTPTypeSignup); err != nil && !errors.Is(err, repository.ErrRedisUnavailable) {
			logger.Warn(runCtx, "删除注册验证码失败",
				logger.String("user_id", userID),
				logger.ErrorField("error", err),
			)
		}
		logger.Info(runCtx, "账号超时未验证，已删除", logger.String("user_id", userID))
	})
}

func (s *authServiceImpl) rollbackSignup(ctx context.Context, userID string) {
	if _, err := s.users.Delete(ctx, userID); err != nil {
		logger.Error(ctx, "注册回滚删除账号失败",
			logger.String("user_id", userID),
			logger.ErrorField("error", err),
		)
	}
}

// sendOTP 生成验证码、写入 Redis 并发送邮件
func (s *authServiceImpl) sendOTP(ctx context.Context, user *model.User, otpType int32, ttl time.Duration, intro string) error {
	otp, err := util.GenerateOTP()
	if err != nil {
		return errorx.Internal("generate otp", err)
	}
	if err := s.auth.StoreOTP(ctx, user.Email, otp, otpType, ttl); err != nil {
		logger.Error(ctx, "存储验证码失败",
			logger.String("email", util.MaskEmail(user.Email)),
			logger.ErrorField("error", err),
		)
		return errorx.Wrap(errorx.KindDependency, consts.CodeServiceUnavailable, "", err)
	}

	html, err := mail.RenderOTP(mail.OTPMail{
		Name:    user.FirstName,
		Intro:   intro,
		Code:    otp,
		Minutes: int(ttl / time.Minute),
	})
	if err != nil {
		return errorx.Internal("render otp mail", err)
	}
	if err := s.mailer.Send(ctx, user.Email, "Your Just Date verification code", html); err != nil {
		logger.Error(ctx, "发送验证码邮件失败",
			logger.String("email", util.MaskEmail(user.Email)),
			logger.ErrorField("error", err),
		)
		return errorx.Wrap(errorx.KindDependency, consts.CodeServiceUnavailable, "", err)
	}
	return nil
}

// checkOTP 校验验证码，成功后消耗
func (s *authServiceImpl) checkOTP(ctx context.Context, email, otp string, otpType int32) error {
	stored, err := s.auth.GetOTP(ctx, email, otpType)
	if err != nil {
		if errors.Is(err, repository.ErrRedisNil) {
			return errorx.Validation(consts.CodeVerifyCodeExpire, "")
		}
		logger.Error(ctx, "读取验证码失败",
			logger.String("email", util.MaskEmail(email)),
			logger.ErrorField("error", err),
		)
		return errorx.Wrap(errorx.KindDependency, consts.CodeServiceUnavailable, "", err)
	}
	if stored != otp {
		return errorx.Validation(consts.CodeVerifyCodeError, "")
	}
	if err := s.auth.DeleteOTP(ctx, email, otpType); err != nil {
		logger.Warn(ctx, "删除验证码失败",
			logger.String("email", util.MaskEmail(email)),
			logger.ErrorField("error", err),
		)
	}
	return nil
}

// VerifyOtp 校验注册验证码，已验证账号重复调用直接成功
func (s *authServiceImpl) VerifyOtp(ctx context.Context, req *dto.VerifyOtpRequest) error {
	email := normalizeEmail(req.Email)
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return nil
	}
	if err := s.checkOTP(ctx, email, req.Otp, rediskey.OTPTypeSignup); err != nil {
		return err
	}
	if err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"isVerified": true}); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return errorx.NotFound(consts.CodeUserNotFound)
		}
		return errorx.Dependency("verify user", err)
	}
	s.sched.Cancel(UnverifiedKey(user.ID))
	s.cards.Invalidate(ctx, user.ID)

	logger.Info(ctx, "邮箱验证成功", logger.String("user_id", user.ID))
	return nil
}

// Login 邮箱密码登录，签发令牌并记录会话
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, errorx.NotFound(consts.CodeUserNotFound)
		}
		return nil, errorx.Dependency("find user by email", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		logger.Warn(ctx, "登录密码错误", logger.String("email", util.MaskEmail(email)))
		return nil, errorx.Unauthenticated(consts.CodePasswordError)
	}

	token, err := util.GenerateToken(user.ID)
	if err != nil {
		return nil, errorx.Internal("generate token", err)
	}
	if err := s.auth.StoreSession(ctx, user.ID, util.MD5Hex(token), s.jwt.TTL); err != nil {
		// 会话写入失败时令牌仍可用，校验退化为仅校验签名
		logger.Warn(ctx, "保存登录会话失败",
			logger.String("user_id", user.ID),
			logger.ErrorField("error", err),
		)
	}

	logger.Info(ctx, "用户登录成功", logger.String("user_id", user.ID))
	return &dto.LoginResponse{
		Token:     token,
		TokenType: tokenType,
		ExpiresIn: int64(s.jwt.TTL / time.Second),
		User:      dto.NewProfile(user),
	}, nil
}

// Logout 登出
func (s *authServiceImpl) Logout(ctx context.Context, userID string) error {
	if err := s.auth.DeleteSession(ctx, userID); err != nil && !errors.Is(err, repository.ErrRedisUnavailable) {
		return errorx.Dependency("delete session", err)
	}
	return nil
}

// ForgotPassword 发送重置密码验证码，同一邮箱 1 分钟内只发一次
func (s *authServiceImpl) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := s.auth.AcquireResend(ctx, email)
	if err != nil {
		return nil, errorx.Wrap(errorx.KindDependency, consts.CodeServiceUnavailable, "", err)
	}
	if !ok {
		return nil, errorx.New(errorx.KindConflict, consts.CodeVerifyCodeTooMany, "")
	}

	if err := s.sendOTP(ctx, user, rediskey.OTPTypeReset, rediskey.ResetOTPTTL,
		"We received a request to reset your password. Use the code below to continue."); err != nil {
		return nil, err
	}
	return &dto.ForgotPasswordResponse{ExpireSeconds: int64(rediskey.ResetOTPTTL / time.Second)}, nil
}

// ResetPassword 校验验证码并重置密码，成功后已有会话失效
func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if req.NewPassword != req.ConfirmNewPassword {
		return errorx.Validation(consts.CodeParamError, "passwords do not match")
	}
	if !isStrongPassword(req.NewPassword) {
		return errorx.Validation(consts.CodeParamError, "password must contain upper and lower case letters, a number and a symbol")
	}
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.checkOTP(ctx, email, req.Otp, rediskey.OTPTypeReset); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return errorx.Internal("hash password", err)
	}
	if err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"password": string(hashed)}); err != nil {
		return errorx.Dependency("update password", err)
	}
	if err := s.auth.DeleteSession(ctx, user.ID); err != nil && !errors.Is(err, repository.ErrRedisUnavailable) {
		logger.Warn(ctx, "重置密码后删除会话失败",
			logger.String("user_id", user.ID),
			logger.ErrorField("error", err),
		)
	}
	logger.Info(ctx, "密码已重置", logger.String("user_id", user.ID))
	return nil
}

// DeleteAccount 注销账号
// 其他用户 likes/matches 中残留的 ID 不做清理，窗口检查到期时会判定为 stale
func (s *authServiceImpl) DeleteAccount(ctx context.Context, req *dto.DeleteAccountRequest) error {
	email := normalizeEmail(req.Email)
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return errorx.Unauthenticated(consts.CodePasswordError)
	}

	deleted, err := s.users.Delete(ctx, user.ID)
	if err != nil {
		return errorx.Dependency("delete user", err)
	}
	if !deleted {
		return errorx.NotFound(consts.CodeUserNotFound)
	}

	s.sched.Cancel(UnverifiedKey(user.ID))
	if s.match.CancelOnDissolve && s.tracker != nil {
		if n := s.tracker.CancelFor(user.ID); n > 0 {
			logger.Info(ctx, "注销账号，取消未触发的消息窗口",
				logger.String("user_id", user.ID),
				logger.Int("cancelled", n),
			)
		}
	}
	s.cards.Invalidate(ctx, user.ID)
	if err := s.auth.ClearAccount(ctx, user.ID, email); err != nil && !errors.Is(err, repository.ErrRedisUnavailable) {
		logger.Warn(ctx, "注销账号清理 Redis 失败",
			logger.String("user_id", user.ID),
			logger.ErrorField("error", err),
		)
	}

	logger.Info(ctx, "账号已注销", logger.String("user_id", user.ID))
	return nil
}

// Authenticate 校验令牌签名与登录会话。
// Redis 不可用时只校验签名。
func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := util.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errorx.Unauthenticated(consts.CodeTokenExpired)
		}
		return "", errorx.Unauthenticated(consts.CodeInvalidToken)
	}

	stored, err := s.auth.GetSession(ctx, claims.UserID)
	switch {
	case err == nil:
		if stored != util.MD5Hex(token) {
			return "", errorx.Unauthenticated(consts.CodeInvalidToken)
		}
	case errors.Is(err, repository.ErrRedisNil):
		// 已登出或在其他地方重新登录
		return "", errorx.Unauthenticated(consts.CodeInvalidToken)
	default:
		logger.Warn(ctx, "读取登录会话失败，仅校验令牌签名",
			logger.String("user_id", claims.UserID),
			logger.ErrorField("error", err),
		)
	}
	return claims.UserID, nil
}

func (s *authServiceImpl) findByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, errorx.NotFound(consts.CodeUserNotFound)
		}
		return nil, errorx.Dependency("find user by email", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isStrongPassword 至少 8 位，包含大写、小写、数字与符号
func isStrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
