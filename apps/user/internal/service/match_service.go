package service

import (
	"context"
	"errors"
	"fmt"

	"DateServer/apps/user/internal/dto"
	"DateServer/apps/user/internal/repository"
	"DateServer/consts"
	"DateServer/model"
	"DateServer/pkg/errorx"
	"DateServer/pkg/logger"
)

// matchServiceImpl 配对服务实现
type matchServiceImpl struct {
	users   repository.IUserRepository
	tracker *WindowTracker
}

// NewMatchService 创建配对服务实例
func NewMatchService(users repository.IUserRepository, tracker *WindowTracker) IMatchService {
	return &matchServiceImpl{users: users, tracker: tracker}
}

// Like 喜欢一个用户
// 业务流程（按顺序判断）：
//  1. 已配对 -> AlreadyMatched，不做修改
//  2. 双方都没有喜欢过对方 -> 在被喜欢者的 likes 中记录喜欢者
//  3. 对方先喜欢了我（我的 likes 中有对方）-> 清除待回应的喜欢，双方互加 matches，开启消息窗口
//  4. 我之前已经喜欢过对方 -> AlreadyLiked，不做修改
//
// 两个文档分两次写入，第二次写入失败会留下单向配对，按数据一致性错误上报。
func (s *matchServiceImpl) Like(ctx context.Context, likerID, likedID string) (*dto.LikeResponse, error) {
	if likerID == "" || likedID == "" {
		return nil, errorx.Validation(consts.CodeParamError, "")
	}
	if likerID == likedID {
		return nil, errorx.Validation(consts.CodeCannotLikeSelf, "")
	}

	liker, err := s.findUser(ctx, likerID)
	if err != nil {
		return nil, err
	}
	liked, err := s.findUser(ctx, likedID)
	if err != nil {
		return nil, err
	}

	// 1. 已配对
	if liked.IsMatchedWith(likerID) || liker.IsMatchedWith(likedID) {
		if liked.IsMatchedWith(likerID) != liker.IsMatchedWith(likedID) {
			logger.Error(ctx, "配对关系不对称",
				logger.String("liker_id", likerID),
				logger.String("liked_id", likedID),
				logger.Bool("liked_has_liker", liked.IsMatchedWith(likerID)),
				logger.Bool("liker_has_liked", liker.IsMatchedWith(likedID)),
			)
			likesTotal.WithLabelValues("integrity").Inc()
			return nil, errorx.Integrity("asymmetric match", fmt.Errorf("liker=%s liked=%s", likerID, likedID))
		}
		likesTotal.WithLabelValues("already_matched").Inc()
		return nil, errorx.Conflict(consts.CodeAlreadyMatched)
	}

	switch {
	// 2. 双方都没有喜欢过对方
	case !liker.HasLiked(likedID) && !liked.HasLiked(likerID):
		if err := s.users.AddLike(ctx, likedID, likerID); err != nil {
			return nil, s.writeFailed(ctx, "记录喜欢失败", err, likerID, likedID)
		}
		likesTotal.WithLabelValues("liked").Inc()
		return &dto.LikeResponse{Status: dto.LikeStatusLiked, Message: "Liked successfully!"}, nil

	// 3. 对方先喜欢了我，配对成功
	case liker.HasLiked(likedID):
		if err := s.users.LinkMatch(ctx, likerID, likedID); err != nil {
			return nil, s.writeFailed(ctx, "建立配对失败", err, likerID, likedID)
		}
		if err := s.users.LinkMatch(ctx, likedID, likerID); err != nil {
			logger.Error(ctx, "建立配对第二次写入失败，配对关系不对称",
				logger.String("liker_id", likerID),
				logger.String("liked_id", likedID),
				logger.ErrorField("error", err),
			)
			likesTotal.WithLabelValues("integrity").Inc()
			return nil, errorx.Integrity("partial match write", err)
		}

		// 先喜欢的一方是发起方，需要在窗口内发出第一条消息
		task := s.tracker.Arm(ctx, likedID, likerID)
		likesTotal.WithLabelValues("matched").Inc()
		logger.Info(ctx, "配对成功",
			logger.String("initiator", likedID),
			logger.String("counterpart", likerID),
			logger.Time("window_expires_at", task.FireAt()),
		)
		return &dto.LikeResponse{
			Status:          dto.LikeStatusMatched,
			Message:         fmt.Sprintf("It's a match! Make sure to send a message within %s to keep the connection alive.", s.tracker.Window()),
			WindowExpiresAt: task.FireAt().UnixMilli(),
		}, nil

	// 4. 已经喜欢过对方
	default:
		likesTotal.WithLabelValues("already_liked").Inc()
		return nil, errorx.Conflict(consts.CodeAlreadyLiked)
	}
}

// ListMatches 配对列表
func (s *matchServiceImpl) ListMatches(ctx context.Context, userID string) (*dto.ListMatchesResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, user.Matches)
	if err != nil {
		return nil, errorx.Dependency("list matches", err)
	}
	out := make([]*dto.MatchUser, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewMatchUser(u))
	}
	return &dto.ListMatchesResponse{MatchUsers: out}, nil
}

// ListLikes 喜欢我的用户列表
func (s *matchServiceImpl) ListLikes(ctx context.Context, userID string) (*dto.ListLikesResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, user.Likes)
	if err != nil {
		return nil, errorx.Dependency("list likes", err)
	}
	out := make([]*dto.LikeUser, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewLikeUser(u))
	}
	return &dto.ListLikesResponse{LikeUsers: out}, nil
}

// findUser 查询用户，不存在映射为 CodeUserNotFound
func (s *matchServiceImpl) findUser(ctx context.Context, id string) (*model.User, error) {
	return findUser(ctx, s.users, id)
}

func (s *matchServiceImpl) writeFailed(ctx context.Context, msg string, err error, likerID, likedID string) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		// 读写之间账号被删除
		return errorx.NotFound(consts.CodeUserNotFound)
	}
	logger.Error(ctx, msg,
		logger.String("liker_id", likerID),
		logger.String("liked_id", likedID),
		logger.ErrorField("error", err),
	)
	return errorx.Dependency(msg, err)
}

// findUser 各服务共用：查询用户并把仓储错误映射为业务错误
func findUser(ctx context.Context, users repository.IUserRepository, id string) (*model.User, error) {
	if id == "" {
		return nil, errorx.Validation(consts.CodeParamError, "")
	}
	user, err := users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, errorx.NotFound(consts.CodeUserNotFound)
		}
		logger.Error(ctx, "查询用户失败",
			logger.String("user_id", id),
			logger.ErrorField("error", err),
		)
		return nil, errorx.Dependency("find user", err)
	}
	return user, nil
}
