package service

import (
	"context"

	"DateServer/apps/user/internal/dto"
	"DateServer/apps/user/internal/repository"
	"DateServer/pkg/errorx"
	"DateServer/pkg/logger"
)

const (
	defaultDiscoverPage = 1
	defaultDiscoverSize = 20
)

// discoverServiceImpl 发现页服务实现
type discoverServiceImpl struct {
	users repository.IUserRepository
}

// NewDiscoverService 创建发现页服务实例
func NewDiscoverService(users repository.IUserRepository) IDiscoverService {
	return &discoverServiceImpl{users: users}
}

// Discover 发现页查询，排除自己与已配对用户
func (s *discoverServiceImpl) Discover(ctx context.Context, userID string, req *dto.DiscoverRequest) (*dto.DiscoverResponse, error) {
	me, err := findUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}

	page, size := req.Page, req.Size
	if page <= 0 {
		page = defaultDiscoverPage
	}
	if size <= 0 {
		size = defaultDiscoverSize
	}

	exclude := make([]string, 0, len(me.Matches)+1)
	exclude = append(exclude, me.ID)
	exclude = append(exclude, me.Matches...)

	filter := repository.DiscoverFilter{
		ExcludeIDs: exclude,
		MinAge:     req.MinAge,
		MaxAge:     req.MaxAge,
		Gender:     req.Gender,
		BodyType:   req.BodyType,
		Location:   req.Location,
	}
	users, total, err := s.users.Discover(ctx, filter, int64((page-1)*size), int64(size))
	if err != nil {
		logger.Error(ctx, "发现页查询失败",
			logger.String("user_id", userID),
			logger.ErrorField("error", err),
		)
		return nil, errorx.Dependency("discover", err)
	}

	people := make([]*dto.Person, 0, len(users))
	for _, u := range users {
		people = append(people, dto.NewPerson(u))
	}
	return &dto.DiscoverResponse{
		People:       people,
		Page:         page,
		Size:         size,
		TotalPages:   (total + int64(size) - 1) / int64(size),
		TotalResults: total,
	}, nil
}
