package service

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"

	"DateServer/apps/user/internal/dto"
	"DateServer/apps/user/internal/repository"
	"DateServer/consts"
	"DateServer/model"
	"DateServer/pkg/errorx"
	"DateServer/pkg/logger"
	"DateServer/pkg/minio"
)

// posterPathPrefix 海报对象路径前缀
const posterPathPrefix = "posters/"

// Uploader 对象存储上传能力，由 *minio.MinIOClient 实现
type Uploader interface {
	Upload(ctx context.Context, reader io.Reader, fileSize int64, opts minio.UploadOptions) (*minio.UploadResult, error)
}

// linkHosts 各外部链接允许的域名
var linkHosts = map[string]string{
	"imdb":    "imdb.com",
	"insta":   "instagram.com",
	"twitter": "x.com",
	"spotify": "spotify.com",
}

// profileServiceImpl 用户资料服务实现
type profileServiceImpl struct {
	users    repository.IUserRepository
	cards    repository.ICardCache
	uploader Uploader
}

// NewProfileService 创建用户资料服务实例，uploader 为 nil 时海报上传不可用
func NewProfileService(users repository.IUserRepository, cards repository.ICardCache, uploader Uploader) IProfileService {
	return &profileServiceImpl{users: users, cards: cards, uploader: uploader}
}

// GetMe 获取本人资料
func (s *profileServiceImpl) GetMe(ctx context.Context, userID string) (*dto.Profile, error) {
	user, err := findUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewProfile(user), nil
}

// UpdateProfile 更新姓名、兴趣与外部链接
func (s *profileServiceImpl) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.Profile, error) {
	set := map[string]interface{}{
		"interests": strings.TrimSpace(req.Interests),
	}
	if v := strings.TrimSpace(req.FirstName); v != "" {
		set["firstName"] = v
	}
	if v := strings.TrimSpace(req.LastName); v != "" {
		set["lastName"] = v
	}
	if req.Links != nil {
		links, err := buildLinks(req.Links)
		if err != nil {
			return nil, err
		}
		set["links"] = links
	}
	return s.update(ctx, userID, set)
}

// UpdateDetails 更新详细资料
func (s *profileServiceImpl) UpdateDetails(ctx context.Context, userID string, req *dto.UpdateDetailsRequest) (*dto.Profile, error) {
	details := &model.Details{
		Age:                req.Age,
		Gender:             req.Gender,
		Height:             req.Height,
		Location:           strings.TrimSpace(req.Location),
		BodyType:           req.BodyType,
		Drinking:           req.Drinking,
		Smoking:            req.Smoking,
		RelationshipStatus: req.RelationshipStatus,
	}
	return s.update(ctx, userID, map[string]interface{}{"details": details})
}

// UpdateShows 整体替换喜欢的剧集
func (s *profileServiceImpl) UpdateShows(ctx context.Context, userID string, req *dto.UpdateShowsRequest) (*dto.Profile, error) {
	shows := make([]model.Show, 0, len(req.Shows))
	for _, in := range req.Shows {
		shows = append(shows, model.Show{OriginalName: strings.TrimSpace(in.OriginalName), PosterURL: in.PosterURL})
	}
	return s.update(ctx, userID, map[string]interface{}{"shows": shows})
}

func (s *profileServiceImpl) update(ctx context.Context, userID string, set map[string]interface{}) (*dto.Profile, error) {
	if err := s.users.UpdateFields(ctx, userID, set); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, errorx.NotFound(consts.CodeUserNotFound)
		}
		logger.Error(ctx, "更新用户资料失败",
			logger.String("user_id", userID),
			logger.ErrorField("error", err),
		)
		return nil, errorx.Dependency("update profile", err)
	}
	s.cards.Invalidate(ctx, userID)
	return s.GetMe(ctx, userID)
}

// UploadPoster 上传剧集海报
func (s *profileServiceImpl) UploadPoster(ctx context.Context, userID string, file io.Reader, size int64, fileName, contentType string) (*dto.UploadPosterResponse, error) {
	if s.uploader == nil {
		return nil, errorx.New(errorx.KindDependency, consts.CodeServiceUnavailable, "")
	}
	res, err := s.uploader.Upload(ctx, file, size, minio.UploadOptions{
		PathPrefix:  posterPathPrefix,
		FileName:    fileName,
		ContentType: contentType,
		Metadata:    map[string]string{"user-id": userID},
	})
	if err != nil {
		switch {
		case errors.Is(err, minio.ErrFileTooLarge):
			return nil, errorx.Validation(consts.CodeFileTooLarge, "")
		case errors.Is(err, minio.ErrFileTypeNotAllow), errors.Is(err, minio.ErrExtensionForged):
			return nil, errorx.Validation(consts.CodeFileTypeError, "")
		}
		logger.Error(ctx, "上传海报失败",
			logger.String("user_id", userID),
			logger.String("file_name", fileName),
			logger.ErrorField("error", err),
		)
		return nil, errorx.Wrap(errorx.KindDependency, consts.CodeServiceUnavailable, "", err)
	}
	logger.Info(ctx, "海报上传成功",
		logger.String("user_id", userID),
		logger.String("object", res.ObjectName),
		logger.Int64("size", res.Size),
	)
	return &dto.UploadPosterResponse{PosterURL: res.URL}, nil
}

// GetCard 获取用户名片
func (s *profileServiceImpl) GetCard(ctx context.Context, userID string) (*model.UserCard, error) {
	card, err := s.cards.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, errorx.NotFound(consts.CodeUserNotFound)
		}
		return nil, errorx.Dependency("get card", err)
	}
	return card, nil
}

// buildLinks 校验外部链接域名，空地址的链接视为移除
func buildLinks(in *dto.LinksInput) (*model.Links, error) {
	out := &model.Links{}
	for name, pair := range map[string]struct {
		src *dto.LinkInput
		dst **model.Link
	}{
		"imdb":    {in.Imdb, &out.Imdb},
		"insta":   {in.Insta, &out.Insta},
		"twitter": {in.Twitter, &out.Twitter},
		"spotify": {in.Spotify, &out.Spotify},
	} {
		if pair.src == nil || strings.TrimSpace(pair.src.URL) == "" {
			continue
		}
		if !hostMatches(pair.src.URL, linkHosts[name]) {
			return nil, errorx.Validation(consts.CodeParamError, "invalid "+name+" link")
		}
		*pair.dst = &model.Link{URL: strings.TrimSpace(pair.src.URL), IsPublic: pair.src.IsPublic}
	}
	return out, nil
}

// hostMatches 判断链接域名是否为 domain 或其子域名
func hostMatches(raw, domain string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}
