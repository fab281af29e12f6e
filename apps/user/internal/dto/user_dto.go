package dto

import (
	"time"

	"DateServer/model"
)

// ==================== 用户资料 DTO ====================

// Profile 本人完整资料（不含密码与消息）
type Profile struct {
	ID         string         `json:"_id"`
	FirstName  string         `json:"firstName"`
	LastName   string         `json:"lastName"`
	Email      string         `json:"email"`
	IsVerified bool           `json:"isVerified"`
	Interests  string         `json:"interests,omitempty"`
	Likes      []string       `json:"likes"`
	Matches    []string       `json:"matches"`
	Links      *model.Links   `json:"links,omitempty"`
	Details    *model.Details `json:"details,omitempty"`
	Shows      []model.Show   `json:"shows"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// NewProfile 由用户文档生成本人资料
func NewProfile(u *model.User) *Profile {
	p := &Profile{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		Interests:  u.Interests,
		Likes:      u.Likes,
		Matches:    u.Matches,
		Links:      u.Links,
		Details:    u.Details,
		Shows:      u.Shows,
		CreatedAt:  u.CreatedAt,
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Matches == nil {
		p.Matches = []string{}
	}
	if p.Shows == nil {
		p.Shows = []model.Show{}
	}
	return p
}

// LinkInput 外部链接
type LinkInput struct {
	URL      string `json:"url" binding:"omitempty,url,max=200"`
	IsPublic bool   `json:"isPublic"`
}

// LinksInput 外部链接集合
type LinksInput struct {
	Imdb    *LinkInput `json:"imdb"`
	Insta   *LinkInput `json:"insta"`
	Twitter *LinkInput `json:"twitter"`
	Spotify *LinkInput `json:"spotify"`
}

// UpdateProfileRequest 更新资料请求 DTO
type UpdateProfileRequest struct {
	FirstName string      `json:"firstName" binding:"omitempty,max=50"`
	LastName  string      `json:"lastName" binding:"omitempty,max=50"`
	Interests string      `json:"interests" binding:"required,max=100"`
	Links     *LinksInput `json:"links"`
}

// UpdateDetailsRequest 更新详细资料请求 DTO
type UpdateDetailsRequest struct {
	Age                int     `json:"age" binding:"required,min=18"`
	Gender             string  `json:"gender" binding:"required,oneof=Male Female"`
	Height             float64 `json:"height" binding:"omitempty,min=20"`
	Location           string  `json:"location" binding:"required,max=100"`
	BodyType           string  `json:"bodyType" binding:"required,oneof=Skinny Average Curvy Healthy"`
	Drinking           string  `json:"drinking" binding:"required,oneof=Yes No"`
	Smoking            string  `json:"smoking" binding:"required,oneof=Yes No"`
	RelationshipStatus string  `json:"relationshipStatus" binding:"required,oneof=Single Separated Widowed"`
}

// ShowInput 喜欢的剧集
type ShowInput struct {
	OriginalName string `json:"original_name" binding:"required,max=200"`
	PosterURL    string `json:"poster_url" binding:"omitempty,url"`
}

// UpdateShowsRequest 更新剧集请求 DTO
type UpdateShowsRequest struct {
	Shows []ShowInput `json:"shows" binding:"max=20,dive"`
}

// UploadPosterResponse 上传海报响应 DTO
type UploadPosterResponse struct {
	PosterURL string `json:"poster_url"`
}

// ==================== 发现页 DTO ====================

// DiscoverRequest 发现页查询参数
type DiscoverRequest struct {
	MinAge   int    `form:"minAge" binding:"omitempty,min=18"`
	MaxAge   int    `form:"maxAge" binding:"omitempty,min=18"`
	Gender   string `form:"gender" binding:"omitempty,oneof=Male Female"`
	BodyType string `form:"bodyType" binding:"omitempty,oneof=Skinny Average Curvy Healthy"`
	Location string `form:"location"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Size     int    `form:"size" binding:"omitempty,min=1,max=100"`
}

// Person 发现页候选人
type Person struct {
	ID        string         `json:"_id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Interests string         `json:"interests"`
	Links     *model.Links   `json:"links,omitempty"`
	Details   *model.Details `json:"details,omitempty"`
	Shows     []model.Show   `json:"shows,omitempty"`
}

// DiscoverResponse 发现页响应
type DiscoverResponse struct {
	People       []*Person `json:"people"`
	Page         int       `json:"page"`
	Size         int       `json:"size"`
	TotalPages   int64     `json:"totalPages"`
	TotalResults int64     `json:"totalResults"`
}

// NewPerson 生成候选人投影，仅展示公开的外部链接
func NewPerson(u *model.User) *Person {
	return &Person{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Interests: u.Interests,
		Links:     publicLinks(u.Links),
		Details:   u.Details,
		Shows:     u.Shows,
	}
}

func publicLinks(l *model.Links) *model.Links {
	if l == nil {
		return nil
	}
	pick := func(link *model.Link) *model.Link {
		if link == nil || !link.IsPublic {
			return nil
		}
		return link
	}
	out := &model.Links{Imdb: pick(l.Imdb), Insta: pick(l.Insta), Twitter: pick(l.Twitter), Spotify: pick(l.Spotify)}
	if out.Imdb == nil && out.Insta == nil && out.Twitter == nil && out.Spotify == nil {
		return nil
	}
	return out
}
