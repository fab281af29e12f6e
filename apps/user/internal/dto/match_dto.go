package dto

import "DateServer/model"

// ==================== 配对相关 DTO ====================

// LikeStatus 喜欢操作结果
type LikeStatus string

const (
	LikeStatusLiked   LikeStatus = "liked"   // 已记录单向喜欢，等待对方回应
	LikeStatusMatched LikeStatus = "matched" // 双向喜欢，配对成功
)

// LikeResponse 喜欢响应 DTO
type LikeResponse struct {
	Status          LikeStatus `json:"status"`
	Message         string     `json:"message"`
	WindowExpiresAt int64      `json:"windowExpiresAt,omitempty"` // 配对成功时，消息窗口截止时间（毫秒时间戳）
}

// DetailsSummary 列表中展示的部分详细资料
type DetailsSummary struct {
	Age      int     `json:"age,omitempty"`
	Height   float64 `json:"height,omitempty"`
	BodyType string  `json:"bodyType,omitempty"`
}

// MatchUser 配对列表项
type MatchUser struct {
	ID        string          `json:"_id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Interests string          `json:"interests,omitempty"`
	Details   *DetailsSummary `json:"details,omitempty"`
}

// LikeUser 喜欢我的用户列表项
type LikeUser struct {
	MatchUser
	Likes []string `json:"likes"`
}

// ListMatchesResponse 配对列表响应
type ListMatchesResponse struct {
	MatchUsers []*MatchUser `json:"matchusers"`
}

// ListLikesResponse 喜欢列表响应
type ListLikesResponse struct {
	LikeUsers []*LikeUser `json:"likeusers"`
}

// NewMatchUser 生成配对列表项
func NewMatchUser(u *model.User) *MatchUser {
	m := &MatchUser{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Interests: u.Interests}
	if u.Details != nil {
		m.Details = &DetailsSummary{Age: u.Details.Age, Height: u.Details.Height, BodyType: u.Details.BodyType}
	}
	return m
}

// NewLikeUser 生成喜欢列表项
func NewLikeUser(u *model.User) *LikeUser {
	likes := u.Likes
	if likes == nil {
		likes = []string{}
	}
	return &LikeUser{MatchUser: *NewMatchUser(u), Likes: likes}
}
