package model

import "time"

// 集合名
const (
	CollectionUsers = "users"
)

// User 用户文档（users 集合）。
// likes 保存「喜欢了我、等待我回应」的用户 ID；matches 双方对称；
// messages 归发送方所有，每个聊天对象最多保留 consts.MessageCapPerPartner 条。
type User struct {
	ID         string    `bson:"_id" json:"_id"`
	FirstName  string    `bson:"firstName" json:"firstName"`
	LastName   string    `bson:"lastName" json:"lastName"`
	Email      string    `bson:"email" json:"email"`
	Password   string    `bson:"password" json:"-"`
	IsVerified bool      `bson:"isVerified" json:"isVerified"`
	Interests  string    `bson:"interests,omitempty" json:"interests,omitempty"`
	Likes      []string  `bson:"likes" json:"likes"`
	Matches    []string  `bson:"matches" json:"matches"`
	Messages   []Message `bson:"messages" json:"-"`
	Links      *Links    `bson:"links,omitempty" json:"links,omitempty"`
	Details    *Details  `bson:"details,omitempty" json:"details,omitempty"`
	Shows      []Show    `bson:"shows,omitempty" json:"shows,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Link 社交链接
type Link struct {
	URL      string `bson:"url" json:"url"`
	IsPublic bool   `bson:"isPublic" json:"isPublic"`
}

// Links 用户展示的外部链接
type Links struct {
	Imdb    *Link `bson:"imdb,omitempty" json:"imdb,omitempty"`
	Insta   *Link `bson:"insta,omitempty" json:"insta,omitempty"`
	Twitter *Link `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Spotify *Link `bson:"spotify,omitempty" json:"spotify,omitempty"`
}

// Details 用户详细资料，发现页过滤依赖 age/height/bodyType
type Details struct {
	Age                int     `bson:"age,omitempty" json:"age,omitempty"`
	Gender             string  `bson:"gender,omitempty" json:"gender,omitempty"`
	Height             float64 `bson:"height,omitempty" json:"height,omitempty"`
	Location           string  `bson:"location,omitempty" json:"location,omitempty"`
	BodyType           string  `bson:"bodyType,omitempty" json:"bodyType,omitempty"`
	Drinking           string  `bson:"drinking,omitempty" json:"drinking,omitempty"`
	Smoking            string  `bson:"smoking,omitempty" json:"smoking,omitempty"`
	RelationshipStatus string  `bson:"relationshipStatus,omitempty" json:"relationshipStatus,omitempty"`
}

// Show 用户喜欢的剧集
type Show struct {
	OriginalName string `bson:"original_name" json:"original_name"`
	PosterURL    string `bson:"poster_url" json:"poster_url"`
}

// HasLiked 判断 id 是否在 likes 中（即 id 已经喜欢了该用户）
func (u *User) HasLiked(id string) bool {
	return containsID(u.Likes, id)
}

// IsMatchedWith 判断 id 是否在 matches 中
func (u *User) IsMatchedWith(id string) bool {
	return containsID(u.Matches, id)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// UserCard 用户名片：聊天页、配对列表等处展示对方时使用的精简资料
type UserCard struct {
	ID         string   `json:"_id"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	IsVerified bool     `json:"isVerified"`
	Interests  string   `json:"interests,omitempty"`
	Details    *Details `json:"details,omitempty"`
}

// Card 生成用户名片
func (u *User) Card() *UserCard {
	return &UserCard{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsVerified: u.IsVerified,
		Interests:  u.Interests,
		Details:    u.Details,
	}
}
