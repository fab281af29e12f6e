package repository

import (
	"context"
	"time"

	"DateServer/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// listProjection 列表类查询不需要消息和密码
var listProjection = bson.M{"messages": 0, "password": 0}

// userRepositoryImpl 用户文档数据访问层实现
type userRepositoryImpl struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository(db *mongo.Database) IUserRepository {
	return &userRepositoryImpl{coll: db.Collection(model.CollectionUsers), now: time.Now}
}

// EnsureIndexes 创建索引
func (r *userRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "details.age", Value: 1}, {Key: "details.gender", Value: 1}}},
	})
	return WrapDBError(err)
}

// FindByID 根据 ID 查询
func (r *userRepositoryImpl) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail 根据邮箱查询
func (r *userRepositoryImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, WrapDBError(err)
	}
	return &user, nil
}

// FindByIDs 批量查询
// 返回结果按传入的 ids 顺序排列，不存在的用户不包含在结果中
func (r *userRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(listProjection))
	if err != nil {
		return nil, WrapDBError(err)
	}
	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, WrapDBError(err)
	}
	return orderByIDs(ids, users, func(u *model.User) string { return u.ID }), nil
}

// Create 创建用户
func (r *userRepositoryImpl) Create(ctx context.Context, user *model.User) error {
	now := r.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	// 数组字段必须初始化，$addToSet / $pull 不能作用于 null
	if user.Likes == nil {
		user.Likes = []string{}
	}
	if user.Matches == nil {
		user.Matches = []string{}
	}
	if user.Messages == nil {
		user.Messages = []model.Message{}
	}
	_, err := r.coll.InsertOne(ctx, user)
	return WrapDBError(err)
}

// Delete 删除用户
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, WrapDBError(err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteIfUnverified 删除仍未验证的用户
func (r *userRepositoryImpl) DeleteIfUnverified(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "isVerified": false})
	if err != nil {
		return false, WrapDBError(err)
	}
	return res.DeletedCount > 0, nil
}

// UpdateFields 部分更新
func (r *userRepositoryImpl) UpdateFields(ctx context.Context, id string, set map[string]interface{}, unset ...string) error {
	setDoc := bson.M{"updatedAt": r.now()}
	for k, v := range set {
		setDoc[k] = v
	}
	update := bson.M{"$set": setDoc}
	if len(unset) > 0 {
		unsetDoc := bson.M{}
		for _, k := range unset {
			unsetDoc[k] = ""
		}
		update["$unset"] = unsetDoc
	}
	return r.updateOne(ctx, id, update)
}

// Discover 发现页查询
func (r *userRepositoryImpl) Discover(ctx context.Context, filter DiscoverFilter, skip, limit int64) ([]*model.User, int64, error) {
	query := buildDiscoverQuery(filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, WrapDBError(err)
	}

	opts := options.Find().
		SetProjection(listProjection).
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, WrapDBError(err)
	}
	users := make([]*model.User, 0, limit)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, WrapDBError(err)
	}
	return users, total, nil
}

// buildDiscoverQuery 候选人必须有完整资料：年龄、身高、体型、兴趣
func buildDiscoverQuery(f DiscoverFilter) bson.M {
	age := bson.M{"$exists": true, "$ne": nil}
	if f.MinAge > 0 {
		age["$gte"] = f.MinAge
	}
	if f.MaxAge > 0 {
		age["$lte"] = f.MaxAge
	}

	query := bson.M{
		"details.age":      age,
		"details.height":   bson.M{"$exists": true, "$ne": nil},
		"details.bodyType": bson.M{"$exists": true, "$ne": ""},
		"interests":        bson.M{"$exists": true, "$ne": ""},
	}
	if len(f.ExcludeIDs) > 0 {
		query["_id"] = bson.M{"$nin": f.ExcludeIDs}
	}
	if f.Gender != "" {
		query["details.gender"] = f.Gender
	}
	if f.BodyType != "" {
		query["details.bodyType"] = f.BodyType
	}
	if f.Location != "" {
		query["details.location"] = f.Location
	}
	return query
}

// ==================== 配对关系 ====================

// AddLike 记录单向喜欢
func (r *userRepositoryImpl) AddLike(ctx context.Context, targetID, likerID string) error {
	return r.updateOne(ctx, targetID, bson.M{"$addToSet": bson.M{"likes": likerID}})
}

// LinkMatch 清除待回应的喜欢并建立配对
func (r *userRepositoryImpl) LinkMatch(ctx context.Context, userID, otherID string) error {
	return r.updateOne(ctx, userID, bson.M{
		"$pull":     bson.M{"likes": otherID},
		"$addToSet": bson.M{"matches": otherID},
	})
}

// UnlinkMatch 解除配对
func (r *userRepositoryImpl) UnlinkMatch(ctx context.Context, userID, otherID string) error {
	return r.updateOne(ctx, userID, bson.M{"$pull": bson.M{"matches": otherID}})
}

// ==================== 消息 ====================

// PushMessage 追加消息
func (r *userRepositoryImpl) PushMessage(ctx context.Context, ownerID string, msg *model.Message) error {
	return r.updateOne(ctx, ownerID, bson.M{"$push": bson.M{"messages": msg}})
}

// PullMessages 移除消息
func (r *userRepositoryImpl) PullMessages(ctx context.Context, ownerID string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	return r.updateOne(ctx, ownerID, bson.M{
		"$pull": bson.M{"messages": bson.M{"_id": bson.M{"$in": messageIDs}}},
	})
}

// updateOne 按 ID 更新，未命中文档返回 ErrRecordNotFound
func (r *userRepositoryImpl) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return WrapDBError(err)
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}
