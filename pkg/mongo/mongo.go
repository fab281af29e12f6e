package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"DateServer/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var global *mongo.Database

// DB 返回全局数据库句柄（未初始化时为 nil）
func DB() *mongo.Database {
	return global
}

// ReplaceGlobal 设置全局数据库句柄
func ReplaceGlobal(db *mongo.Database) {
	global = db
}

// Build 建立连接并 Ping 一次，返回业务库句柄
func Build(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, errors.New("mongo uri is empty")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, errors.New("mongo database is empty")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetTimeout(cfg.OpTimeout)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client.Database(cfg.Database), nil
}

// Close 断开数据库连接
func Close(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}
	return db.Client().Disconnect(ctx)
}
