package mongodb

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"semester-manager/backend/config"
)

// Client 文档库连接封装，进程内唯一，由 main 创建并注入各 Repository
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewClient 建立 MongoDB 连接并 Ping
// 连接中断与恢复只记录日志，重连交给驱动自身的心跳机制
func NewClient(ctx context.Context, cfg *config.MongoConfig, logger *zap.Logger) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerMonitor(newServerMonitor(logger))
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("连接 MongoDB 失败: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB ping 失败: %w", err)
	}

	logger.Info("MongoDB 连接成功", zap.String("database", cfg.Database))

	return &Client{client: client, db: client.Database(cfg.Database)}, nil
}

// Database 返回业务库句柄
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// newServerMonitor 心跳失败时记一次断开，恢复成功时记一次重连
func newServerMonitor(logger *zap.Logger) *event.ServerMonitor {
	var down atomic.Bool

	return &event.ServerMonitor{
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			if down.CompareAndSwap(false, true) {
				logger.Warn("MongoDB 连接中断",
					zap.String("connection_id", e.ConnectionID),
					zap.Error(e.Failure),
				)
			}
		},
		ServerHeartbeatSucceeded: func(e *event.ServerHeartbeatSucceededEvent) {
			if down.CompareAndSwap(true, false) {
				logger.Info("MongoDB 连接已恢复", zap.String("connection_id", e.ConnectionID))
			}
		},
	}
}
