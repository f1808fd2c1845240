package worker

import (
	"context"
	"encoding/json"

	"github.com/RuleViz/LightBlog/internal/logger"
	"github.com/RuleViz/LightBlog/internal/provider"
	"github.com/RuleViz/LightBlog/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskMediaCleanup, c.handleMediaCleanup)
}

// handleMediaCleanup 清理文章删除后遗留的本地媒体文件。
// 文件系统错误只记录不上抛，清理失败不应触发任务重试。
func (c *Consumer) handleMediaCleanup(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_media_cleanup_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.MediaCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_media_cleanup_unmarshal_failed", "error", err)
		return err
	}
	if len(payload.Paths) == 0 {
		logger.Debugw("worker_media_cleanup_skip_empty", "post_id", payload.PostID)
		return nil
	}
	if c.MediaStore == nil {
		logger.Warnw("worker_media_cleanup_skip_store_nil", "post_id", payload.PostID)
		return nil
	}

	removed := 0
	for _, path := range payload.Paths {
		if err := c.MediaStore.Remove(path); err != nil {
			logger.Warnw("worker_media_cleanup_remove_failed", "post_id", payload.PostID, "path", path, "error", err)
			continue
		}
		removed++
	}
	logger.Infow("worker_media_cleanup_done", "post_id", payload.PostID, "total", len(payload.Paths), "removed", removed)
	return nil
}
