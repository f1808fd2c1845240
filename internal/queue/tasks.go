package queue

import (
	"encoding/json"

	"github.com/RuleViz/LightBlog/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskMediaCleanup 媒体文件清理任务
	TaskMediaCleanup = constants.TaskMediaCleanup
)

// MediaCleanupPayload 媒体文件清理任务载荷
type MediaCleanupPayload struct {
	PostID uint     `json:"post_id"`
	Paths  []string `json:"paths"`
}

// NewMediaCleanupTask 创建媒体文件清理任务
func NewMediaCleanupTask(payload MediaCleanupPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMediaCleanup, body), nil
}
