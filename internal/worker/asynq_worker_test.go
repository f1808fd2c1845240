package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/RuleViz/LightBlog/internal/provider"
	"github.com/RuleViz/LightBlog/internal/queue"
	"github.com/RuleViz/LightBlog/internal/storage"

	"github.com/hibiken/asynq"
)

func writeMediaFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("write file failed: %v", err)
	}
	return path
}

func TestHandleMediaCleanupRemovesFiles(t *testing.T) {
	dir := t.TempDir()
	body := writeMediaFile(t, dir, filepath.Join("2026", "01", "body.png"))
	cover := writeMediaFile(t, dir, filepath.Join("2026", "01", "cover.png"))

	consumer := NewConsumer(&provider.Container{
		MediaStore: storage.NewLocalMediaStore(dir),
	})

	task, err := queue.NewMediaCleanupTask(queue.MediaCleanupPayload{
		PostID: 42,
		Paths:  []string{body, cover},
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleMediaCleanup(context.Background(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}

	for _, path := range []string{body, cover} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("file %s should be removed, stat err=%v", path, err)
		}
	}
}

func TestHandleMediaCleanupToleratesMissingAndOutsidePaths(t *testing.T) {
	dir := t.TempDir()
	kept := writeMediaFile(t, dir, "keep.png")

	consumer := NewConsumer(&provider.Container{
		MediaStore: storage.NewLocalMediaStore(dir),
	})

	task, err := queue.NewMediaCleanupTask(queue.MediaCleanupPayload{
		PostID: 7,
		Paths: []string{
			filepath.Join(dir, "missing.png"),
			"/etc/passwd",
		},
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	// 单个文件失败不应让任务整体失败
	if err := consumer.handleMediaCleanup(context.Background(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}
	if _, err := os.Stat(kept); err != nil {
		t.Fatalf("unrelated file should survive: %v", err)
	}
}

func TestHandleMediaCleanupBadPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{
		MediaStore: storage.NewLocalMediaStore(t.TempDir()),
	})
	task := asynq.NewTask(queue.TaskMediaCleanup, []byte("not-json"))
	if err := consumer.handleMediaCleanup(context.Background(), task); err == nil {
		t.Fatalf("invalid payload should fail")
	}
}
