package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// MediaStore 媒体文件存储接口（核心只读取存在性与删除）
type MediaStore interface {
	Exists(path string) bool
	Remove(path string) error
}

// LocalMediaStore 本地磁盘实现，约束所有操作在上传根目录内
type LocalMediaStore struct {
	baseDir string
}

// NewLocalMediaStore 创建本地媒体存储
func NewLocalMediaStore(baseDir string) *LocalMediaStore {
	return &LocalMediaStore{baseDir: filepath.Clean(baseDir)}
}

// BaseDir 上传根目录
func (s *LocalMediaStore) BaseDir() string {
	return s.baseDir
}

// Exists 文件是否存在
func (s *LocalMediaStore) Exists(path string) bool {
	resolved, err := s.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Remove 删除文件，文件不存在不视为错误
func (s *LocalMediaStore) Remove(path string) error {
	resolved, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(resolved); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve 拒绝逃出根目录的路径
func (s *LocalMediaStore) resolve(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if !strings.HasPrefix(cleaned, s.baseDir+string(filepath.Separator)) && cleaned != s.baseDir {
		return "", errors.New("path outside upload base dir")
	}
	return cleaned, nil
}
