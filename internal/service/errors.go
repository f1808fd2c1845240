package service

import (
	"errors"
	"fmt"
)

// 服务层业务错误，供 handler 用 errors.Is 映射响应码
var (
	ErrNotFound           = errors.New("资源不存在")
	ErrSlugExists         = errors.New("slug 已存在")
	ErrNameExists         = errors.New("名称已存在")
	ErrParentNotFound     = errors.New("父分类不存在")
	ErrCategoryNotFound   = errors.New("分类不存在")
	ErrCategoryHasPosts   = errors.New("分类下仍有文章")
	ErrTagHasPosts        = errors.New("标签下仍有文章")
	ErrInvalidStatus      = errors.New("无效的文章状态")
	ErrInvalidVisibility  = errors.New("无效的可见性")
	ErrInvalidCredentials = errors.New("凭证无效")
	ErrInvalidPassword    = errors.New("访问密码错误")
	ErrUploadInvalidType  = errors.New("不支持的文件类型")
	ErrUploadTooLarge     = errors.New("文件超过大小限制")
)

// CategoryInUseError 分类删除被存活文章阻止，附带文章数
type CategoryInUseError struct {
	PostCount int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("分类下仍有 %d 篇文章，无法删除", e.PostCount)
}

// Is 允许 errors.Is(err, ErrCategoryHasPosts)
func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrCategoryHasPosts
}

// TagInUseError 标签删除被存活文章阻止，附带文章数
type TagInUseError struct {
	PostCount int64
}

func (e *TagInUseError) Error() string {
	return fmt.Sprintf("标签下仍有 %d 篇文章，无法删除", e.PostCount)
}

// Is 允许 errors.Is(err, ErrTagHasPosts)
func (e *TagInUseError) Is(target error) bool {
	return target == ErrTagHasPosts
}
