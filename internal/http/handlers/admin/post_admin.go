package admin

import (
	"errors"
	"strconv"

	"github.com/RuleViz/LightBlog/internal/http/response"
	"github.com/RuleViz/LightBlog/internal/repository"
	"github.com/RuleViz/LightBlog/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePostRequest 创建文章请求
type CreatePostRequest struct {
	Title         string `json:"title" binding:"required"`
	Slug          string `json:"slug" binding:"required"`
	Excerpt       string `json:"excerpt"`
	Content       string `json:"content"`
	ContentType   string `json:"content_type"`
	Status        string `json:"status"`
	Visibility    string `json:"visibility"`
	Password      string `json:"password"`
	CategoryID    *uint  `json:"category_id"`
	TagIDs        []uint `json:"tag_ids"`
	CoverImageURL string `json:"cover_image_url"`
	Pinned        bool   `json:"pinned"`
}

// UpdatePostRequest 更新文章请求，缺省字段保持原值
type UpdatePostRequest struct {
	Title         *string `json:"title"`
	Slug          *string `json:"slug"`
	Excerpt       *string `json:"excerpt"`
	Content       *string `json:"content"`
	ContentType   *string `json:"content_type"`
	Status        *string `json:"status"`
	Visibility    *string `json:"visibility"`
	Password      *string `json:"password"`
	CategoryID    *uint   `json:"category_id"`
	TagIDs        []uint  `json:"tag_ids"`
	CoverImageURL *string `json:"cover_image_url"`
	Pinned        *bool   `json:"pinned"`
}

// GetPosts 获取文章列表 (Admin)
func (h *Handler) GetPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.PostListFilter{
		Page:       page,
		PageSize:   pageSize,
		Status:     c.Query("status"),
		Visibility: c.Query("visibility"),
		Search:     c.Query("search"),
	}
	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			categoryID := uint(id)
			filter.CategoryID = &categoryID
		}
	}
	if raw := c.Query("tag_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			tagID := uint(id)
			filter.TagID = &tagID
		}
	}

	posts, total, err := h.PostService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取文章列表失败", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, posts, pagination)
}

// GetPostTrash 获取回收站列表 (Admin)
func (h *Handler) GetPostTrash(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	posts, total, err := h.PostService.ListTrash(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "获取回收站失败", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, posts, pagination)
}

// GetPostStats 获取文章统计 (Admin)
func (h *Handler) GetPostStats(c *gin.Context) {
	stats, err := h.PostService.Stats()
	if err != nil {
		respondError(c, response.CodeInternal, "获取统计失败", err)
		return
	}
	response.Success(c, stats)
}

// GetPost 获取文章详情 (Admin)
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的文章 ID", nil)
		return
	}

	post, err := h.PostService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "文章不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取文章失败", err)
		return
	}
	response.Success(c, post)
}

// CreatePost 创建文章 (Admin)
func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	post, err := h.PostService.Create(service.CreatePostInput{
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		ContentType:   req.ContentType,
		Status:        req.Status,
		Visibility:    req.Visibility,
		Password:      req.Password,
		CategoryID:    req.CategoryID,
		TagIDs:        req.TagIDs,
		CoverImageURL: req.CoverImageURL,
		Pinned:        req.Pinned,
	})
	if err != nil {
		respondPostError(c, err, "创建文章失败")
		return
	}
	response.Success(c, post)
}

// UpdatePost 更新文章 (Admin)
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的文章 ID", nil)
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	post, err := h.PostService.Update(id, service.UpdatePostInput{
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		ContentType:   req.ContentType,
		Status:        req.Status,
		Visibility:    req.Visibility,
		Password:      req.Password,
		CategoryID:    req.CategoryID,
		TagIDs:        req.TagIDs,
		CoverImageURL: req.CoverImageURL,
		Pinned:        req.Pinned,
	})
	if err != nil {
		respondPostError(c, err, "更新文章失败")
		return
	}
	response.Success(c, post)
}

// TrashPost 将文章移入回收站 (Admin)
func (h *Handler) TrashPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的文章 ID", nil)
		return
	}
	if err := h.PostService.SoftDelete(id); err != nil {
		respondPostError(c, err, "移入回收站失败")
		return
	}
	response.Success(c, nil)
}

// RestorePost 从回收站恢复文章 (Admin)
func (h *Handler) RestorePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的文章 ID", nil)
		return
	}
	if err := h.PostService.Restore(id); err != nil {
		respondPostError(c, err, "恢复文章失败")
		return
	}
	response.Success(c, nil)
}

// DeletePost 物理删除文章并清理其媒体文件 (Admin)
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的文章 ID", nil)
		return
	}
	if err := h.PostService.Delete(id); err != nil {
		respondPostError(c, err, "删除文章失败")
		return
	}
	response.Success(c, nil)
}

// DeleteTrashedPost 从回收站彻底删除文章 (Admin)
func (h *Handler) DeleteTrashedPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的文章 ID", nil)
		return
	}
	if err := h.PostService.DeleteTrashed(id); err != nil {
		respondPostError(c, err, "删除文章失败")
		return
	}
	response.Success(c, nil)
}

// respondPostError 将文章服务错误映射为响应码
func respondPostError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "文章不存在", nil)
	case errors.Is(err, service.ErrSlugExists):
		respondError(c, response.CodeConflict, "slug 已存在", nil)
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, response.CodeBadRequest, "分类不存在", nil)
	case errors.Is(err, service.ErrInvalidStatus):
		respondError(c, response.CodeBadRequest, "无效的文章状态", nil)
	case errors.Is(err, service.ErrInvalidVisibility):
		respondError(c, response.CodeBadRequest, "无效的可见性", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}
