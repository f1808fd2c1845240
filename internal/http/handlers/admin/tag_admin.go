package admin

import (
	"errors"
	"strconv"

	"github.com/RuleViz/LightBlog/internal/http/response"
	"github.com/RuleViz/LightBlog/internal/repository"
	"github.com/RuleViz/LightBlog/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateTagRequest 创建标签请求
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Slug  string `json:"slug" binding:"required"`
	Color string `json:"color"`
}

// UpdateTagRequest 更新标签请求，缺省字段保持原值
type UpdateTagRequest struct {
	Name  *string `json:"name"`
	Slug  *string `json:"slug"`
	Color *string `json:"color"`
}

// GetTags 获取标签列表 (Admin)
func (h *Handler) GetTags(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	page, pageSize = normalizePagination(page, pageSize)

	tags, total, err := h.TagService.List(repository.TagListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "获取标签列表失败", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, tags, pagination)
}

// GetTag 获取标签详情 (Admin)
func (h *Handler) GetTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的标签 ID", nil)
		return
	}

	tag, err := h.TagService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "标签不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取标签失败", err)
		return
	}
	response.Success(c, tag)
}

// CheckTagExists 检查标签名称或 slug 是否占用 (Admin)
func (h *Handler) CheckTagExists(c *gin.Context) {
	var excludeID *uint
	if raw := c.Query("exclude_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			v := uint(id)
			excludeID = &v
		}
	}

	result := gin.H{}
	if name := c.Query("name"); name != "" {
		exists, err := h.TagService.NameExists(name, excludeID)
		if err != nil {
			respondError(c, response.CodeInternal, "检查失败", err)
			return
		}
		result["name_exists"] = exists
	}
	if slug := c.Query("slug"); slug != "" {
		exists, err := h.TagService.SlugExists(slug, excludeID)
		if err != nil {
			respondError(c, response.CodeInternal, "检查失败", err)
			return
		}
		result["slug_exists"] = exists
	}
	response.Success(c, result)
}

// CreateTag 创建标签 (Admin)
func (h *Handler) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	tag, err := h.TagService.Create(service.CreateTagInput{
		Name:  req.Name,
		Slug:  req.Slug,
		Color: req.Color,
	})
	if err != nil {
		respondTagError(c, err, "创建标签失败")
		return
	}
	response.Success(c, tag)
}

// UpdateTag 更新标签 (Admin)
func (h *Handler) UpdateTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的标签 ID", nil)
		return
	}

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	tag, err := h.TagService.Update(id, service.UpdateTagInput{
		Name:  req.Name,
		Slug:  req.Slug,
		Color: req.Color,
	})
	if err != nil {
		respondTagError(c, err, "更新标签失败")
		return
	}
	response.Success(c, tag)
}

// DeleteTag 删除标签 (Admin)
func (h *Handler) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的标签 ID", nil)
		return
	}

	if err := h.TagService.Delete(id); err != nil {
		var inUse *service.TagInUseError
		if errors.As(err, &inUse) {
			requestLog(c).Warnw("admin_tag_delete_blocked", "tag_id", id, "post_count", inUse.PostCount)
			response.ErrorWithData(c, response.CodeConflict, "标签仍被文章引用，无法删除", gin.H{"post_count": inUse.PostCount})
			return
		}
		respondTagError(c, err, "删除标签失败")
		return
	}
	response.Success(c, nil)
}

// respondTagError 将标签服务错误映射为响应码
func respondTagError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "标签不存在", nil)
	case errors.Is(err, service.ErrNameExists):
		respondError(c, response.CodeConflict, "标签名称已存在", nil)
	case errors.Is(err, service.ErrSlugExists):
		respondError(c, response.CodeConflict, "slug 已存在", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}
