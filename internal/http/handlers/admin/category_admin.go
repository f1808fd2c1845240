package admin

import (
	"errors"
	"strconv"

	"github.com/RuleViz/LightBlog/internal/http/response"
	"github.com/RuleViz/LightBlog/internal/repository"
	"github.com/RuleViz/LightBlog/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	ParentID    *uint  `json:"parent_id"`
	SortOrder   int    `json:"sort_order"`
	Description string `json:"description"`
}

// UpdateCategoryRequest 更新分类请求，缺省字段保持原值
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	ParentID    *uint   `json:"parent_id"`
	SortOrder   *int    `json:"sort_order"`
	Description *string `json:"description"`
}

// GetCategories 获取分类列表 (Admin)
func (h *Handler) GetCategories(c *gin.Context) {
	filter := repository.CategoryListFilter{
		Search: c.Query("search"),
	}
	if raw := c.Query("parent_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			parentID := uint(id)
			filter.ParentID = &parentID
		}
	}

	categories, err := h.CategoryService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取分类列表失败", err)
		return
	}
	response.Success(c, categories)
}

// GetCategory 获取分类详情 (Admin)
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的分类 ID", nil)
		return
	}

	category, err := h.CategoryService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "分类不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取分类失败", err)
		return
	}
	response.Success(c, category)
}

// GetCategoryChildren 获取直接子分类 (Admin)
func (h *Handler) GetCategoryChildren(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的分类 ID", nil)
		return
	}

	children, err := h.CategoryService.GetChildren(id)
	if err != nil {
		respondError(c, response.CodeInternal, "获取子分类失败", err)
		return
	}
	response.Success(c, children)
}

// CheckCategoryExists 检查分类名称或 slug 是否占用 (Admin)
func (h *Handler) CheckCategoryExists(c *gin.Context) {
	var excludeID *uint
	if raw := c.Query("exclude_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			v := uint(id)
			excludeID = &v
		}
	}

	result := gin.H{}
	if name := c.Query("name"); name != "" {
		exists, err := h.CategoryService.NameExists(name, excludeID)
		if err != nil {
			respondError(c, response.CodeInternal, "检查失败", err)
			return
		}
		result["name_exists"] = exists
	}
	if slug := c.Query("slug"); slug != "" {
		exists, err := h.CategoryService.SlugExists(slug, excludeID)
		if err != nil {
			respondError(c, response.CodeInternal, "检查失败", err)
			return
		}
		result["slug_exists"] = exists
	}
	response.Success(c, result)
}

// CreateCategory 创建分类 (Admin)
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	category, err := h.CategoryService.Create(service.CreateCategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
		Description: req.Description,
	})
	if err != nil {
		respondCategoryError(c, err, "创建分类失败")
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类 (Admin)
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的分类 ID", nil)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	category, err := h.CategoryService.Update(id, service.UpdateCategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
		Description: req.Description,
	})
	if err != nil {
		respondCategoryError(c, err, "更新分类失败")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类及其子孙 (Admin)
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "无效的分类 ID", nil)
		return
	}

	if err := h.CategoryService.Delete(id); err != nil {
		var inUse *service.CategoryInUseError
		if errors.As(err, &inUse) {
			requestLog(c).Warnw("admin_category_delete_blocked", "category_id", id, "post_count", inUse.PostCount)
			response.ErrorWithData(c, response.CodeConflict, "分类下存在文章，无法删除", gin.H{"post_count": inUse.PostCount})
			return
		}
		respondCategoryError(c, err, "删除分类失败")
		return
	}
	response.Success(c, nil)
}

// respondCategoryError 将分类服务错误映射为响应码
func respondCategoryError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "分类不存在", nil)
	case errors.Is(err, service.ErrNameExists):
		respondError(c, response.CodeConflict, "分类名称已存在", nil)
	case errors.Is(err, service.ErrSlugExists):
		respondError(c, response.CodeConflict, "slug 已存在", nil)
	case errors.Is(err, service.ErrParentNotFound):
		respondError(c, response.CodeBadRequest, "父分类不存在", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}
