package public

import (
	"errors"
	"strconv"

	"github.com/RuleViz/LightBlog/internal/http/response"
	"github.com/RuleViz/LightBlog/internal/repository"
	"github.com/RuleViz/LightBlog/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCategories 公开分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	filter := repository.CategoryListFilter{}
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

// GetCategoryBySlug 公开分类详情
func (h *Handler) GetCategoryBySlug(c *gin.Context) {
	category, err := h.CategoryService.GetBySlug(c.Param("slug"))
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
