package public

import (
	"errors"
	"strconv"

	"github.com/RuleViz/LightBlog/internal/http/response"
	"github.com/RuleViz/LightBlog/internal/repository"
	"github.com/RuleViz/LightBlog/internal/service"

	"github.com/gin-gonic/gin"
)

// GetTags 公开标签列表，默认按引用文章数排序
func (h *Handler) GetTags(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	page, pageSize = normalizePagination(page, pageSize)

	tags, total, err := h.TagService.List(repository.TagListFilter{
		Page:     page,
		PageSize: pageSize,
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

// GetTagBySlug 公开标签详情
func (h *Handler) GetTagBySlug(c *gin.Context) {
	tag, err := h.TagService.GetBySlug(c.Param("slug"))
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
