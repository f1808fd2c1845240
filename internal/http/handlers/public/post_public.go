package public

import (
	"errors"
	"strconv"
	"time"

	"github.com/RuleViz/LightBlog/internal/cache"
	"github.com/RuleViz/LightBlog/internal/constants"
	"github.com/RuleViz/LightBlog/internal/http/response"
	"github.com/RuleViz/LightBlog/internal/models"
	"github.com/RuleViz/LightBlog/internal/repository"
	"github.com/RuleViz/LightBlog/internal/service"

	"github.com/gin-gonic/gin"
)

// HeaderPostAccessToken 加密文章访问凭证的请求头
const HeaderPostAccessToken = "X-Post-Access-Token"

// VerifyPasswordRequest 文章密码校验请求
type VerifyPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// GetPosts 公开文章列表，仅已发布且非私有
func (h *Handler) GetPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.PostListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
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

	posts, total, err := h.PostService.ListPublic(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取文章列表失败", err)
		return
	}

	// 列表不下发正文，加密文章同时隐藏摘要
	items := make([]gin.H, 0, len(posts))
	for i := range posts {
		items = append(items, publicPostSummary(&posts[i]))
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, items, pagination)
}

// GetPostBySlug 公开文章详情。
// 私有文章由服务层按不存在处理；加密文章未携带有效访问凭证时只返回元信息，不返回正文。
func (h *Handler) GetPostBySlug(c *gin.Context) {
	slug := c.Param("slug")
	post, err := h.PostService.GetPublicBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "文章不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取文章失败", err)
		return
	}

	if post.Visibility == constants.PostVisibilityPassword {
		token := c.GetHeader(HeaderPostAccessToken)
		if !cache.CheckPostAccessGrant(c.Request.Context(), token, post.ID) {
			response.Success(c, publicPostLocked(post))
			return
		}
	}
	response.Success(c, publicPostDetail(post))
}

// VerifyPostPassword 校验加密文章密码，通过后发放访问凭证
func (h *Handler) VerifyPostPassword(c *gin.Context) {
	slug := c.Param("slug")

	var req VerifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	post, err := h.PostService.VerifyPassword(slug, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "文章不存在", nil)
		case errors.Is(err, service.ErrInvalidPassword):
			requestLog(c).Warnw("public_post_password_failed", "slug", slug, "ip", c.ClientIP())
			respondError(c, response.CodeForbidden, "密码错误", nil)
		default:
			respondError(c, response.CodeInternal, "密码校验失败", err)
		}
		return
	}

	ttl := time.Duration(h.Config.Post.AccessGrantTTLSeconds) * time.Second
	token, err := cache.IssuePostAccessGrant(c.Request.Context(), post.ID, post.Slug, ttl)
	if err != nil {
		// 缓存不可用时不发凭证，但本次校验结果仍直接返回正文
		requestLog(c).Warnw("public_post_grant_issue_failed", "slug", slug, "error", err)
	}

	detail := publicPostDetail(post)
	if token != "" {
		detail["access_token"] = token
		detail["expires_in"] = int64(ttl.Seconds())
	}
	response.Success(c, detail)
}

// ViewPost 浏览数 +1，仅对已发布文章生效
func (h *Handler) ViewPost(c *gin.Context) {
	post, err := h.PostService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "文章不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "操作失败", err)
		return
	}
	if err := h.PostService.IncrementViewCount(post.ID); err != nil && !errors.Is(err, service.ErrNotFound) {
		respondError(c, response.CodeInternal, "操作失败", err)
		return
	}
	response.Success(c, nil)
}

// LikePost 点赞数 +1，仅对已发布文章生效
func (h *Handler) LikePost(c *gin.Context) {
	post, err := h.PostService.GetPublicBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "文章不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "操作失败", err)
		return
	}
	if err := h.PostService.IncrementLikeCount(post.ID); err != nil && !errors.Is(err, service.ErrNotFound) {
		respondError(c, response.CodeInternal, "操作失败", err)
		return
	}
	response.Success(c, nil)
}

func publicPostSummary(post *models.Post) gin.H {
	item := gin.H{
		"id":              post.ID,
		"title":           post.Title,
		"slug":            post.Slug,
		"visibility":      post.Visibility,
		"category":        post.Category,
		"tags":            post.Tags,
		"cover_image_url": post.CoverImageURL,
		"view_count":      post.ViewCount,
		"like_count":      post.LikeCount,
		"comment_count":   post.CommentCount,
		"pinned":          post.Pinned,
		"published_at":    post.PublishedAt,
		"excerpt":         post.Excerpt,
	}
	if post.Visibility == constants.PostVisibilityPassword {
		item["excerpt"] = ""
	}
	return item
}

func publicPostLocked(post *models.Post) gin.H {
	item := publicPostSummary(post)
	item["locked"] = true
	return item
}

func publicPostDetail(post *models.Post) gin.H {
	item := publicPostSummary(post)
	item["excerpt"] = post.Excerpt
	item["content"] = post.Content
	item["content_type"] = post.ContentType
	item["locked"] = false
	return item
}
