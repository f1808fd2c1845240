package service

import (
	"github.com/RuleViz/LightBlog/internal/constants"
	"github.com/RuleViz/LightBlog/internal/logger"
	"github.com/RuleViz/LightBlog/internal/markdown"
	"github.com/RuleViz/LightBlog/internal/models"
	"github.com/RuleViz/LightBlog/internal/queue"
	"github.com/RuleViz/LightBlog/internal/repository"
	"github.com/RuleViz/LightBlog/internal/storage"

	"gorm.io/gorm"
)

// PostService 文章生命周期服务
type PostService struct {
	db    *gorm.DB
	posts repository.PostRepository
	tags  repository.TagRepository
	media storage.MediaStore
	queue *queue.Client
}

// NewPostService 创建文章服务
func NewPostService(db *gorm.DB, posts repository.PostRepository, tags repository.TagRepository, media storage.MediaStore, queueClient *queue.Client) *PostService {
	return &PostService{
		db:    db,
		posts: posts,
		tags:  tags,
		media: media,
		queue: queueClient,
	}
}

// CreatePostInput 创建文章输入
type CreatePostInput struct {
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	ContentType   string
	Status        string
	Visibility    string
	Password      string
	CategoryID    *uint
	TagIDs        []uint
	CoverImageURL string
	Pinned        bool
}

// UpdatePostInput 更新文章输入，nil 字段表示不变更
type UpdatePostInput struct {
	Title         *string
	Slug          *string
	Excerpt       *string
	Content       *string
	ContentType   *string
	Status        *string
	Visibility    *string
	Password      *string
	CategoryID    *uint
	TagIDs        []uint // 空集合表示不变更，无法清空
	CoverImageURL *string
	Pinned        *bool
}

// PostStats 文章统计
type PostStats struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Draft     int64 `json:"draft"`
	Trashed   int64 `json:"trashed"`
}

var allowedPostStatuses = map[string]struct{}{
	constants.PostStatusDraft:     {},
	constants.PostStatusPublished: {},
}

var allowedPostVisibilities = map[string]struct{}{
	constants.PostVisibilityPublic:   {},
	constants.PostVisibilityPassword: {},
	constants.PostVisibilityPrivate:  {},
}

// Create 创建文章
func (s *PostService) Create(input CreatePostInput) (*models.Post, error) {
	status := input.Status
	if status == "" {
		status = constants.PostStatusDraft
	}
	if _, ok := allowedPostStatuses[status]; !ok {
		return nil, ErrInvalidStatus
	}
	visibility := input.Visibility
	if visibility == "" {
		visibility = constants.PostVisibilityPublic
	}
	if _, ok := allowedPostVisibilities[visibility]; !ok {
		return nil, ErrInvalidVisibility
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = constants.PostContentTypeMarkdown
	}

	var created *models.Post
	err := s.db.Transaction(func(tx *gorm.DB) error {
		posts := repository.NewPostRepository(tx)
		tags := repository.NewTagRepository(tx)
		categories := repository.NewCategoryRepository(tx)

		count, err := posts.CountBySlug(input.Slug, nil)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSlugExists
		}

		if input.CategoryID != nil {
			category, err := categories.GetByID(*input.CategoryID)
			if err != nil {
				return err
			}
			if category == nil {
				return ErrCategoryNotFound
			}
		}

		// 不存在的标签 ID 静默忽略
		resolvedTags, err := tags.FindByIDs(uniqueIDs(input.TagIDs))
		if err != nil {
			return err
		}

		post := models.Post{
			Title:         input.Title,
			Slug:          input.Slug,
			Excerpt:       input.Excerpt,
			Content:       input.Content,
			ContentType:   contentType,
			Status:        status,
			Visibility:    visibility,
			Password:      input.Password,
			CategoryID:    input.CategoryID,
			CoverImageURL: input.CoverImageURL,
			Pinned:        input.Pinned,
		}
		if err := posts.Create(&post); err != nil {
			return err
		}
		if len(resolvedTags) > 0 {
			if err := posts.ReplaceTags(&post, resolvedTags); err != nil {
				return err
			}
		}
		if err := refreshTagCounts(tags, tagIDsOf(resolvedTags)); err != nil {
			return err
		}
		created = &post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update 部分更新文章，nil 字段保持原值
func (s *PostService) Update(id uint, input UpdatePostInput) (*models.Post, error) {
	if input.Status != nil {
		if _, ok := allowedPostStatuses[*input.Status]; !ok {
			return nil, ErrInvalidStatus
		}
	}
	if input.Visibility != nil {
		if _, ok := allowedPostVisibilities[*input.Visibility]; !ok {
			return nil, ErrInvalidVisibility
		}
	}

	var updated *models.Post
	err := s.db.Transaction(func(tx *gorm.DB) error {
		posts := repository.NewPostRepository(tx)
		tags := repository.NewTagRepository(tx)
		categories := repository.NewCategoryRepository(tx)

		post, err := posts.GetByID(id)
		if err != nil {
			return err
		}
		if post == nil {
			return ErrNotFound
		}

		if input.Slug != nil && *input.Slug != post.Slug {
			count, err := posts.CountBySlug(*input.Slug, &id)
			if err != nil {
				return err
			}
			if count > 0 {
				return ErrSlugExists
			}
			post.Slug = *input.Slug
		}
		if input.Title != nil {
			post.Title = *input.Title
		}
		if input.Excerpt != nil {
			post.Excerpt = *input.Excerpt
		}
		if input.Content != nil {
			post.Content = *input.Content
		}
		if input.ContentType != nil {
			post.ContentType = *input.ContentType
		}
		if input.Status != nil {
			post.Status = *input.Status
		}
		if input.Visibility != nil {
			post.Visibility = *input.Visibility
		}
		if input.Password != nil {
			post.Password = *input.Password
		}
		if input.CoverImageURL != nil {
			post.CoverImageURL = *input.CoverImageURL
		}
		if input.Pinned != nil {
			post.Pinned = *input.Pinned
		}
		if input.CategoryID != nil {
			category, err := categories.GetByID(*input.CategoryID)
			if err != nil {
				return err
			}
			if category == nil {
				return ErrCategoryNotFound
			}
			post.CategoryID = input.CategoryID
		}

		// 变更前后标签的并集都要刷新计数，被移除的标签才会减少
		touched := tagIDsOf(post.Tags)
		if len(input.TagIDs) > 0 {
			resolvedTags, err := tags.FindByIDs(uniqueIDs(input.TagIDs))
			if err != nil {
				return err
			}
			touched = append(touched, tagIDsOf(resolvedTags)...)
			if err := posts.ReplaceTags(post, resolvedTags); err != nil {
				return err
			}
		}

		if err := posts.Update(post); err != nil {
			return err
		}
		if err := refreshTagCounts(tags, touched); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete 物理删除存活文章，先清理其引用的本地媒体文件
func (s *PostService) Delete(id uint) error {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}

	// 文件清理在事务外尽力而为，失败不阻塞删除
	s.cleanupPostMedia(post)

	return s.db.Transaction(func(tx *gorm.DB) error {
		posts := repository.NewPostRepository(tx)
		tags := repository.NewTagRepository(tx)

		touched := tagIDsOf(post.Tags)
		if err := posts.HardDelete(post); err != nil {
			return err
		}
		return refreshTagCounts(tags, touched)
	})
}

// SoftDelete 将文章移入回收站
func (s *PostService) SoftDelete(id uint) error {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		posts := repository.NewPostRepository(tx)
		tags := repository.NewTagRepository(tx)

		if err := posts.SoftDelete(id); err != nil {
			return err
		}
		return refreshTagCounts(tags, tagIDsOf(post.Tags))
	})
}

// Restore 从回收站恢复文章
func (s *PostService) Restore(id uint) error {
	post, err := s.posts.GetTrashedByID(id)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		posts := repository.NewPostRepository(tx)
		tags := repository.NewTagRepository(tx)

		if err := posts.Restore(id); err != nil {
			return err
		}
		return refreshTagCounts(tags, tagIDsOf(post.Tags))
	})
}

// DeleteTrashed 从回收站彻底删除文章
func (s *PostService) DeleteTrashed(id uint) error {
	post, err := s.posts.GetTrashedByID(id)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}

	s.cleanupPostMedia(post)

	return s.db.Transaction(func(tx *gorm.DB) error {
		posts := repository.NewPostRepository(tx)
		tags := repository.NewTagRepository(tx)

		touched := tagIDsOf(post.Tags)
		if err := posts.HardDelete(post); err != nil {
			return err
		}
		return refreshTagCounts(tags, touched)
	})
}

// GetByID 获取存活文章
func (s *PostService) GetByID(id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}

// GetPublicBySlug 获取已发布文章详情。
// 草稿、回收站与私有文章一律按不存在处理，避免对外暴露其存在性。
func (s *PostService) GetPublicBySlug(slug string) (*models.Post, error) {
	post, err := s.posts.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.IsPublished() || post.Visibility == constants.PostVisibilityPrivate {
		return nil, ErrNotFound
	}
	return post, nil
}

// ListAdmin 后台文章列表
func (s *PostService) ListAdmin(filter repository.PostListFilter) ([]models.Post, int64, error) {
	filter.WithRefs = true
	return s.posts.List(filter)
}

// ListTrash 回收站列表
func (s *PostService) ListTrash(page, pageSize int) ([]models.Post, int64, error) {
	return s.posts.List(repository.PostListFilter{
		Page:     page,
		PageSize: pageSize,
		InTrash:  true,
		OrderBy:  "posts.created_at DESC",
	})
}

// ListPublic 公开文章列表，仅已发布且非私有
func (s *PostService) ListPublic(filter repository.PostListFilter) ([]models.Post, int64, error) {
	filter.PublicOnly = true
	filter.Status = ""
	filter.Visibility = ""
	filter.InTrash = false
	filter.WithRefs = true
	if filter.OrderBy == "" {
		filter.OrderBy = "posts.pinned DESC, posts.published_at DESC, posts.created_at DESC"
	}
	return s.posts.List(filter)
}

// IncrementViewCount 原子递增浏览数
func (s *PostService) IncrementViewCount(id uint) error {
	affected, err := s.posts.IncrementViewCount(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementLikeCount 原子递增点赞数
func (s *PostService) IncrementLikeCount(id uint) error {
	affected, err := s.posts.IncrementLikeCount(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// VerifyPassword 校验加密文章的访问密码（明文比对）
func (s *PostService) VerifyPassword(slug, password string) (*models.Post, error) {
	post, err := s.GetPublicBySlug(slug)
	if err != nil {
		return nil, err
	}
	if post.Visibility != constants.PostVisibilityPassword {
		return post, nil
	}
	if post.Password == "" || post.Password != password {
		return nil, ErrInvalidPassword
	}
	return post, nil
}

// Stats 文章统计
func (s *PostService) Stats() (*PostStats, error) {
	total, err := s.posts.Count(repository.PostListFilter{})
	if err != nil {
		return nil, err
	}
	published, err := s.posts.Count(repository.PostListFilter{Status: constants.PostStatusPublished})
	if err != nil {
		return nil, err
	}
	draft, err := s.posts.Count(repository.PostListFilter{Status: constants.PostStatusDraft})
	if err != nil {
		return nil, err
	}
	trashed, err := s.posts.Count(repository.PostListFilter{InTrash: true})
	if err != nil {
		return nil, err
	}
	return &PostStats{Total: total, Published: published, Draft: draft, Trashed: trashed}, nil
}

// cleanupPostMedia 收集封面与正文引用的站内图片并清理。
// 队列可用时交给 worker 异步处理，否则同步尽力删除；所有失败只记录日志。
func (s *PostService) cleanupPostMedia(post *models.Post) {
	if s.media == nil {
		return
	}

	urls := make([]string, 0, 8)
	if post.CoverImageURL != "" {
		urls = append(urls, post.CoverImageURL)
	}
	urls = append(urls, markdown.ExtractImageURLs(post.Content)...)

	baseDir := ""
	if local, ok := s.media.(*storage.LocalMediaStore); ok {
		baseDir = local.BaseDir()
	}

	seen := make(map[string]struct{}, len(urls))
	paths := make([]string, 0, len(urls))
	for _, u := range urls {
		path, ok := markdown.ResolveLocalUploadPath(u, baseDir)
		if !ok {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return
	}

	if s.queue.Enabled() {
		err := s.queue.EnqueueMediaCleanup(queue.MediaCleanupPayload{PostID: post.ID, Paths: paths})
		if err == nil {
			return
		}
		logger.Warnw("post_media_cleanup_enqueue_failed", "post_id", post.ID, "error", err)
	}

	for _, path := range paths {
		if err := s.media.Remove(path); err != nil {
			logger.Warnw("post_media_cleanup_remove_failed", "post_id", post.ID, "path", path, "error", err)
		}
	}
}

func uniqueIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func tagIDsOf(tags []models.Tag) []uint {
	if len(tags) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}
	return ids
}
