package repository

import (
	"errors"
	"strings"

	"github.com/RuleViz/LightBlog/internal/constants"
	"github.com/RuleViz/LightBlog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository 文章数据访问接口
type PostRepository interface {
	List(filter PostListFilter) ([]models.Post, int64, error)
	Count(filter PostListFilter) (int64, error)
	GetByID(id uint) (*models.Post, error)
	GetBySlug(slug string) (*models.Post, error)
	GetTrashedByID(id uint) (*models.Post, error)
	ListTrashedByCategoryIDs(categoryIDs []uint) ([]models.Post, error)
	Create(post *models.Post) error
	Update(post *models.Post) error
	ReplaceTags(post *models.Post, tags []models.Tag) error
	SoftDelete(id uint) error
	Restore(id uint) error
	HardDelete(post *models.Post) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	IncrementViewCount(id uint) (int64, error)
	IncrementLikeCount(id uint) (int64, error)
}

// GormPostRepository GORM 实现
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建文章仓库
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) buildListQuery(filter PostListFilter) *gorm.DB {
	query := r.db.Model(&models.Post{})

	if filter.InTrash {
		query = query.Unscoped().Where("posts.deleted_at IS NOT NULL")
	}
	if filter.PublicOnly {
		query = query.
			Where("posts.status = ?", constants.PostStatusPublished).
			Where("posts.visibility IN ?", []string{constants.PostVisibilityPublic, constants.PostVisibilityPassword})
	}
	if filter.Status != "" {
		query = query.Where("posts.status = ?", filter.Status)
	}
	if filter.Visibility != "" {
		query = query.Where("posts.visibility = ?", filter.Visibility)
	}
	if filter.CategoryID != nil {
		query = query.Where("posts.category_id = ?", *filter.CategoryID)
	}
	if filter.TagID != nil {
		query = query.
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Where("post_tags.tag_id = ?", *filter.TagID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"posts.title", "posts.content", "posts.excerpt"})
		like := keywordLikeArg(dbDialectName(r.db), search)
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}
	return query
}

// List 文章列表
func (r *GormPostRepository) List(filter PostListFilter) ([]models.Post, int64, error) {
	query := r.buildListQuery(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "posts.created_at DESC"
	}
	if filter.WithRefs {
		query = query.Preload("Category").Preload("Tags")
	}

	var posts []models.Post
	if err := query.Order(orderBy).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Count 按过滤条件统计文章数
func (r *GormPostRepository) Count(filter PostListFilter) (int64, error) {
	var total int64
	if err := r.buildListQuery(filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// GetByID 根据 ID 获取存活文章
func (r *GormPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Category").Preload("Tags").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug 根据 slug 获取存活文章
func (r *GormPostRepository) GetBySlug(slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Category").Preload("Tags").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetTrashedByID 根据 ID 获取回收站文章
func (r *GormPostRepository) GetTrashedByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Unscoped().Preload("Tags").
		Where("id = ? AND deleted_at IS NOT NULL", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// ListTrashedByCategoryIDs 查询指定分类下的回收站文章
func (r *GormPostRepository) ListTrashedByCategoryIDs(categoryIDs []uint) ([]models.Post, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	var posts []models.Post
	err := r.db.Unscoped().Preload("Tags").
		Where("category_id IN ? AND deleted_at IS NOT NULL", categoryIDs).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Create 创建文章
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Omit(clause.Associations).Create(post).Error
}

// Update 更新文章（不触碰关联，标签变更走 ReplaceTags）
func (r *GormPostRepository) Update(post *models.Post) error {
	return r.db.Omit(clause.Associations).Save(post).Error
}

// ReplaceTags 整体替换文章的标签集合
func (r *GormPostRepository) ReplaceTags(post *models.Post, tags []models.Tag) error {
	if err := r.db.Model(post).Association("Tags").Replace(tags); err != nil {
		return err
	}
	post.Tags = tags
	return nil
}

// SoftDelete 将文章移入回收站
func (r *GormPostRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}

// Restore 从回收站恢复文章
func (r *GormPostRepository) Restore(id uint) error {
	return r.db.Unscoped().Model(&models.Post{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil).Error
}

// HardDelete 物理删除文章及其标签关联
func (r *GormPostRepository) HardDelete(post *models.Post) error {
	return r.db.Unscoped().Select(clause.Associations).Delete(post).Error
}

// CountBySlug 统计 slug 数量（含回收站，保证全局唯一）
func (r *GormPostRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Unscoped().Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementViewCount 原子递增浏览数，返回受影响行数
func (r *GormPostRepository) IncrementViewCount(id uint) (int64, error) {
	result := r.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	return result.RowsAffected, result.Error
}

// IncrementLikeCount 原子递增点赞数，返回受影响行数
func (r *GormPostRepository) IncrementLikeCount(id uint) (int64, error) {
	result := r.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1"))
	return result.RowsAffected, result.Error
}
