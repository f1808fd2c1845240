package repository

import (
	"errors"
	"strings"

	"github.com/RuleViz/LightBlog/internal/models"

	"gorm.io/gorm"
)

// TagRepository 标签数据访问接口
type TagRepository interface {
	List(filter TagListFilter) ([]models.Tag, int64, error)
	GetByID(id uint) (*models.Tag, error)
	GetBySlug(slug string) (*models.Tag, error)
	FindByIDs(ids []uint) ([]models.Tag, error)
	Create(tag *models.Tag) error
	Update(tag *models.Tag) error
	Delete(id uint) error
	CountByName(name string, excludeID *uint) (int64, error)
	CountBySlug(slug string, excludeID *uint) (int64, error)
	CountLivePosts(tagID uint) (int64, error)
	UpdatePostCount(tagID uint, count int64) error
}

// GormTagRepository GORM 实现
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository 创建标签仓库
func NewTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// List 标签列表
func (r *GormTagRepository) List(filter TagListFilter) ([]models.Tag, int64, error) {
	query := r.db.Model(&models.Tag{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"name", "slug"})
		like := keywordLikeArg(dbDialectName(r.db), search)
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "post_count DESC, id ASC"
	}

	var tags []models.Tag
	if err := query.Order(orderBy).Find(&tags).Error; err != nil {
		return nil, 0, err
	}
	return tags, total, nil
}

// GetByID 根据 ID 获取标签
func (r *GormTagRepository) GetByID(id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// GetBySlug 根据 slug 获取标签
func (r *GormTagRepository) GetBySlug(slug string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.Where("slug = ?", slug).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// FindByIDs 按 ID 集合查询标签，忽略不存在的 ID
func (r *GormTagRepository) FindByIDs(ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := r.db.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Create 创建标签
func (r *GormTagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

// Update 更新标签
func (r *GormTagRepository) Update(tag *models.Tag) error {
	return r.db.Save(tag).Error
}

// Delete 删除标签及其文章关联
func (r *GormTagRepository) Delete(id uint) error {
	if err := r.db.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Tag{}, id).Error
}

// CountByName 统计名称数量
func (r *GormTagRepository) CountByName(name string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Tag{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountBySlug 统计 slug 数量
func (r *GormTagRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Tag{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountLivePosts 统计引用该标签的存活文章数
func (r *GormTagRepository) CountLivePosts(tagID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ?", tagID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdatePostCount 回写冗余的文章计数
func (r *GormTagRepository) UpdatePostCount(tagID uint, count int64) error {
	return r.db.Model(&models.Tag{}).
		Where("id = ?", tagID).
		UpdateColumn("post_count", count).Error
}
