package service

import (
	"github.com/RuleViz/LightBlog/internal/models"
	"github.com/RuleViz/LightBlog/internal/repository"

	"gorm.io/gorm"
)

// TagService 标签服务
type TagService struct {
	db   *gorm.DB
	tags repository.TagRepository
}

// NewTagService 创建标签服务
func NewTagService(db *gorm.DB, tags repository.TagRepository) *TagService {
	return &TagService{db: db, tags: tags}
}

// CreateTagInput 创建标签输入
type CreateTagInput struct {
	Name  string
	Slug  string
	Color string
}

// UpdateTagInput 更新标签输入，nil 字段表示不变更
type UpdateTagInput struct {
	Name  *string
	Slug  *string
	Color *string
}

// Create 创建标签
func (s *TagService) Create(input CreateTagInput) (*models.Tag, error) {
	var created *models.Tag
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tags := repository.NewTagRepository(tx)

		count, err := tags.CountByName(input.Name, nil)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrNameExists
		}
		count, err = tags.CountBySlug(input.Slug, nil)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSlugExists
		}

		tag := models.Tag{
			Name:  input.Name,
			Slug:  input.Slug,
			Color: input.Color,
		}
		if err := tags.Create(&tag); err != nil {
			return err
		}
		created = &tag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update 部分更新标签
func (s *TagService) Update(id uint, input UpdateTagInput) (*models.Tag, error) {
	var updated *models.Tag
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tags := repository.NewTagRepository(tx)

		tag, err := tags.GetByID(id)
		if err != nil {
			return err
		}
		if tag == nil {
			return ErrNotFound
		}

		if input.Name != nil && *input.Name != tag.Name {
			count, err := tags.CountByName(*input.Name, &id)
			if err != nil {
				return err
			}
			if count > 0 {
				return ErrNameExists
			}
			tag.Name = *input.Name
		}
		if input.Slug != nil && *input.Slug != tag.Slug {
			count, err := tags.CountBySlug(*input.Slug, &id)
			if err != nil {
				return err
			}
			if count > 0 {
				return ErrSlugExists
			}
			tag.Slug = *input.Slug
		}
		if input.Color != nil {
			tag.Color = *input.Color
		}

		if err := tags.Update(tag); err != nil {
			return err
		}
		updated = tag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete 删除标签，仍被存活文章引用时拒绝
func (s *TagService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		tags := repository.NewTagRepository(tx)

		tag, err := tags.GetByID(id)
		if err != nil {
			return err
		}
		if tag == nil {
			return ErrNotFound
		}

		count, err := tags.CountLivePosts(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &TagInUseError{PostCount: count}
		}

		return tags.Delete(id)
	})
}

// GetByID 根据 ID 获取标签
func (s *TagService) GetByID(id uint) (*models.Tag, error) {
	tag, err := s.tags.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, ErrNotFound
	}
	return tag, nil
}

// GetBySlug 根据 slug 获取标签
func (s *TagService) GetBySlug(slug string) (*models.Tag, error) {
	tag, err := s.tags.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, ErrNotFound
	}
	return tag, nil
}

// List 标签列表
func (s *TagService) List(filter repository.TagListFilter) ([]models.Tag, int64, error) {
	return s.tags.List(filter)
}

// NameExists 名称是否已占用
func (s *TagService) NameExists(name string, excludeID *uint) (bool, error) {
	count, err := s.tags.CountByName(name, excludeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SlugExists slug 是否已占用
func (s *TagService) SlugExists(slug string, excludeID *uint) (bool, error) {
	count, err := s.tags.CountBySlug(slug, excludeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
