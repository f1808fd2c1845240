package service

import (
	"github.com/RuleViz/LightBlog/internal/constants"
	"github.com/RuleViz/LightBlog/internal/logger"
	"github.com/RuleViz/LightBlog/internal/models"
	"github.com/RuleViz/LightBlog/internal/repository"

	"gorm.io/gorm"
)

// CategoryService 分类树服务
type CategoryService struct {
	db         *gorm.DB
	categories repository.CategoryRepository
	posts      repository.PostRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(db *gorm.DB, categories repository.CategoryRepository, posts repository.PostRepository) *CategoryService {
	return &CategoryService{
		db:         db,
		categories: categories,
		posts:      posts,
	}
}

// CreateCategoryInput 创建分类输入
type CreateCategoryInput struct {
	Name        string
	Slug        string
	ParentID    *uint
	SortOrder   int
	Description string
}

// UpdateCategoryInput 更新分类输入，nil 字段表示不变更
type UpdateCategoryInput struct {
	Name        *string
	Slug        *string
	ParentID    *uint // 只能换父，不能摘除父分类
	SortOrder   *int
	Description *string
}

// Create 创建分类，层级取父分类 +1，根分类为 1
func (s *CategoryService) Create(input CreateCategoryInput) (*models.Category, error) {
	var created *models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories := repository.NewCategoryRepository(tx)

		count, err := categories.CountByName(input.Name, nil)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrNameExists
		}
		count, err = categories.CountBySlug(input.Slug, nil)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSlugExists
		}

		level := constants.CategoryRootLevel
		if input.ParentID != nil {
			parent, err := categories.GetByID(*input.ParentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return ErrParentNotFound
			}
			level = parent.Level + 1
		}

		category := models.Category{
			Name:        input.Name,
			Slug:        input.Slug,
			ParentID:    input.ParentID,
			Level:       level,
			SortOrder:   input.SortOrder,
			Description: input.Description,
		}
		if err := categories.Create(&category); err != nil {
			return err
		}
		created = &category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update 部分更新分类。换父时只重算自身层级，
// 既有子孙的层级不级联修正，也不做环检测（沿用历史行为）。
func (s *CategoryService) Update(id uint, input UpdateCategoryInput) (*models.Category, error) {
	var updated *models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories := repository.NewCategoryRepository(tx)

		category, err := categories.GetByID(id)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrNotFound
		}

		if input.Name != nil && *input.Name != category.Name {
			count, err := categories.CountByName(*input.Name, &id)
			if err != nil {
				return err
			}
			if count > 0 {
				return ErrNameExists
			}
			category.Name = *input.Name
		}
		if input.Slug != nil && *input.Slug != category.Slug {
			count, err := categories.CountBySlug(*input.Slug, &id)
			if err != nil {
				return err
			}
			if count > 0 {
				return ErrSlugExists
			}
			category.Slug = *input.Slug
		}
		if input.SortOrder != nil {
			category.SortOrder = *input.SortOrder
		}
		if input.Description != nil {
			category.Description = *input.Description
		}
		if input.ParentID != nil {
			parent, err := categories.GetByID(*input.ParentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return ErrParentNotFound
			}
			category.ParentID = input.ParentID
			category.Level = parent.Level + 1
		}

		if err := categories.Update(category); err != nil {
			return err
		}
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete 删除分类及其全部子孙。
// 仅统计目标分类自身的存活文章，有则拒绝；目标分类下的回收站文章随之物理删除。
// 子孙分类下的文章保持原样，其分类引用悬空（沿用历史行为）。
func (s *CategoryService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		categories := repository.NewCategoryRepository(tx)
		posts := repository.NewPostRepository(tx)
		tags := repository.NewTagRepository(tx)

		category, err := categories.GetByID(id)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrNotFound
		}

		count, err := categories.CountLivePosts(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return &CategoryInUseError{PostCount: count}
		}

		all, err := categories.ListAll()
		if err != nil {
			return err
		}
		targetIDs := collectSubtreeIDs(all, id)

		trashed, err := posts.ListTrashedByCategoryIDs([]uint{id})
		if err != nil {
			return err
		}
		touched := make([]uint, 0)
		for i := range trashed {
			touched = append(touched, tagIDsOf(trashed[i].Tags)...)
			if err := posts.HardDelete(&trashed[i]); err != nil {
				return err
			}
		}
		if len(trashed) > 0 {
			// 级联删除的回收站文章不做媒体清理，磁盘残留依赖人工巡检
			logger.Warnw("category_delete_cascade_trashed_posts", "category_id", id, "count", len(trashed))
		}

		if err := categories.DeleteByIDs(targetIDs); err != nil {
			return err
		}

		if err := refreshTagCounts(tags, touched); err != nil {
			return err
		}
		return nil
	})
}

// GetByID 根据 ID 获取分类
func (s *CategoryService) GetByID(id uint) (*models.Category, error) {
	category, err := s.categories.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// GetBySlug 根据 slug 获取分类
func (s *CategoryService) GetBySlug(slug string) (*models.Category, error) {
	category, err := s.categories.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// List 分类列表
func (s *CategoryService) List(filter repository.CategoryListFilter) ([]models.Category, error) {
	return s.categories.List(filter)
}

// GetChildren 直接子分类，不递归
func (s *CategoryService) GetChildren(parentID uint) ([]models.Category, error) {
	return s.categories.ListChildren(parentID)
}

// NameExists 名称是否已占用
func (s *CategoryService) NameExists(name string, excludeID *uint) (bool, error) {
	count, err := s.categories.CountByName(name, excludeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SlugExists slug 是否已占用
func (s *CategoryService) SlugExists(slug string, excludeID *uint) (bool, error) {
	count, err := s.categories.CountBySlug(slug, excludeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// collectSubtreeIDs 计算目标分类与其全部子孙。
// 对每个分类沿 parent 链上溯，链条经过目标即属于待删集合。
func collectSubtreeIDs(all []models.Category, targetID uint) []uint {
	byID := make(map[uint]*models.Category, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	ids := []uint{targetID}
	for i := range all {
		if all[i].ID == targetID {
			continue
		}
		current := &all[i]
		for current.ParentID != nil {
			if *current.ParentID == targetID {
				ids = append(ids, all[i].ID)
				break
			}
			parent, ok := byID[*current.ParentID]
			if !ok {
				break
			}
			current = parent
		}
	}
	return ids
}

// refreshTagCounts 重算并回写标签的存活文章数
func refreshTagCounts(tags repository.TagRepository, tagIDs []uint) error {
	for _, tagID := range uniqueIDs(tagIDs) {
		count, err := tags.CountLivePosts(tagID)
		if err != nil {
			return err
		}
		if err := tags.UpdatePostCount(tagID, count); err != nil {
			return err
		}
	}
	return nil
}
