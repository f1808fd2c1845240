package models

import (
	"time"

	"github.com/RuleViz/LightBlog/internal/constants"

	"gorm.io/gorm"
)

// Post 文章表
type Post struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                       // 主键
	Title         string         `gorm:"type:varchar(200);not null" json:"title"`                    // 标题
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`                           // 唯一标识
	Excerpt       string         `gorm:"type:varchar(500)" json:"excerpt"`                           // 摘要
	Content       string         `gorm:"type:text" json:"content"`                                   // 正文（Markdown）
	ContentType   string         `gorm:"type:varchar(20);not null;default:markdown" json:"content_type"` // 内容类型
	Status        string         `gorm:"type:varchar(20);not null;index;default:draft" json:"status"`    // 状态（draft/published）
	Visibility    string         `gorm:"type:varchar(20);not null;index;default:public" json:"visibility"` // 可见性（public/password/private）
	Password      string         `gorm:"type:varchar(100)" json:"-"`                                 // 访问密码（password 可见性时使用）
	CategoryID    *uint          `gorm:"index" json:"category_id"`                                   // 所属分类
	Category      *Category      `json:"category,omitempty"`                                         // 分类关联
	Tags          []Tag          `gorm:"many2many:post_tags" json:"tags,omitempty"`                  // 标签关联
	CoverImageURL string         `gorm:"type:varchar(500)" json:"cover_image_url"`                   // 封面图
	ViewCount     int64          `gorm:"not null;default:0" json:"view_count"`                       // 浏览数
	LikeCount     int64          `gorm:"not null;default:0" json:"like_count"`                       // 点赞数
	CommentCount  int64          `gorm:"not null;default:0" json:"comment_count"`                    // 评论数
	Pinned        bool           `gorm:"not null;default:false;index" json:"pinned"`                 // 是否置顶
	PinnedAt      *time.Time     `json:"pinned_at"`                                                  // 置顶时间（置顶时存在）
	PublishedAt   *time.Time     `gorm:"index" json:"published_at"`                                  // 首次发布时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                                 // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间（回收站）
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}

// BeforeSave 维护发布时间与置顶时间
func (p *Post) BeforeSave(tx *gorm.DB) error {
	if p.Status == constants.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}
	if p.Pinned {
		if p.PinnedAt == nil {
			now := time.Now()
			p.PinnedAt = &now
		}
	} else {
		p.PinnedAt = nil
	}
	return nil
}

// IsPublished 是否已发布
func (p *Post) IsPublished() bool {
	return p.Status == constants.PostStatusPublished
}
