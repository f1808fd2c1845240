package models

import "time"

// Category 分类表（父子自引用构成树）
type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`                    // 主键
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`        // 唯一名称
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`        // 唯一标识
	ParentID    *uint     `gorm:"index" json:"parent_id"`                  // 父分类
	Level       int       `gorm:"not null;default:1" json:"level"`         // 层级（根为 1）
	SortOrder   int       `gorm:"not null;default:0;index" json:"sort_order"` // 排序权重
	Description string    `gorm:"type:varchar(500)" json:"description"`    // 描述
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                 // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                              // 更新时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
