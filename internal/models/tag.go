package models

import "time"

// Tag 标签表
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`             // 主键
	Name      string    `gorm:"uniqueIndex;not null" json:"name"` // 唯一名称
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"` // 唯一标识
	Color     string    `gorm:"type:varchar(20)" json:"color"`    // 展示颜色
	PostCount int64     `gorm:"not null;default:0" json:"post_count"` // 冗余的存活文章数
	CreatedAt time.Time `gorm:"index" json:"created_at"`          // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                       // 更新时间
}

// TableName 指定表名
func (Tag) TableName() string {
	return "tags"
}
