package repository

// PostListFilter 查询文章列表的过滤条件
type PostListFilter struct {
	Page       int
	PageSize   int
	Status     string
	Visibility string
	CategoryID *uint
	TagID      *uint
	Search     string
	PublicOnly bool // 仅已发布且可见性为 public/password 的文章
	InTrash    bool // 仅回收站中的文章
	WithRefs   bool // 预加载分类与标签
	OrderBy    string
}

// TagListFilter 查询标签列表的过滤条件
type TagListFilter struct {
	Page     int
	PageSize int
	Search   string
	OrderBy  string
}

// CategoryListFilter 查询分类列表的过滤条件
type CategoryListFilter struct {
	ParentID *uint
	Search   string
}
