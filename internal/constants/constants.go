package constants

// 文章状态常量
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// 文章可见性常量
const (
	PostVisibilityPublic   = "public"
	PostVisibilityPassword = "password"
	PostVisibilityPrivate  = "private"
)

// 文章内容类型常量
const (
	PostContentTypeMarkdown = "markdown"
	PostContentTypeHTML     = "html"
)

// 上传路径常量
const (
	UploadURLPrefix = "/uploads"
)

// 队列常量
const (
	QueueDefault     = "default"
	TaskMediaCleanup = "media:cleanup"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "lb"
)

// 分类层级常量
const (
	CategoryRootLevel = 1
)
