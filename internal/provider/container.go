package provider

import (
	"github.com/RuleViz/LightBlog/internal/cache"
	"github.com/RuleViz/LightBlog/internal/config"
	"github.com/RuleViz/LightBlog/internal/logger"
	"github.com/RuleViz/LightBlog/internal/models"
	"github.com/RuleViz/LightBlog/internal/queue"
	"github.com/RuleViz/LightBlog/internal/repository"
	"github.com/RuleViz/LightBlog/internal/service"
	"github.com/RuleViz/LightBlog/internal/storage"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	MediaStore  storage.MediaStore

	// Repositories
	PostRepo     repository.PostRepository
	CategoryRepo repository.CategoryRepository
	TagRepo      repository.TagRepository

	// Services
	AuthService     *service.AuthService
	UploadService   *service.UploadService
	PostService     *service.PostService
	CategoryService *service.CategoryService
	TagService      *service.TagService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		MediaStore:  storage.NewLocalMediaStore(cfg.Upload.Dir),
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.PostRepo = repository.NewPostRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.TagRepo = repository.NewTagRepository(db)
}

func (c *Container) initServices() {
	db := models.DB
	c.AuthService = service.NewAuthService(c.Config)
	c.UploadService = service.NewUploadService(c.Config)
	c.PostService = service.NewPostService(db, c.PostRepo, c.TagRepo, c.MediaStore, c.QueueClient)
	c.CategoryService = service.NewCategoryService(db, c.CategoryRepo, c.PostRepo)
	c.TagService = service.NewTagService(db, c.TagRepo)
}
