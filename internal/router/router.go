package router

import (
	"fmt"
	"strings"

	"github.com/RuleViz/LightBlog/internal/cache"
	"github.com/RuleViz/LightBlog/internal/config"
	"github.com/RuleViz/LightBlog/internal/constants"
	adminhandlers "github.com/RuleViz/LightBlog/internal/http/handlers/admin"
	publichandlers "github.com/RuleViz/LightBlog/internal/http/handlers/public"
	"github.com/RuleViz/LightBlog/internal/logger"
	"github.com/RuleViz/LightBlog/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	passwordRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:post_password", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的图片）- 必须放在最前面
	r.Static(constants.UploadURLPrefix, cfg.Upload.Dir)

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/posts", publicHandler.GetPosts)
			public.GET("/posts/:slug", publicHandler.GetPostBySlug)
			public.POST("/posts/:slug/verify-password", RateLimitMiddleware(redisClient, passwordRule, KeyByIP), publicHandler.VerifyPostPassword)
			public.POST("/posts/:slug/view", publicHandler.ViewPost)
			public.POST("/posts/:slug/like", publicHandler.LikePost)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/categories/:slug", publicHandler.GetCategoryBySlug)
			public.GET("/tags", publicHandler.GetTags)
			public.GET("/tags/:slug", publicHandler.GetTagBySlug)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey))
			{
				// 文章管理
				authorized.GET("/posts", adminHandler.GetPosts)
				authorized.GET("/posts/stats", adminHandler.GetPostStats)
				authorized.GET("/posts/trash", adminHandler.GetPostTrash)
				authorized.GET("/posts/:id", adminHandler.GetPost)
				authorized.POST("/posts", adminHandler.CreatePost)
				authorized.PUT("/posts/:id", adminHandler.UpdatePost)
				authorized.DELETE("/posts/:id", adminHandler.DeletePost)
				authorized.POST("/posts/:id/trash", adminHandler.TrashPost)
				authorized.POST("/posts/:id/restore", adminHandler.RestorePost)
				authorized.DELETE("/posts/trash/:id", adminHandler.DeleteTrashedPost)

				// 分类管理
				authorized.GET("/categories", adminHandler.GetCategories)
				authorized.GET("/categories/exists", adminHandler.CheckCategoryExists)
				authorized.GET("/categories/:id", adminHandler.GetCategory)
				authorized.GET("/categories/:id/children", adminHandler.GetCategoryChildren)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				// 标签管理
				authorized.GET("/tags", adminHandler.GetTags)
				authorized.GET("/tags/exists", adminHandler.CheckTagExists)
				authorized.GET("/tags/:id", adminHandler.GetTag)
				authorized.POST("/tags", adminHandler.CreateTag)
				authorized.PUT("/tags/:id", adminHandler.UpdateTag)
				authorized.DELETE("/tags/:id", adminHandler.DeleteTag)

				// 文件上传
				authorized.POST("/upload", adminHandler.UploadImage)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
