package api

import (
	"github.com/gin-gonic/gin"

	"github.com/shareml/shareml_go_server/config"
	"github.com/shareml/shareml_go_server/internal/api/handler"
	"github.com/shareml/shareml_go_server/internal/api/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	groupHandler        *handler.GroupHandler
	datasetHandler      *handler.DatasetHandler
	trainingHandler     *handler.TrainingHandler
	modelHandler        *handler.ModelHandler
	pipelineCopyHandler *handler.PipelineCopyHandler
	websocketHandler    *handler.WebSocketHandler
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	groupHandler *handler.GroupHandler,
	datasetHandler *handler.DatasetHandler,
	trainingHandler *handler.TrainingHandler,
	modelHandler *handler.ModelHandler,
	pipelineCopyHandler *handler.PipelineCopyHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		groupHandler:        groupHandler,
		datasetHandler:      datasetHandler,
		trainingHandler:     trainingHandler,
		modelHandler:        modelHandler,
		pipelineCopyHandler: pipelineCopyHandler,
		websocketHandler:    websocketHandler,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket（复制进度推送）
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
			}

			// 群组
			groups := authenticated.Group("/groups")
			{
				groups.POST("", r.groupHandler.Create)
				groups.GET("", r.groupHandler.List)
				groups.GET("/:id", r.groupHandler.Get)
				groups.POST("/:id/members", r.groupHandler.AddMember)
				groups.DELETE("/:id/members/:userId", r.groupHandler.RemoveMember)
			}

			// 数据集
			datasets := authenticated.Group("/datasets")
			{
				datasets.POST("", r.datasetHandler.Upload)
				datasets.GET("", r.datasetHandler.List)
				datasets.GET("/:id", r.datasetHandler.Get)
				datasets.PUT("/:id", r.datasetHandler.Update)
				datasets.DELETE("/:id", r.datasetHandler.Delete)
			}

			// 数据集配置
			authenticated.POST("/dataset-configurations", r.datasetHandler.CreateConfig)
			authenticated.GET("/dataset-configurations/:id", r.datasetHandler.GetConfig)

			// 算法与算法配置
			authenticated.GET("/algorithms", r.trainingHandler.ListAlgorithms)
			authenticated.POST("/algorithm-configurations", r.trainingHandler.CreateAlgorithmConfig)
			authenticated.POST("/custom-algorithm-configurations", r.trainingHandler.CreateCustomAlgorithmConfig)

			// 训练
			trainings := authenticated.Group("/trainings")
			{
				trainings.POST("", r.trainingHandler.Create)
				trainings.GET("", r.trainingHandler.List)
				trainings.GET("/:id", r.trainingHandler.Get)
				trainings.POST("/:id/copy", r.pipelineCopyHandler.Copy)
				trainings.POST("/:id/copy-to-group/:groupId", r.pipelineCopyHandler.CopyToGroup)
			}

			// 模型
			models := authenticated.Group("/models")
			{
				models.POST("", r.modelHandler.Create)
				models.GET("", r.modelHandler.List)
				models.GET("/:id", r.modelHandler.Get)
				models.POST("/:id/finalize", r.modelHandler.Finalize)
				models.POST("/:id/share", r.modelHandler.Share)
			}

			// 复制记录
			copies := authenticated.Group("/pipeline-copies")
			{
				copies.GET("/initiated", r.pipelineCopyHandler.ListInitiated)
				copies.GET("/received", r.pipelineCopyHandler.ListReceived)
				copies.GET("/:id", r.pipelineCopyHandler.Get)
			}
		}
	}

	return engine
}
