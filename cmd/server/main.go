package main

import (
	"context"
	"fmt"
	"log"

	"github.com/shareml/shareml_go_server/config"
	"github.com/shareml/shareml_go_server/internal/api"
	"github.com/shareml/shareml_go_server/internal/api/handler"
	"github.com/shareml/shareml_go_server/internal/database"
	"github.com/shareml/shareml_go_server/internal/pkg/oss"
	"github.com/shareml/shareml_go_server/internal/pkg/pubsub"
	"github.com/shareml/shareml_go_server/internal/pkg/ws"
	"github.com/shareml/shareml_go_server/internal/repository"
	"github.com/shareml/shareml_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := database.SeedAlgorithms(db); err != nil {
		log.Fatalf("Failed to seed algorithms: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS
	ossClient, err := oss.NewClient(&cfg.OSS)
	if err != nil {
		log.Fatalf("Failed to init oss client: %v", err)
	}
	log.Println("OSS client ready")

	// 初始化 WebSocket Hub 和进度推送链路
	wsHub := ws.NewHub()
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)

	// 订阅复制进度并转发到在线用户的 WebSocket 连接
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.CopyProgressMessage) {
			if !wsHub.IsOnline(msg.UserID) {
				return
			}
			if err := wsHub.SendToUser(msg.UserID, &ws.Message{
				Type: msg.Type,
				Data: msg,
			}); err != nil {
				log.Printf("Failed to push progress to user %d: %v", msg.UserID, err)
			}
		})
		if err != nil {
			log.Printf("Progress subscriber stopped: %v", err)
		}
	}()
	log.Println("WebSocket hub started")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	datasetRepo := repository.NewDatasetRepository(db)
	datasetConfigRepo := repository.NewDatasetConfigRepository(db)
	algorithmRepo := repository.NewAlgorithmRepository(db)
	algoConfigRepo := repository.NewAlgorithmConfigRepository(db)
	customConfigRepo := repository.NewCustomAlgorithmConfigRepository(db)
	trainingRepo := repository.NewTrainingRepository(db)
	modelRepo := repository.NewModelRepository(db)
	copyRepo := repository.NewPipelineCopyRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg)
	userService := service.NewUserService(userRepo)
	groupService := service.NewGroupService(groupRepo, userRepo)
	datasetService := service.NewDatasetService(datasetRepo, datasetConfigRepo, ossClient, cfg)
	trainingService := service.NewTrainingService(trainingRepo, datasetConfigRepo, algorithmRepo, algoConfigRepo, customConfigRepo)
	modelService := service.NewModelService(modelRepo, trainingRepo, userRepo)
	copyService := service.NewPipelineCopyService(
		trainingRepo,
		userRepo,
		groupRepo,
		datasetRepo,
		datasetConfigRepo,
		algoConfigRepo,
		customConfigRepo,
		modelRepo,
		copyRepo,
		ossClient,
		publisher,
		cfg,
	)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	groupHandler := handler.NewGroupHandler(groupService)
	datasetHandler := handler.NewDatasetHandler(datasetService)
	trainingHandler := handler.NewTrainingHandler(trainingService)
	modelHandler := handler.NewModelHandler(modelService)
	pipelineCopyHandler := handler.NewPipelineCopyHandler(copyService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		groupHandler,
		datasetHandler,
		trainingHandler,
		modelHandler,
		pipelineCopyHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
