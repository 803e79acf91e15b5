// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leaf-care-go/internal/config"
	"leaf-care-go/internal/handler"
	"leaf-care-go/internal/middleware"
	"leaf-care-go/internal/repository"
	"leaf-care-go/internal/service"
	"leaf-care-go/pkg/database"
	"leaf-care-go/pkg/es"
	"leaf-care-go/pkg/kafka"
	"leaf-care-go/pkg/llm"
	"leaf-care-go/pkg/log"
	"leaf-care-go/pkg/storage"
	"leaf-care-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")
	if cfg.LLM.APIKey == "" {
		log.Warnf("未配置 LLM_API_KEY，聊天接口将返回错误")
	}

	// 3. 初始化数据库和 Redis
	database.InitDB(cfg.Database)
	database.InitRedis(cfg.Database.Redis)

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	plantRepo := repository.NewPlantRepository(database.DB)
	blacklist := repository.NewTokenBlacklist(database.RDB)
	digestRepo := repository.NewDigestRepository(database.RDB)
	knowledgeRepo := repository.NewBuiltinKnowledgeRepository()

	var conversationRepo repository.ConversationRepository
	if cfg.Chat.Store == "redis" {
		conversationRepo = repository.NewRedisConversationRepository(database.RDB)
	} else {
		conversationRepo = repository.NewMemoryConversationRepository()
	}
	log.Infof("对话存储: %s", cfg.Chat.Store)

	// 5. 可选的外部组件：MinIO、Elasticsearch
	var imageStore service.ImageStore
	if cfg.MinIO.Endpoint != "" {
		if err := storage.InitMinIO(cfg.MinIO); err != nil {
			log.Errorf("MinIO 初始化失败，图片将不会被保存: %v", err)
		} else {
			imageStore = storage.NewImageStore(storage.MinioClient, cfg.MinIO)
		}
	}

	var searcher service.KnowledgeSearcher
	if cfg.Elasticsearch.Enabled {
		if err := es.InitES(cfg.Elasticsearch); err != nil {
			log.Errorf("es 初始化失败，知识检索使用本地匹配: %v", err)
		} else {
			searcher = es.NewKnowledgeIndex(es.ESClient, cfg.Elasticsearch.IndexName)
		}
	}

	// 6. 初始化 Service (依赖注入)
	clock := service.NewSystemClock(cfg.Reminder.Location())
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	llmClient := llm.NewClient(cfg.LLM)

	userService := service.NewUserService(userRepo, blacklist, jwtManager)
	adminService := service.NewAdminService(userRepo, plantRepo)
	plantService := service.NewPlantService(plantRepo, clock)
	reminderService := service.NewReminderService(plantRepo, digestRepo, clock)
	chatService := service.NewChatService(llmClient, conversationRepo, cfg.LLM)
	conversationService := service.NewConversationService(conversationRepo)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, searcher)
	imageService := service.NewImageService(imageStore)

	if searcher != nil {
		indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
		if err := knowledgeService.IndexAll(indexCtx); err != nil {
			log.Errorf("知识库写入索引失败: %v", err)
		}
		cancelIndex()
	}

	// 7. 每日提醒摘要：Kafka 可用时经由主题投递，否则进程内直接写入 Redis
	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	processor := service.NewDigestProcessor(digestRepo)
	var publisher service.DigestPublisher
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka)
		publisher = producer
		go kafka.StartConsumer(bgCtx, cfg.Kafka, processor)
	} else {
		publisher = service.NewLocalDigestPublisher(processor)
	}

	scheduler := service.NewDigestScheduler(service.NewDigestJob(userRepo, plantRepo, publisher, clock), clock)
	if err := scheduler.Start(cfg.Reminder.DigestCron); err != nil {
		log.Fatal("提醒摘要任务启动失败", err)
	}

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Metrics(), gin.Recovery(), middleware.CORS(cfg.CORS.AllowedOrigins))

	// 每个路由各自计数，注册与问答不占用登录的额度
	rateWindow := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	registerLimit := middleware.RateLimit(cfg.RateLimit.Requests, rateWindow)
	loginLimit := middleware.RateLimit(cfg.RateLimit.Requests, rateWindow)
	chatLimit := middleware.RateLimit(cfg.RateLimit.Requests, rateWindow)
	authMiddleware := middleware.AuthMiddleware(jwtManager, userService, blacklist)

	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(adminService)
	plantHandler := handler.NewPlantHandler(plantService)
	reminderHandler := handler.NewReminderHandler(reminderService)
	chatHandler := handler.NewChatHandler(chatService, cfg.CORS.AllowedOrigins)
	conversationHandler := handler.NewConversationHandler(conversationService)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeService)
	imageHandler := handler.NewImageHandler(imageService)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 9. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", registerLimit, authHandler.Register)
			auth.POST("/login", loginLimit, authHandler.Login)
			auth.POST("/refreshToken", authHandler.RefreshToken)
		}

		users := apiV1.Group("/users")
		users.Use(authMiddleware)
		{
			users.GET("/me", userHandler.GetProfile)
			users.POST("/logout", userHandler.Logout)
		}

		plant := apiV1.Group("/plant")
		{
			// 公开接口
			plant.GET("/health", handler.Health)
			plant.GET("/knowledge", knowledgeHandler.List)
			plant.GET("/knowledge/search", knowledgeHandler.Search)
			plant.GET("/knowledge/:id", knowledgeHandler.Get)

			plant.POST("/chat", authMiddleware, chatLimit, chatHandler.Chat)
			// 浏览器无法为 WebSocket 设置请求头，token 通过查询参数传递
			plant.GET("/chat/ws", authMiddleware, chatHandler.Handle)
			plant.GET("/conversations", authMiddleware, conversationHandler.List)
			plant.GET("/conversations/:id", authMiddleware, conversationHandler.Get)
			plant.POST("/analyze-image", authMiddleware, imageHandler.Analyze)
		}

		authed := apiV1.Group("")
		authed.Use(authMiddleware)
		{
			authed.GET("/get_plants", plantHandler.List)
			authed.POST("/plants", plantHandler.Create)
			authed.GET("/plants/:id", plantHandler.Get)
			authed.PUT("/plants/:id", plantHandler.Update)
			authed.DELETE("/plants/:id", plantHandler.Delete)
			authed.POST("/plants/:id/water", plantHandler.Water)
			authed.POST("/plants/:id/fertilize", plantHandler.Fertilize)

			authed.GET("/reminders", reminderHandler.List)
			authed.GET("/reminders/digest", reminderHandler.Digest)
		}

		admin := apiV1.Group("/admin")
		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin.Use(authMiddleware, middleware.AdminAuthMiddleware())
		{
			admin.GET("/users/list", adminHandler.ListUsers)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}

	scheduler.Stop()
	cancelBg()
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Errorf("关闭 Kafka 生产者失败: %v", err)
		}
	}
	if err := database.RDB.Close(); err != nil {
		log.Errorf("关闭 Redis 连接失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
