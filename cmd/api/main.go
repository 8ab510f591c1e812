package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/stock-service/docs"
	appstock "github.com/xiebiao/stock-service/internal/application/stock"
	"github.com/xiebiao/stock-service/internal/infrastructure/config"
	"github.com/xiebiao/stock-service/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/stock-service/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/stock-service/internal/interface/http/handler"
	"github.com/xiebiao/stock-service/internal/interface/http/middleware"
	"github.com/xiebiao/stock-service/pkg/metrics"
	"github.com/xiebiao/stock-service/pkg/mq"
	"github.com/xiebiao/stock-service/pkg/response"
	"github.com/xiebiao/stock-service/pkg/tracing"

	domainstock "github.com/xiebiao/stock-service/internal/domain/stock"
)

// main 主程序入口
// 说明：手动依赖注入（wire.go中有等价的Wire配置，用于生成wire_gen.go）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - Redis: %s (前缀: %s)\n", cfg.Redis.Addr(), cfg.Redis.KeyPrefix)
	fmt.Printf("  - 审计库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// 2. 初始化指标
	metrics.InitMetrics()

	// 3. 初始化追踪（可选）
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer("stock-service", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化追踪失败: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("[WARN] 关闭追踪失败: %v", err)
			}
		}()
		fmt.Printf("  - Tracing: %s\n", cfg.Tracing.Endpoint)
	}

	// 4. 初始化审计数据库连接（MySQL只存发放流水）
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 5. 初始化Redis连接（库存记录的权威数据源）
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 6. 依赖注入（手动组装）
	// 依赖链：Engine/Repository ← UseCase ← Handler

	// 基础设施层
	engine, err := redis.NewAllocationStore(redisClient)
	if err != nil {
		log.Fatalf("初始化分配引擎失败: %v", err)
	}
	picker := domainstock.NewIssuePicker()
	stockRepo := redis.NewStockRepository(redisClient, engine, picker, cfg.Redis.KeyPrefix)
	logRepo := mysql.NewIssueLogRepository(db)

	// 事件发布（可选，未启用时注入nil，用例侧跳过）
	var events appstock.EventPublisher
	if cfg.MQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化MQ失败: %v", err)
		}
		resilient := mq.NewResilientPublisher(publisher)
		defer resilient.Close()
		events = resilient
		fmt.Printf("  - MQ: %s (exchange: %s)\n", cfg.MQ.URL, cfg.MQ.Exchange)
	}

	// 应用层
	getStockUseCase := appstock.NewGetStockUseCase(stockRepo)
	listStockUseCase := appstock.NewListStockUseCase(stockRepo)
	saveStockUseCase := appstock.NewSaveStockUseCase(stockRepo, events)
	setStockUseCase := appstock.NewSetStockUseCase(stockRepo, events)
	deleteStockUseCase := appstock.NewDeleteStockUseCase(stockRepo)
	createIssueUseCase := appstock.NewCreateIssueUseCase(stockRepo, logRepo, events)
	listIssueLogsUseCase := appstock.NewListIssueLogsUseCase(logRepo)

	// 接口层
	stockHandler := handler.NewStockHandler(
		getStockUseCase,
		listStockUseCase,
		saveStockUseCase,
		setStockUseCase,
		deleteStockUseCase,
		createIssueUseCase,
		listIssueLogsUseCase,
	)

	// 7. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// 8. 注册路由
	registerRoutes(r, stockHandler)

	// 9. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   指标采集: http://localhost%s/metrics\n", addr)
	fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   库存查询: GET http://localhost%s/api/v1/stock/{platform}/{sku}\n", addr)
	fmt.Printf("   库存发放: POST http://localhost%s/api/v1/stock/{platform}/{sku}/issue/{type}\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
// 内部端与零售端挂同一组handler，身份由DetectRetailer按路径打标
func registerRoutes(r *gin.Engine, stockHandler *handler.StockHandler) {
	// 全局中间件
	r.Use(middleware.Metrics())
	r.Use(middleware.DetectRetailer())

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 内部端：全量接口
		stockHandler.RegisterRoutes(v1)

		// 零售端：同一组路由，查询返回缩减投影，变更被拒绝
		retailer := v1.Group("/retailer")
		stockHandler.RegisterRoutes(retailer)
	}
}
