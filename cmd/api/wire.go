//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appstock "github.com/xiebiao/stock-service/internal/application/stock"
	domainstock "github.com/xiebiao/stock-service/internal/domain/stock"
	"github.com/xiebiao/stock-service/internal/infrastructure/config"
	"github.com/xiebiao/stock-service/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/stock-service/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/stock-service/internal/interface/http/handler"
	"github.com/xiebiao/stock-service/internal/interface/http/middleware"
	"github.com/xiebiao/stock-service/pkg/mq"
	"github.com/xiebiao/stock-service/pkg/response"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
// 包含：配置加载、审计数据库连接、Redis连接、分配引擎
var infrastructureSet = wire.NewSet(
	config.Load,              // 加载配置文件
	mysql.NewDB,              // 创建MySQL连接（审计流水）
	redis.NewClient,          // 创建Redis连接（权威数据源）
	redis.NewAllocationStore, // 分配引擎（预加载Lua脚本）
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	domainstock.NewIssuePicker,  // 随机发放序号分配器
	provideStockRepository,      // 库存仓储（需要从config提取键前缀）
	mysql.NewIssueLogRepository, // 发放流水仓储
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	provideEventPublisher,            // 事件发布（MQ未启用时为nil）
	appstock.NewGetStockUseCase,      // 库存查询用例
	appstock.NewListStockUseCase,     // 平台清单用例
	appstock.NewSaveStockUseCase,     // upsert用例
	appstock.NewSetStockUseCase,      // 覆盖重置用例
	appstock.NewDeleteStockUseCase,   // 删除用例
	appstock.NewCreateIssueUseCase,   // 发放用例
	appstock.NewListIssueLogsUseCase, // 流水查询用例
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewStockHandler, // 库存处理器
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================

// provideStockRepository 从配置提取键前缀创建库存仓储
// Wire无法自动知道如何从Config提取string参数，需要手动编写Provider
func provideStockRepository(
	client *goredis.Client,
	engine *redis.AllocationStore,
	picker *domainstock.IssuePicker,
	cfg *config.Config,
) domainstock.Repository {
	return redis.NewStockRepository(client, engine, picker, cfg.Redis.KeyPrefix)
}

// provideEventPublisher 按配置创建事件发布器
// MQ未启用时返回nil，用例侧跳过发布
func provideEventPublisher(cfg *config.Config) (appstock.EventPublisher, error) {
	if !cfg.MQ.Enabled {
		return nil, nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, err
	}
	return mq.NewResilientPublisher(publisher), nil
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	stockHandler *handler.StockHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(middleware.Metrics())
	r.Use(middleware.DetectRetailer())

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		stockHandler.RegisterRoutes(v1)

		retailer := v1.Group("/retailer")
		stockHandler.RegisterRoutes(retailer)
	}

	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
// 返回：配置好的Gin引擎
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		handlerSet,
		provideGinEngine,
	)

	return nil, nil
}
