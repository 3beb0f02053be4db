package routers

import (
	"time"

	_ "github.com/haierkeys/site-text-service/docs"
	"github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/middleware"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/internal/routers/api_router"
	"github.com/haierkeys/site-text-service/internal/routers/websocket_router"
	pkgapp "github.com/haierkeys/site-text-service/pkg/app"
	"github.com/haierkeys/site-text-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// AuthRoute sign-in endpoint, rate limited per client
const AuthRoute = "/api/admin/auth"

func newLimiter() limiter.Face {
	return limiter.NewClientLimiter().AddBuckets(
		limiter.BucketRule{
			Key:          AuthRoute,
			FillInterval: 6 * time.Second,
			Capacity:     10,
			Quantum:      1,
		},
	)
}

// NewRouter 创建 API 路由，同时启动 websocket 推送并注册到 App Container
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	wss := pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:  true,
			ParallelEnabled:   true,                                 // 开启并行消息处理
			Recovery:          gws.Recovery,                         // 开启异常恢复
			PermessageDeflate: gws.PermessageDeflate{Enabled: true}, // 开启压缩
			ParallelGolimit:   4,
			// 订阅消息很小
			ReadMaxPayloadSize: 64 * 1024,
		},
		Logger: appContainer.Logger(),
	})

	textWSHandler := websocket_router.NewTextWSHandler(appContainer)
	wss.Use(dto.Subscribe, textWSHandler.Subscribe)

	appContainer.SetNotifier(websocket_router.NewNotifier(wss, appContainer, appContainer.Logger()))
	go func() {
		<-appContainer.ShutdownCh()
		wss.Shutdown()
	}()

	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo(app.Name, appContainer.Version()))
		api.Use(middleware.Trace(cfg.Tracer)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(newLimiter(), appContainer.Metrics))
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.Lang(uni))
		api.Use(middleware.AccessLog(appContainer.Logger()))
		api.Use(middleware.Recovery(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		textHandler := api_router.NewTextHandler(appContainer)
		authHandler := api_router.NewAuthHandler(appContainer)
		backupHandler := api_router.NewBackupHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)

		// 公开接口
		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)
		api.GET("/content/ws", wss.Run())
		api.GET("/content/text/:id", textHandler.Resolve)
		api.GET("/content/:id", textHandler.Resolve)

		// 管理接口：先解析会话，再按路由检查权限，参数校验在权限之后
		admin := api.Group("/admin", middleware.SessionAuth(appContainer.AuthService, cfg.Security.CookieName, false))
		{
			admin.POST("/auth", authHandler.Login)
			admin.GET("/auth", authHandler.Status)
			admin.DELETE("/auth", authHandler.Logout)

			admin.GET("/content/text", middleware.RequireAction(rbac.ActionContentView), textHandler.List)
			admin.PUT("/content/text", middleware.RequireAction(rbac.ActionContentEdit), textHandler.Put)
			admin.DELETE("/content/text", middleware.RequireAction(rbac.ActionContentDelete), textHandler.Delete)
			admin.GET("/content/text/history/:id", middleware.RequireAction(rbac.ActionContentView), textHandler.History)
			admin.POST("/content/backup", middleware.RequireAction(rbac.ActionBackupRun), backupHandler.Run)
		}
	}

	r.NoRoute(middleware.Trace(cfg.Tracer), middleware.NoFound())

	return r
}
