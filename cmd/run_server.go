package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	internalApp "github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/dao"
	"github.com/haierkeys/site-text-service/internal/routers"
	"github.com/haierkeys/site-text-service/internal/task"
	"github.com/haierkeys/site-text-service/internal/upgrade"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/logger"
	"github.com/haierkeys/site-text-service/pkg/safe_close"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	appShutdownTimeout  = 30 * time.Second
	httpShutdownTimeout = 5 * time.Second
)

const banner = `
   _____ _ __          ______          __
  / ___/(_) /____     /_  __/__  _  __/ /_
  \__ \/ / __/ _ \     / / / _ \| |/_/ __/
 ___/ / / /_/  __/    / / /  __/>  </ /_
/____/_/\__/\___/    /_/  \___/_/|_|\__/   `

// runtimeEnv is what every command needs before the app container exists
// runtimeEnv 各命令共用的运行环境：配置、日志与数据库
type runtimeEnv struct {
	cfg        *internalApp.AppConfig
	configPath string
	logger     *zap.Logger
	db         *gorm.DB
}

func (e *runtimeEnv) closeDB() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// loadRuntime reads the config, lets override adjust it, then prepares directories,
// the logger and the database in that order
// loadRuntime 加载配置（override 可修改），随后依次准备目录、日志与数据库
func loadRuntime(configPath string, override func(*internalApp.AppConfig)) (*runtimeEnv, error) {
	cfg, realpath, err := internalApp.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	if err := ensureDirs(cfg); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	lg, err := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Production: cfg.Log.Production,
	})
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), lg)
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	return &runtimeEnv{cfg: cfg, configPath: realpath, logger: lg, db: db}, nil
}

// ensureDirs 创建日志、SQLite 数据文件与本地备份所需目录
func ensureDirs(cfg *internalApp.AppConfig) error {
	dirs := []string{filepath.Dir(cfg.Log.File)}
	if cfg.Database.Type == "" || cfg.Database.Type == "sqlite" {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}
	if cfg.Storage.Type == "localfs" {
		dirs = append(dirs, cfg.Storage.SavePath)
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// warnDefaultSecret prints a banner when the token signing key is empty or still the placeholder
// warnDefaultSecret 签名密钥为空或仍为占位值时输出警告
func warnDefaultSecret(cfg *internalApp.AppConfig, lg *zap.Logger) {
	if key := cfg.Security.AuthTokenKey; key != "" && key != defaultAuthTokenKey {
		return
	}
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(os.Stderr, "\n%s\n⚠️  SECURITY WARNING: Using default secret key!\n\n"+
		"Please modify 'security.auth-token-key' in config.yaml\n"+
		"or set SITE_TEXT_AUTH_TOKEN_KEY. Generate a secure key with:\n"+
		"  openssl rand -base64 32\n%s\n\n", rule, rule)
	lg.Warn("using default secret key, change security.auth-token-key")
}

// Server 一次运行的全部组件；配置变更时整体关闭并重建
type Server struct {
	logger *zap.Logger
	config *internalApp.AppConfig
	sc     *safe_close.SafeClose
}

// NewServer builds the app container, applies migrations, starts the scheduler
// and the HTTP listeners. Everything is torn down through sc.
// NewServer 装配应用容器、执行迁移、启动调度与 HTTP 监听，统一由 sc 关闭
func NewServer(flags *runFlags) (*Server, error) {
	env, err := loadRuntime(flags.config, flags.apply)
	if err != nil {
		return nil, err
	}
	cfg, lg := env.cfg, env.logger

	if cfg.Server.RunMode != "" {
		gin.SetMode(cfg.Server.RunMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	warnDefaultSecret(cfg, lg)
	if err := code.SetGlobalDefaultLang(cfg.App.DefaultLang); err != nil {
		lg.Warn("app.default-lang", zap.Error(err))
	}

	a, err := internalApp.NewApp(cfg, lg, env.db, internalApp.WithRegisterer(prometheus.DefaultRegisterer))
	if err != nil {
		env.closeDB()
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}

	abort := func(err error) (*Server, error) {
		_ = a.Shutdown(context.Background())
		return nil, err
	}
	if err := upgrade.Execute(context.Background(), env.db, lg, internalApp.Version); err != nil {
		return abort(fmt.Errorf("upgrade.Execute: %w", err))
	}
	uni, err := routers.SetupValidator()
	if err != nil {
		return abort(fmt.Errorf("initValidator: %w", err))
	}

	s := &Server{logger: lg, config: cfg, sc: safe_close.NewSafeClose()}

	tasks := task.NewManager(lg, s.sc, a)
	if err := tasks.RegisterTasks(); err != nil {
		lg.Error("failed to register tasks", zap.Error(err))
	}
	tasks.Start()

	lg.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n",
		banner, internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	lg.Warn("config loaded", zap.String("path", env.configPath))

	if addr := cfg.Server.HttpPort; addr != "" {
		s.serve("api service", s.newHTTPServer(addr, routers.NewRouter(a, uni)))
	}
	if addr := cfg.Server.PrivateHttpListen; addr != "" {
		h := routers.NewPrivateRouterWithLogger(cfg.Server.RunMode, lg, prometheus.DefaultGatherer)
		s.serve("private api service", s.newHTTPServer(addr, h))
	}

	// 收到关闭信号后关闭应用容器
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		ctx, cancel := context.WithTimeout(context.Background(), appShutdownTimeout)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			lg.Error("failed to shutdown app container", zap.Error(err))
			return
		}
		lg.Info("app container shutdown gracefully")
	})

	return s, nil
}

func (s *Server) newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        h,
		ReadTimeout:    time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(s.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

// serve runs srv until the close signal. A listener failure closes the whole server.
// serve 运行 srv 直到收到关闭信号；监听失败时广播关闭
func (s *Server) serve(name string, srv *http.Server) {
	s.logger.Info("listening", zap.String("service", name), zap.String("addr", srv.Addr))
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			s.logger.Error(name+" stopped", zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}
