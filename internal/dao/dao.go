// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/haierkeys/site-text-service/internal/model"
	"github.com/haierkeys/site-text-service/pkg/fileurl"
	"github.com/haierkeys/site-text-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type sqlite, mysql or postgres
	// Type 数据库类型：sqlite、mysql、postgres
	Type     string
	Path     string
	UserName string
	Password string
	Host     string
	Name     string
	Charset  string
	SSLMode  string
	// Replicas read-only DSNs routed through dbresolver
	// Replicas 只读副本 DSN，通过 dbresolver 路由读请求
	Replicas        []string
	AutoMigrate     bool
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// Tracing 启用 gorm 查询追踪插件
	Tracing bool
	RunMode string
}

type Dao struct {
	Db     *gorm.DB
	ctx    context.Context
	config *DatabaseConfig
	logger *zap.Logger
	wq     *writequeue.Manager
}

// Option 配置选项函数类型
type Option func(*Dao)

func WithConfig(c *DatabaseConfig) Option {
	return func(d *Dao) {
		d.config = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) {
		d.logger = l
	}
}

// WithWriteQueueManager 设置写队列，未设置时写操作直接执行
func WithWriteQueueManager(wq *writequeue.Manager) Option {
	return func(d *Dao) {
		d.wq = wq
	}
}

func New(db *gorm.DB, ctx context.Context, opts ...Option) *Dao {
	d := &Dao{
		Db:     db,
		ctx:    ctx,
		config: &DatabaseConfig{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dao) DB() *gorm.DB {
	return d.Db
}

func (d *Dao) Logger() *zap.Logger {
	return d.logger
}

// WithContext 返回绑定 ctx 的会话
func (d *Dao) WithContext(ctx context.Context) *gorm.DB {
	if ctx == nil {
		ctx = d.ctx
	}
	return d.Db.WithContext(ctx)
}

// ExecuteWrite runs fn inside a transaction, serialized per key when a write queue is configured
// ExecuteWrite 在事务中执行 fn，配置写队列时同一 key 串行执行
func (d *Dao) ExecuteWrite(ctx context.Context, key string, fn func(tx *gorm.DB) error) error {
	run := func() error {
		return d.WithContext(ctx).Transaction(fn)
	}
	if d.wq == nil {
		return run()
	}
	return d.wq.Execute(ctx, key, run)
}

// AutoMigrate 迁移全部模型
func (d *Dao) AutoMigrate() error {
	return errors.Wrap(model.AutoMigrate(d.Db, ""), "dao: auto migrate")
}

// NewDBEngineWithConfig opens the database, tunes the pool and installs plugins
// NewDBEngineWithConfig 打开数据库，设置连接池并安装插件
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	if lg == nil {
		lg = zap.NewNop()
	}
	dialector, err := openDialector(c)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if c.RunMode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "dao: open database")
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "dao")
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	if c.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(c.ConnMaxIdleTime)
	}

	if len(c.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(c.Replicas))
		for _, dsn := range c.Replicas {
			r, err := replicaDialector(c.Type, dsn)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, r)
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, errors.Wrap(err, "dao: register replicas")
		}
		lg.Info("database read replicas registered", zap.Int("count", len(replicas)))
	}

	if c.Tracing {
		if err := db.Use(&gormTracing.OpentracingPlugin{}); err != nil {
			lg.Warn("gorm tracing plugin not installed", zap.Error(err))
		}
	}

	if c.AutoMigrate {
		if err := model.AutoMigrate(db, ""); err != nil {
			return nil, errors.Wrap(err, "dao: auto migrate")
		}
	}

	lg.Info("database connected", zap.String("type", c.Type))
	return db, nil
}

func openDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(c.Type) {
	case "", "sqlite":
		if c.Path == "" {
			return nil, errors.New("dao: sqlite path is required")
		}
		if c.Path != ":memory:" && !strings.HasPrefix(c.Path, "file:") && !fileurl.IsExist(c.Path) {
			if err := fileurl.CreatePath(c.Path, os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "dao: create sqlite dir")
			}
		}
		return sqlite.Open(sqliteDSN(c.Path)), nil
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=UTC",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			charset,
			c.ParseTime,
		)), nil
	case "postgres", "postgresql":
		host, port := splitHostPort(c.Host, "5432")
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return postgres.Open(fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			host, port, c.UserName, c.Password, c.Name, sslMode)), nil
	}
	return nil, fmt.Errorf("dao: unsupported database type %q", c.Type)
}

func replicaDialector(dbType, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(dbType) {
	case "", "sqlite":
		return sqlite.Open(sqliteDSN(dsn)), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("dao: unsupported database type %q", dbType)
}

// sqliteDSN adds busy timeout and WAL pragmas unless the caller set its own
// sqliteDSN 未指定 pragma 时追加 busy_timeout 与 WAL
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	pragmas := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if path != ":memory:" && !strings.Contains(path, "mode=memory") {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	return path + sep + pragmas
}

func splitHostPort(host, defaultPort string) (string, string) {
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i+1:], "]") {
		return host[:i], host[i+1:]
	}
	return host, defaultPort
}
