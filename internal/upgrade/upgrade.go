// Package upgrade 数据库结构与数据升级
package upgrade

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/haierkeys/site-text-service/internal/model"
	"github.com/haierkeys/site-text-service/pkg/timex"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gorm.io/gorm"
)

// Migration 定义升级接口
type Migration interface {
	Version() string
	Description() string
	Up(ctx context.Context, tx *gorm.DB) error
}

// MigrationManager 升级管理器
type MigrationManager struct {
	db         *gorm.DB
	logger     *zap.Logger
	migrations []Migration
}

// DefaultMigrations 全部内置升级脚本
func DefaultMigrations() []Migration {
	return []Migration{
		&ElementBackfillMigrate{},
		&RoleNormalizeMigrate{},
	}
}

// NewMigrationManager 创建升级管理器，未指定 migrations 时使用 DefaultMigrations
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, migrations ...Migration) *MigrationManager {
	if len(migrations) == 0 {
		migrations = DefaultMigrations()
	}
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return semver.Compare(canonical(sorted[i].Version()), canonical(sorted[j].Version())) < 0
	})
	return &MigrationManager{db: db, logger: logger, migrations: sorted}
}

// canonical 补全 "v" 前缀，semver 库需要
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Pending 返回尚未执行且不高于 runningVersion 的升级，按版本升序
func (m *MigrationManager) Pending(ctx context.Context, runningVersion string) ([]Migration, error) {
	if err := model.AutoMigrate(m.db.WithContext(ctx), "SchemaVersion"); err != nil {
		return nil, fmt.Errorf("failed to create schema_version table: %w", err)
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	running := canonical(runningVersion)
	if !semver.IsValid(running) {
		m.logger.Warn("running version is not a valid semver, applying every migration", zap.String("version", runningVersion))
		running = ""
	}

	var pending []Migration
	for _, migration := range m.migrations {
		v := canonical(migration.Version())
		if applied[v] {
			continue
		}
		if running != "" && semver.Compare(v, running) > 0 {
			m.logger.Info("skip migration newer than running version",
				zap.String("scriptVersion", migration.Version()),
				zap.String("runningVersion", runningVersion))
			continue
		}
		pending = append(pending, migration)
	}
	return pending, nil
}

// Run 先同步表结构，再依次执行未执行的升级脚本，每个脚本一个事务
func (m *MigrationManager) Run(ctx context.Context, runningVersion string) (int, error) {
	m.logger.Info("Migration started", zap.String("runningVersion", runningVersion))

	if err := model.AutoMigrate(m.db.WithContext(ctx), ""); err != nil {
		return 0, fmt.Errorf("failed to auto migrate: %w", err)
	}

	pending, err := m.Pending(ctx, runningVersion)
	if err != nil {
		return 0, err
	}

	executed := 0
	for _, migration := range pending {
		m.logger.Info("applying migration",
			zap.String("scriptVersion", migration.Version()),
			zap.String("desc", migration.Description()))

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(ctx, tx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			record := &model.SchemaVersion{
				Version:   canonical(migration.Version()),
				Name:      migration.Description(),
				AppliedAt: timex.Time(time.Now()),
			}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("failed to record version: %w", err)
			}
			return nil
		})
		if err != nil {
			return executed, fmt.Errorf("failed to apply migration %s: %w", migration.Version(), err)
		}

		m.logger.Info("migration applied successfully", zap.String("scriptVersion", migration.Version()))
		executed++
	}

	if executed == 0 {
		m.logger.Info("database is already up to date")
	} else {
		m.logger.Info("upgrade completed", zap.Int("migrations_applied", executed))
	}
	return executed, nil
}

// appliedVersions 已执行的版本集合
func (m *MigrationManager) appliedVersions(ctx context.Context) (map[string]bool, error) {
	var versions []model.SchemaVersion
	if err := m.db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[canonical(v.Version)] = true
	}
	return applied, nil
}

// Execute 执行升级(便捷方法)
func Execute(ctx context.Context, db *gorm.DB, logger *zap.Logger, runningVersion string) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	if logger == nil {
		return fmt.Errorf("logger not initialized")
	}
	_, err := NewMigrationManager(db, logger).Run(ctx, runningVersion)
	return err
}
