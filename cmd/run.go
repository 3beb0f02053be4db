package cmd

import (
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	internalApp "github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/pkg/fileurl"
	"github.com/haierkeys/site-text-service/pkg/util"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultAuthTokenKey 内置配置中的占位密钥，首次生成配置时替换为随机值
const defaultAuthTokenKey = "site-text-Auth-Token"

// configPollInterval 配置文件变更轮询间隔
const configPollInterval = 5 * time.Second

var configCandidates = []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"}

type runFlags struct {
	dir     string
	port    string
	runMode string
	config  string
}

// apply 命令行参数覆盖配置文件
func (f *runFlags) apply(cfg *internalApp.AppConfig) {
	if f.port != "" {
		cfg.Server.HttpPort = f.port
		if !strings.Contains(f.port, ":") {
			cfg.Server.HttpPort = ":" + f.port
		}
	}
	if f.runMode != "" {
		cfg.Server.RunMode = f.runMode
	}
}

// resolveConfigPath returns path, the first existing candidate, or a freshly written
// default config with a random signing key
// resolveConfigPath 查找配置文件，都不存在时写出内置默认配置
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	for _, p := range configCandidates {
		if fileurl.IsExist(p) {
			return p, nil
		}
	}

	path = configCandidates[len(configCandidates)-1]
	bootstrapLogger.Warn("config file not found, creating default config", zap.String("path", path))
	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return "", err
	}
	content := strings.Replace(configDefault, defaultAuthTokenKey, util.GetRandomString(32), 1)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// supervisor owns the running server and rebuilds it when the config file changes
// supervisor 持有当前 server，配置文件变化时重建
type supervisor struct {
	flags *runFlags

	mu      sync.Mutex
	current *Server
}

func (v *supervisor) logger() *zap.Logger {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current.logger
}

// stop 关闭当前 server 并等待其全部组件退出
func (v *supervisor) stop() {
	v.mu.Lock()
	s := v.current
	v.mu.Unlock()

	s.sc.SendCloseSignal(nil)
	if err := s.sc.WaitClosed(); err != nil {
		s.logger.Error("server closed with error", zap.Error(err))
		return
	}
	s.logger.Info("server closed")
}

// reload 关闭旧 server 后按新配置启动；启动失败时保持停止状态直到下一次变更
func (v *supervisor) reload(event watcher.Event) {
	v.logger().Info("config changed, restarting", zap.String("op", event.Op.String()), zap.String("file", event.Path))
	v.stop()

	next, err := NewServer(v.flags)
	if err != nil {
		bootstrapLogger.Error("service restart err", zap.Error(err))
		return
	}
	v.mu.Lock()
	v.current = next
	v.mu.Unlock()
}

func (v *supervisor) watch(w *watcher.Watcher) {
	for {
		select {
		case event := <-w.Event:
			v.reload(event)
		case err := <-w.Error:
			v.logger().Error("config watcher error", zap.Error(err))
		case <-w.Closed:
			return
		}
	}
}

func runService(flags *runFlags) {
	if flags.dir != "" {
		if err := os.Chdir(flags.dir); err != nil {
			bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
		} else {
			bootstrapLogger.Info("working directory changed", zap.String("dir", flags.dir))
		}
	}

	configPath, err := resolveConfigPath(flags.config)
	if err != nil {
		bootstrapLogger.Error("config file auto create error", zap.Error(err))
		return
	}
	flags.config = configPath

	first, err := NewServer(flags)
	if err != nil {
		bootstrapLogger.Error("api service start err", zap.Error(err))
		return
	}
	v := &supervisor{flags: flags, current: first}

	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)
	if err := w.Add(configPath); err != nil {
		first.logger.Error("config watcher file error", zap.Error(err))
	}
	go v.watch(w)
	go func() {
		if err := w.Start(configPollInterval); err != nil {
			first.logger.Error("config watcher start error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	w.Close()
	v.logger().Info("shutdown signal received", zap.String("signal", sig.String()))
	v.stop()
}

func init() {
	flags := new(runFlags)
	runCommand := &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			runService(flags)
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&flags.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&flags.port, "port", "p", "", "run port")
	fs.StringVarP(&flags.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&flags.config, "config", "c", "", "config file")
}
