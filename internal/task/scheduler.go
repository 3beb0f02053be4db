package task

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/site-text-service/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定时任务
type Task interface {
	Name() string
	Run(ctx context.Context) error
	// Schedule cron 表达式，支持 @every / @daily 等描述符
	Schedule() string
	// IsStartupRun 启动时是否立即执行一次
	IsStartupRun() bool
}

// Scheduler runs tasks on their cron schedule. Startup runs and cron runs share one
// wrapped job per task, so a task never overlaps itself and a panic is only logged.
// Scheduler 按 cron 调度任务；启动执行与定时执行共用同一包装，任务不会重叠，panic 只记录日志
type Scheduler struct {
	logger *zap.Logger
	sc     *safe_close.SafeClose
	cron   *cron.Cron
	chain  cron.Chain

	// ctx 在收到关闭信号时取消，传给每次执行
	ctx    context.Context
	cancel context.CancelFunc

	tasks []Task
	jobs  []cron.Job
}

func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	cl := cronLogger{logger: logger.Named("cron")}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logger,
		sc:     sc,
		cron:   cron.New(cron.WithLogger(cl)),
		chain:  cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddTask 添加任务，cron 表达式无效时返回错误
func (s *Scheduler) AddTask(t Task) error {
	job := s.chain.Then(taskJob{s: s, task: t})
	if _, err := s.cron.AddJob(t.Schedule(), job); err != nil {
		return fmt.Errorf("task %s: invalid schedule %q: %w", t.Name(), t.Schedule(), err)
	}
	s.tasks = append(s.tasks, t)
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) Tasks() []Task {
	return s.tasks
}

// Start runs startup tasks once, starts the cron loop and stops it on the close signal,
// waiting for running tasks to finish
// Start 执行启动任务并开始调度；收到关闭信号后停止并等待运行中的任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		s.cancel()
		return
	}

	for i, t := range s.tasks {
		if t.IsStartupRun() {
			go s.jobs[i].Run()
		}
	}
	s.cron.Start()
	s.logger.Info("tasks started", zap.Int("count", len(s.tasks)))

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		s.cancel()
		<-s.cron.Stop().Done()
		s.logger.Info("tasks stopped", zap.Int("count", len(s.tasks)))
	})
}

// taskJob adapts a Task to cron.Job
type taskJob struct {
	s    *Scheduler
	task Task
}

func (j taskJob) Run() {
	if j.s.ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := j.task.Run(j.s.ctx)
	fields := []zap.Field{zap.String("name", j.task.Name()), zap.Duration("duration", time.Since(start))}
	if err != nil {
		j.s.logger.Error("task failed", append(fields, zap.Error(err))...)
		return
	}
	j.s.logger.Info("task finished", fields...)
}

// cronLogger 将 cron 日志转发到 zap
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
