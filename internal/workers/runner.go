package workers

import (
	"context"
	"sync"
	"time"

	"placement_backend/internal/logger"
)

// Task - периодическая фоновая задача
type Task interface {
	Name() string
	RunOnce(ctx context.Context) error
}

type scheduled struct {
	task     Task
	interval time.Duration
}

// Runner запускает задачи по тикеру, каждую в своей горутине
type Runner struct {
	tasks []scheduled
	wg    sync.WaitGroup
}

func NewRunner() *Runner {
	return &Runner{}
}

// Add регистрирует задачу. interval <= 0 означает, что задача выключена.
func (r *Runner) Add(task Task, interval time.Duration) {
	if interval <= 0 {
		logger.Info("Worker disabled", "worker", task.Name())
		return
	}
	r.tasks = append(r.tasks, scheduled{task: task, interval: interval})
}

// Start запускает все задачи. Первый прогон сразу, дальше по интервалу.
func (r *Runner) Start(ctx context.Context) {
	for _, s := range r.tasks {
		r.wg.Add(1)
		go func(s scheduled) {
			defer r.wg.Done()
			r.loop(ctx, s)
		}(s)
	}
}

// Wait ждет остановки всех задач после отмены контекста
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, s scheduled) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("Worker started", "worker", s.task.Name(), "interval", s.interval.String())
	r.run(ctx, s.task)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker stopped", "worker", s.task.Name())
			return
		case <-ticker.C:
			r.run(ctx, s.task)
		}
	}
}

// run не дает панике в задаче уронить процесс
func (r *Runner) run(ctx context.Context, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Worker panic recovered", "worker", task.Name(), "panic", rec)
		}
	}()

	if err := task.RunOnce(ctx); err != nil && ctx.Err() == nil {
		logger.WorkerLog(task.Name(), "run", err)
	}
}
