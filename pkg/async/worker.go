package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"admincms/pkg/logger"
)

var (
	// ErrQueueFull 队列已满，任务被丢弃
	ErrQueueFull = errors.New("任务队列已满")
	// ErrStopped 工作器已停止
	ErrStopped = errors.New("工作器已停止")
)

// Task 表示一个异步任务
type Task struct {
	ID       string
	Name     string
	Handler  func(ctx context.Context) error
	Timeout  time.Duration
	RetryMax int
}

// Result 表示任务执行结果
type Result struct {
	TaskID    string
	Name      string
	Completed bool
	Error     error
	StartTime time.Time
	EndTime   time.Time
}

// maxResults 保留的最近任务结果数量
const maxResults = 256

// Worker 异步任务处理器
type Worker struct {
	taskQueue chan Task
	results   map[string]Result
	order     []string
	mu        sync.RWMutex
	logger    *logger.Logger
	wg        sync.WaitGroup
	stopped   bool
	ctx       context.Context
	cancel    context.CancelFunc

	// OnDone 每个任务结束后调用
	OnDone func(Result)
	// Backoff 第n次重试前的等待时间
	Backoff func(attempt int) time.Duration
}

// NewWorker 创建一个新的工作器
func NewWorker(queueSize int, logger *logger.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		taskQueue: make(chan Task, queueSize),
		results:   make(map[string]Result),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		Backoff: func(attempt int) time.Duration {
			return time.Second * time.Duration(attempt)
		},
	}
}

// Start 启动工作器
func (w *Worker) Start(numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.processTask()
	}
}

// Stop 停止接收新任务并等待队列中的任务执行完毕，ctx 结束时取消仍在执行的任务
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.taskQueue)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		<-done
		return ctx.Err()
	}
}

// Submit 将任务加入队列，队列满时不阻塞直接返回 ErrQueueFull
func (w *Worker) Submit(name string, handler func(ctx context.Context) error) (string, error) {
	return w.SubmitTask(Task{Name: name, Handler: handler, Timeout: 30 * time.Second})
}

// SubmitTask 提交完整的任务定义
func (w *Worker) SubmitTask(task Task) (string, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return "", ErrStopped
	}
	select {
	case w.taskQueue <- task:
		return task.ID, nil
	default:
		w.logger.Warn("异步任务队列已满，丢弃任务", "task", task.Name)
		return "", fmt.Errorf("%w: %s", ErrQueueFull, task.Name)
	}
}

// GetResult 获取任务结果
func (w *Worker) GetResult(taskID string) (Result, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result, exists := w.results[taskID]
	return result, exists
}

// processTask 处理任务的工作循环
func (w *Worker) processTask() {
	defer w.wg.Done()

	for task := range w.taskQueue {
		w.executeTask(task)
	}
}

// executeTask 执行单个任务
func (w *Worker) executeTask(task Task) {
	result := Result{
		TaskID:    task.ID,
		Name:      task.Name,
		StartTime: time.Now(),
	}

	w.logger.Debug("开始执行异步任务", "task_id", task.ID, "task", task.Name)

	ctx := w.ctx
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	var err error
	for attempt := 0; attempt <= task.RetryMax; attempt++ {
		if attempt > 0 {
			w.logger.Info("重试异步任务", "task_id", task.ID, "attempt", attempt)
			select {
			case <-time.After(w.Backoff(attempt)):
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				err = ctx.Err()
				break
			}
		}

		err = w.run(ctx, task)
		if err == nil {
			break
		}
		w.logger.Error("异步任务执行失败", "task_id", task.ID, "task", task.Name, "attempt", attempt, "error", err)
	}

	result.EndTime = time.Now()
	result.Error = err
	result.Completed = err == nil

	w.mu.Lock()
	w.results[task.ID] = result
	w.order = append(w.order, task.ID)
	if len(w.order) > maxResults {
		delete(w.results, w.order[0])
		w.order = w.order[1:]
	}
	w.mu.Unlock()

	if w.OnDone != nil {
		w.OnDone(result)
	}
	if err == nil {
		w.logger.Debug("异步任务完成", "task_id", task.ID, "task", task.Name, "duration", result.EndTime.Sub(result.StartTime))
	}
}

// run 执行任务处理函数，panic 转换为错误
func (w *Worker) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("任务 panic: %v", p)
		}
	}()
	return task.Handler(ctx)
}
