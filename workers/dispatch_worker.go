package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is one unit of background work. The context carries the task
// deadline; the task owns its error handling and returns only what should
// be logged.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool is a fixed-size worker pool over a buffered task queue. Each task
// runs inside its own error boundary: a failure or panic in one task is
// logged and never takes down a worker or affects sibling tasks.
type Pool struct {
	tasks       chan Task
	workers     int
	taskTimeout time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewPool(workers, queueSize int, taskTimeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Pool{
		tasks:       make(chan Task, queueSize),
		workers:     workers,
		taskTimeout: taskTimeout,
	}
}

// Start launches the workers. They run until Stop is called and the queue
// drains.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	logrus.Infof("Dispatch worker pool started with %d workers", p.workers)
}

// Submit queues a task. Returns false when the queue is full; callers treat
// that as a degraded condition and log it, emergencies are never dropped
// silently.
func (p *Pool) Submit(task Task) bool {
	select {
	case p.tasks <- task:
		return true
	default:
		logrus.Warnf("Dispatch queue full, rejecting task %s", task.Name)
		return false
	}
}

// Stop closes the queue and waits for in-flight tasks to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
	logrus.Info("Dispatch worker pool stopped")
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for task := range p.tasks {
		p.runTask(id, task)
	}
}

func (p *Pool) runTask(workerID int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Worker %d: task %s panicked: %v", workerID, task.Name, r)
		}
	}()

	ctx := context.Background()
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := task.Run(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"task":     task.Name,
			"worker":   workerID,
			"duration": time.Since(start),
		}).Warnf("Task failed: %v", err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"task":     task.Name,
		"worker":   workerID,
		"duration": time.Since(start),
	}).Debug("Task completed")
}
