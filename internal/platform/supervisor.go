package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// TaskRestartPolicy decides what happens when a supervised task returns.
type TaskRestartPolicy string

const (
	TaskRestartAlways    TaskRestartPolicy = "always"
	TaskRestartOnFailure TaskRestartPolicy = "on_failure"
	TaskRestartNever     TaskRestartPolicy = "never"
)

type TaskPolicy struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	MaxRestarts    int
}

type TaskSpec struct {
	Name    string
	Group   string
	Restart TaskRestartPolicy
}

// TaskStatus is the recorded outcome of a task that restarted or failed.
// Tasks that finish cleanly on the first attempt leave no status behind.
type TaskStatus struct {
	Name         string            `json:"name"`
	Group        string            `json:"group,omitempty"`
	Restart      TaskRestartPolicy `json:"restart"`
	RestartCount int               `json:"restart_count"`
	LastError    string            `json:"last_error,omitempty"`
	Failed       bool              `json:"failed"`
}

type TaskHooks struct {
	OnRestart func(name string, err error, restarts int)
	OnFailure func(name string, err error, restarts int)
}

func defaultTaskPolicy() TaskPolicy {
	return TaskPolicy{
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     200 * time.Millisecond,
		BackoffFactor:  2.0,
		MaxRestarts:    0,
	}
}

func normalizeTaskPolicy(policy TaskPolicy) TaskPolicy {
	def := defaultTaskPolicy()
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = def.InitialBackoff
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = def.MaxBackoff
	}
	if policy.MaxBackoff < policy.InitialBackoff {
		policy.MaxBackoff = policy.InitialBackoff
	}
	if policy.BackoffFactor < 1 {
		policy.BackoffFactor = def.BackoffFactor
	}
	return policy
}

// Supervisor runs named tasks on their own goroutines, restarting them per
// policy with exponential backoff. Batch drivers start one task per run and
// Wait for the group; failures stay queryable through Statuses.
type Supervisor struct {
	policy TaskPolicy
	hooks  TaskHooks

	mu       sync.Mutex
	tasks    map[string]*supervisedTask
	finished map[string]TaskStatus
}

type supervisedTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	spec   TaskSpec
	run    func(ctx context.Context) error

	restarts int
	lastErr  error
	failed   bool
}

func NewSupervisor(policy TaskPolicy) *Supervisor {
	return NewSupervisorWithHooks(policy, TaskHooks{})
}

func NewSupervisorWithHooks(policy TaskPolicy, hooks TaskHooks) *Supervisor {
	return &Supervisor{
		policy:   normalizeTaskPolicy(policy),
		hooks:    hooks,
		tasks:    make(map[string]*supervisedTask),
		finished: make(map[string]TaskStatus),
	}
}

func (s *Supervisor) Start(name string, run func(ctx context.Context) error) error {
	return s.StartSpec(TaskSpec{Name: name, Restart: TaskRestartOnFailure}, run)
}

func (s *Supervisor) StartSpec(spec TaskSpec, run func(ctx context.Context) error) error {
	if spec.Name == "" {
		return errors.New("task name is required")
	}
	if run == nil {
		return errors.New("task runner is required")
	}
	switch spec.Restart {
	case TaskRestartAlways, TaskRestartOnFailure, TaskRestartNever:
	case "":
		spec.Restart = TaskRestartOnFailure
	default:
		return fmt.Errorf("unsupported restart policy: %s", spec.Restart)
	}

	s.mu.Lock()
	if _, exists := s.tasks[spec.Name]; exists {
		s.mu.Unlock()
		return fmt.Errorf("task already running: %s", spec.Name)
	}
	delete(s.finished, spec.Name)
	ctx, cancel := context.WithCancel(context.Background())
	task := &supervisedTask{
		cancel: cancel,
		done:   make(chan struct{}),
		spec:   spec,
		run:    run,
	}
	s.tasks[spec.Name] = task
	s.mu.Unlock()

	go s.runTask(ctx, spec.Name, task)
	return nil
}

func (s *Supervisor) runTask(ctx context.Context, name string, task *supervisedTask) {
	defer func() {
		s.mu.Lock()
		if current, ok := s.tasks[name]; ok && current == task {
			if task.failed || task.restarts > 0 || task.lastErr != nil {
				s.finished[name] = statusOf(task)
			}
			delete(s.tasks, name)
		}
		s.mu.Unlock()
		close(task.done)
	}()

	backoff := s.policy.InitialBackoff

	for {
		err := task.run(ctx)
		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		task.lastErr = err
		restarts := task.restarts
		s.mu.Unlock()

		if !shouldRestartTask(task.spec.Restart, err) {
			if err != nil {
				s.mu.Lock()
				task.failed = true
				s.mu.Unlock()
				if s.hooks.OnFailure != nil {
					s.hooks.OnFailure(name, err, restarts)
				}
			}
			return
		}
		if s.policy.MaxRestarts > 0 && restarts >= s.policy.MaxRestarts {
			s.mu.Lock()
			task.failed = true
			s.mu.Unlock()
			if s.hooks.OnFailure != nil {
				s.hooks.OnFailure(name, err, restarts)
			}
			return
		}

		restarts++
		s.mu.Lock()
		task.restarts = restarts
		s.mu.Unlock()
		if s.hooks.OnRestart != nil {
			s.hooks.OnRestart(name, err, restarts)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		next := time.Duration(float64(backoff) * s.policy.BackoffFactor)
		if next > s.policy.MaxBackoff {
			next = s.policy.MaxBackoff
		}
		backoff = next
	}
}

func shouldRestartTask(policy TaskRestartPolicy, err error) bool {
	switch policy {
	case TaskRestartAlways:
		return true
	case TaskRestartOnFailure:
		return err != nil
	default:
		return false
	}
}

func statusOf(task *supervisedTask) TaskStatus {
	status := TaskStatus{
		Name:         task.spec.Name,
		Group:        task.spec.Group,
		Restart:      task.spec.Restart,
		RestartCount: task.restarts,
		Failed:       task.failed,
	}
	if task.lastErr != nil {
		status.LastError = task.lastErr.Error()
	}
	return status
}

func (s *Supervisor) Stop(name string) {
	s.mu.Lock()
	task, ok := s.tasks[name]
	delete(s.finished, name)
	s.mu.Unlock()
	if !ok {
		return
	}
	task.cancel()
	<-task.done
}

func (s *Supervisor) StopAll() {
	s.mu.Lock()
	tasks := make([]*supervisedTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	s.finished = make(map[string]TaskStatus)
	s.mu.Unlock()

	for _, task := range tasks {
		task.cancel()
	}
	for _, task := range tasks {
		<-task.done
	}
}

// Wait blocks until every supervised task has finished, including tasks
// started while waiting.
func (s *Supervisor) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		pending := make([]chan struct{}, 0, len(s.tasks))
		for _, task := range s.tasks {
			pending = append(pending, task.done)
		}
		s.mu.Unlock()

		if len(pending) == 0 {
			return nil
		}
		for _, done := range pending {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-done:
			}
		}
	}
}

func (s *Supervisor) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Statuses reports the recorded outcomes of running and finished tasks,
// sorted by name.
func (s *Supervisor) Statuses() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.tasks)+len(s.finished))
	for name := range s.tasks {
		names = append(names, name)
	}
	for name := range s.finished {
		if _, active := s.tasks[name]; active {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]TaskStatus, 0, len(names))
	for _, name := range names {
		if task, ok := s.tasks[name]; ok {
			out = append(out, statusOf(task))
			continue
		}
		if finished, ok := s.finished[name]; ok {
			out = append(out, finished)
		}
	}
	return out
}
