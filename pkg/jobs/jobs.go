// Package jobs keeps the registry of periodic background jobs.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Job is a job that can be registered with the scheduler.
type Job struct {
	ID     int
	Name   string
	Runner Runner
}

// Runner is a job runner.
type Runner interface {
	Spec(context.Context) string
	Func(context.Context) func()
}

// Scheduler accepts job functions on a cron spec.
type Scheduler interface {
	AddFunc(spec string, fn func()) (int, error)
}

var (
	mtx  sync.Mutex
	jobs = make(map[string]*Job)
)

// Register registers a job. Registering a name twice replaces the job.
func Register(name string, runner Runner) {
	mtx.Lock()
	defer mtx.Unlock()
	jobs[name] = &Job{Name: name, Runner: runner}
}

// Unregister removes a job from the registry.
func Unregister(name string) {
	mtx.Lock()
	defer mtx.Unlock()
	delete(jobs, name)
}

// List returns the registered jobs sorted by name.
func List() []*Job {
	mtx.Lock()
	defer mtx.Unlock()
	list := make([]*Job, 0, len(jobs))
	for _, j := range jobs {
		list = append(list, j)
	}
	sort.Slice(list, func(i, k int) bool { return list[i].Name < list[k].Name })
	return list
}

// Schedule adds every registered job to s and records the ids it gets.
func Schedule(ctx context.Context, s Scheduler) error {
	for _, j := range List() {
		id, err := s.AddFunc(j.Runner.Spec(ctx), j.Runner.Func(ctx))
		if err != nil {
			return fmt.Errorf("schedule job %q: %w", j.Name, err)
		}
		mtx.Lock()
		j.ID = id
		mtx.Unlock()
	}
	return nil
}
