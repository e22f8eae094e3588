package perarm

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

// Executor runs submitted tasks, possibly on other goroutines. A task that
// was accepted must eventually run.
type Executor interface {
	Submit(task func()) error
}

// ExecutorKind names an Executor implementation.
type ExecutorKind string

const (
	ExecutorPool    ExecutorKind = "pool"
	ExecutorLimited ExecutorKind = "limited"
	ExecutorInline  ExecutorKind = "inline"
)

// ParseExecutorKind returns the kind named by s. An empty name is the pool.
func ParseExecutorKind(s string) (ExecutorKind, error) {
	switch k := ExecutorKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return ExecutorPool, nil
	case ExecutorPool, ExecutorLimited, ExecutorInline:
		return k, nil
	default:
		return "", fmt.Errorf("unknown executor %q (expected pool, limited or inline)", s)
	}
}

// NewExecutor creates an executor of the given kind running at most size
// tasks at once; size is ignored by the inline executor. The returned
// function releases the executor once no more tasks will be submitted.
func NewExecutor(kind ExecutorKind, size int) (Executor, func(), error) {
	switch kind {
	case ExecutorPool, "":
		pool, err := NewPoolExecutor(size)
		if err != nil {
			return nil, nil, err
		}
		return pool, pool.Release, nil
	case ExecutorLimited:
		limited := NewLimitedExecutor(size)
		return limited, func() { limited.Wait() }, nil
	case ExecutorInline:
		return InlineExecutor{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown executor %q", kind)
	}
}

// InlineExecutor runs each task on the caller's goroutine.
type InlineExecutor struct{}

func (InlineExecutor) Submit(task func()) error {
	task()
	return nil
}

// PoolExecutor runs tasks on a bounded goroutine pool.
type PoolExecutor struct {
	pool *ants.Pool
}

// NewPoolExecutor creates a pool of size workers, or GOMAXPROCS workers when
// size is not positive.
func NewPoolExecutor(size int) (*PoolExecutor, error) {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	return &PoolExecutor{pool: pool}, nil
}

// Submit blocks while every worker is busy.
func (p *PoolExecutor) Submit(task func()) error {
	return p.pool.Submit(task)
}

// Running returns the number of busy workers.
func (p *PoolExecutor) Running() int {
	return p.pool.Running()
}

// Release stops the pool. Submit fails afterwards.
func (p *PoolExecutor) Release() {
	p.pool.Release()
}

// LimitedExecutor starts one goroutine per task with at most n running at
// once.
type LimitedExecutor struct {
	group *errgroup.Group
}

// NewLimitedExecutor creates an executor of at most n concurrent tasks, or
// GOMAXPROCS when n is not positive.
func NewLimitedExecutor(n int) *LimitedExecutor {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	group := new(errgroup.Group)
	group.SetLimit(n)
	return &LimitedExecutor{group: group}
}

func (l *LimitedExecutor) Submit(task func()) error {
	l.group.Go(func() error {
		task()
		return nil
	})
	return nil
}

// Wait blocks until every submitted task has returned.
func (l *LimitedExecutor) Wait() error {
	return l.group.Wait()
}
