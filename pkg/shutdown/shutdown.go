package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"

	"github.com/betbot/go-orion/pkg/logger"
)

// Handler 关闭回调
type Handler func(ctx context.Context) error

type namedHandler struct {
	name string
	fn   Handler
}

// Manager 优雅关闭管理器
type Manager struct {
	mu        sync.Mutex
	callbacks []namedHandler
	once      sync.Once
	err       error
}

// NewManager 创建新的关闭管理器
func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown 注册关闭回调，name 用于日志
func (m *Manager) OnShutdown(name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, namedHandler{name: name, fn: handler})
}

// Shutdown 并发执行所有关闭回调，重复调用只执行一次
// ctx 应带超时，超时后返回 ctx 错误
func (m *Manager) Shutdown(ctx context.Context) error {
	m.once.Do(func() {
		m.err = m.run(ctx)
	})
	return m.err
}

func (m *Manager) run(ctx context.Context) error {
	m.mu.Lock()
	callbacks := append([]namedHandler(nil), m.callbacks...)
	m.mu.Unlock()

	if len(callbacks) == 0 {
		return nil
	}
	logger.Infof("开始优雅关闭，共 %d 个回调", len(callbacks))

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		first error
	)
	for _, cb := range callbacks {
		wg.Add(1)
		go func(cb namedHandler) {
			defer wg.Done()
			if err := cb.fn(ctx); err != nil {
				logger.Warnf("关闭回调 %s 失败: %v", cb.name, err)
				errMu.Lock()
				if first == nil {
					first = errors.Wrapf(err, "shutdown %s", cb.name)
				}
				errMu.Unlock()
			}
		}(cb)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("所有关闭回调已完成")
		errMu.Lock()
		defer errMu.Unlock()
		return first
	case <-ctx.Done():
		logger.Warnf("关闭超时: %v", ctx.Err())
		return ctx.Err()
	}
}

// SignalContext 返回在 SIGINT / SIGTERM 时取消的 context
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
