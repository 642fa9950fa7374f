package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"telegram-alerts-go/alert"
)

// asyncRunner запускает фоновые операции над слоями (перенос записи в верхние уровни)
// с ограничением на число одновременно выполняемых задач.
// Если все токены заняты, задача отбрасывается: чтение не должно ждать фоновую запись.
type asyncRunner struct {
	tokens  chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
}

const (
	defaultAsyncLimit   = 64
	defaultAsyncTimeout = time.Second
)

func newAsyncRunner(limit int, timeout time.Duration) *asyncRunner {
	if limit <= 0 {
		limit = defaultAsyncLimit
	}
	return &asyncRunner{
		tokens:  make(chan struct{}, limit),
		timeout: timeout,
	}
}

// run возвращает false, если задача отброшена.
func (r *asyncRunner) run(name string, f func(ctx context.Context)) bool {
	select {
	case r.tokens <- struct{}{}:
	default:
		zap.S().Debugw("async task dropped, runner is busy", "name", name)
		return false
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		/* освобождаем токен при выходе */
		defer func() { <-r.tokens }()

		ctx, cancel := makeCtx(r.timeout)
		defer cancel()

		defer func() {
			if rec := recover(); rec != nil {
				zap.S().Errorw(alert.Prefix("async panic"), "name", name, "panic", rec)
			}
		}()

		f(ctx)
	}()
	return true
}

// wait дожидается завершения всех запущенных задач.
func (r *asyncRunner) wait() {
	r.wg.Wait()
}

func makeCtx(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d)
}
