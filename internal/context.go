package internal

import (
	"context"
	"os"
	"sync"
)

type ctxKeyCorrelationId struct{}

func CtxWithCorrelationId(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationId{}, correlationId)
}

func CorrelationIdFromCtx(ctx context.Context) string {
	item := ctx.Value(ctxKeyCorrelationId{})
	correlationId, ok := item.(string)
	if ok {
		return correlationId
	}
	return ""
}

func LaunchContext(wg *sync.WaitGroup, osSignal chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()

		select {
		case <-osSignal:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
