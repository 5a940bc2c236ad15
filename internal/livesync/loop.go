package livesync

import (
	"context"
	"errors"
	"log/slog"
)

// Loop is the dashboard's single-writer event loop.
//
// Thread-safety model:
//   - Publish, NotifyConnect, NotifyDisconnect, Do: safe from any goroutine
//   - Run: must be called from exactly one goroutine
//
// Everything that mutates dashboard state runs inside Run, one item at a
// time, in enqueue order.
type Loop struct {
	consumer *Consumer
	queue    *workQueue
	logger   *slog.Logger
}

// NewLoop creates a loop driving consumer.
func NewLoop(consumer *Consumer, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		consumer: consumer,
		queue:    newWorkQueue(),
		logger:   logger,
	}
}

// Publish enqueues a push event. Returns false once the loop has stopped.
func (l *Loop) Publish(ev Event) bool {
	return l.queue.Enqueue(item{kind: itemEvent, event: ev})
}

// NotifyConnect enqueues a transport connect notification.
func (l *Loop) NotifyConnect() bool {
	return l.queue.Enqueue(item{kind: itemConnect})
}

// NotifyDisconnect enqueues a transport disconnect notification.
func (l *Loop) NotifyDisconnect() bool {
	return l.queue.Enqueue(item{kind: itemDisconnect})
}

// Do enqueues a UI command. fn runs inside the loop and may touch any
// dashboard state.
func (l *Loop) Do(fn func(ctx context.Context)) bool {
	if fn == nil {
		return false
	}
	return l.queue.Enqueue(item{kind: itemCommand, command: fn})
}

// Run processes queued work until ctx is cancelled or Stop is called.
//
// Items already queued when Stop is called are still processed. A failing
// event is logged with its name and dropped; processing continues.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("sync loop starting")

	for {
		if it, ok := l.queue.TryDequeue(); ok {
			l.process(ctx, it)
			continue
		}

		select {
		case <-ctx.Done():
			l.logger.Debug("sync loop stopping: context cancelled")
			l.queue.Close()
			return ctx.Err()

		case <-l.queue.Wait():
			// A closed queue keeps signalling; stop once it is drained.
			if l.queue.Len() == 0 && l.isClosed() {
				l.logger.Debug("sync loop stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns after draining it.
func (l *Loop) Stop() {
	l.queue.Close()
}

func (l *Loop) isClosed() bool {
	l.queue.mu.Lock()
	defer l.queue.mu.Unlock()
	return l.queue.closed
}

func (l *Loop) process(ctx context.Context, it item) {
	switch it.kind {
	case itemConnect:
		l.consumer.Connect()
	case itemDisconnect:
		l.consumer.Disconnect()
	case itemCommand:
		it.command(ctx)
	case itemEvent:
		if err := l.consumer.Handle(ctx, it.event); err != nil {
			level := slog.LevelError
			if errors.Is(err, ErrMalformedEvent) {
				level = slog.LevelWarn
			}
			l.logger.Log(ctx, level, "dropped push event", "event", it.event.Name, "error", err)
		}
	}
}
