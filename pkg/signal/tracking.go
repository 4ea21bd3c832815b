package signal

import (
	"sync"

	"github.com/vango-dev/hookscope/internal/goid"
)

// trackingContext holds the reactive state for a goroutine.
type trackingContext struct {
	// currentListener is subscribed by every signal read. nil means reads
	// create no subscription.
	currentListener Listener

	// batchDepth tracks nested Batch calls.
	batchDepth int

	// pendingUpdates accumulates listeners to notify when a batch completes.
	pendingUpdates []Listener
}

var trackingContexts sync.Map

func getTrackingContext() *trackingContext {
	gid := goid.Current()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// release drops the goroutine's context once it carries no state.
func (c *trackingContext) release() {
	if c.currentListener == nil && c.batchDepth == 0 && len(c.pendingUpdates) == 0 {
		trackingContexts.Delete(goid.Current())
	}
}

func getCurrentListener() Listener {
	if ctx, ok := trackingContexts.Load(goid.Current()); ok {
		return ctx.(*trackingContext).currentListener
	}
	return nil
}

// setCurrentListener sets the listener and returns the previous one.
func setCurrentListener(l Listener) Listener {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	ctx.release()
	return old
}

func getBatchDepth() int {
	if ctx, ok := trackingContexts.Load(goid.Current()); ok {
		return ctx.(*trackingContext).batchDepth
	}
	return 0
}

func incrementBatchDepth() {
	getTrackingContext().batchDepth++
}

// decrementBatchDepth returns true when the outermost batch finished.
func decrementBatchDepth() bool {
	ctx := getTrackingContext()
	ctx.batchDepth--
	return ctx.batchDepth == 0
}

func queuePendingUpdate(l Listener) {
	ctx := getTrackingContext()
	ctx.pendingUpdates = append(ctx.pendingUpdates, l)
}

func drainPendingUpdates() []Listener {
	ctx := getTrackingContext()
	updates := ctx.pendingUpdates
	ctx.pendingUpdates = nil
	ctx.release()
	return updates
}

// WithListener runs fn with l as the current listener.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}
