// Package loop provides the scheduling side of a render runtime: a
// microtask Queue and a single-goroutine event Loop built on go-eventloop.
//
// A microtask runs after the task that queued it has returned and before the
// next task starts. hookscope uses this to flush effects after a render pass
// without running them inside the pass.
//
//	l, err := loop.New(loop.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	go l.Run(ctx)
//
//	l.Submit(func() {
//	    hooks.Establish(host, render) // effects queue a microtask
//	})                                // ... which runs right here
package loop
