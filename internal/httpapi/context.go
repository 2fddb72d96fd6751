package httpapi

import "context"

// serverBaseCtx is canceled on shutdown so in-flight classification work
// stops with the server. Background until SetBaseContext is called.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level base context.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context that ends when either parent does, so a
// handler observes both client disconnects and server shutdown. The
// cancel func must always be called; it also releases the watcher
// goroutine.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer cancel()
		select {
		case <-a.Done():
		case <-b.Done():
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
