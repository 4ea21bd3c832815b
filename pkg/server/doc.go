// Package server serves a hook-based render function over HTTP and
// WebSocket.
//
// Every WebSocket connection is one host with its own event loop. The
// render function runs on that loop inside a render pass, so hooks keep
// their state across re-renders for the life of the connection. When any
// cell read during a render changes, the view is rendered again and pushed
// to the client.
//
// The wire format is JSON text frames:
//
//	client → server  {"type":"action","name":"inc","payload":...}
//	server → client  {"type":"view","seq":3,"view":...}
//	server → client  {"type":"error","error":"..."}
//
// Render functions receive client actions through UseAction:
//
//	func counter() any {
//	    n, dispatch := hooks.UseReducer(reduce, 0)
//	    server.UseAction("inc", func(json.RawMessage) { dispatch("inc") })
//	    return map[string]int{"count": n.Get()}
//	}
//
// Routes:
//
//	GET /healthz  liveness and runtime stats
//	GET /metrics  Prometheus exposition, when a gatherer is configured
//	GET /render   one headless render of the view as JSON
//	GET /ws       WebSocket session
package server
