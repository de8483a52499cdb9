// Package server provides HTTP routing, middleware and the catalog API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering. Requests with a
// method no route accepts get 405 with an Allow header.
//
// # Catalog API
//
// [TracksHandler] serves:
//   - GET /api/tracks : every track as a JSON array, optionally filtered by ?q=
//   - GET /api/tracks/tree : the three-level folder grouping as nested objects
//   - GET /api/tracks/featured : a random sample, ?n= tracks (default 6)
//
// Each request fetches the upstream listing. Concurrent requests share one in-flight fetch. Any fetch
// failure is answered with 500 and {"error":"Failed to fetch tracks"}; the cause is only logged.
//
// [HealthHandler] answers GET /health with {"status":"ok"}.
//
// # Middleware
//
// [RequestID] tags each request with a UUID (echoed in X-Request-ID), [Logger] writes one line per
// request and [Recoverer] turns panics into 500 responses.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
