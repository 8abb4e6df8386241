// Package server exposes the catalog over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /artists/{id}"), so path
// values are read with [http.Request.PathValue] and the mux answers 405 for a known path with the wrong method.
//
// # Handler Interface
//
// Handlers implement [Handler] and return their [Route] table. A route that names a capability, or is
// marked Auth, is wrapped by the router's guard: the bearer token is verified and its claims are placed
// on the request context (see [ClaimsFrom]). Reads are public; every mutating route names a capability.
//
// # Errors
//
// Failures are written as {"error": "<kind>", "detail": "<message>"} with the status from
// [shared.ErrorKind]. Internal failures are logged and reported without their cause.
package server
