// Package http provides JSON response helpers and the debug endpoints that
// expose a container tree over HTTP.
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)                  // raw JSON with status
//	res.Success(data)                    // 200 {"data": ...}
//	res.Error(400, "bad input")          // {"message": "bad input"}
//	res.NotFound()                       // 404 {"message": "Not found."}
//	res.ServerError()                    // 500 {"message": "Server Error."}
//	res.Unprocessable("invalid", probs)  // 422 {"message": ..., "errors": [...]}
//
// # Debug endpoints
//
//	h := gohttp.NewDebugHandler(app.Containers, app.Metrics(), logger)
//	h.Routes(router)
//
// Every endpoint is read-only: snapshots and validation never run a factory.
package http
