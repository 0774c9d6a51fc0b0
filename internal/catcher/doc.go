// Package catcher implements the short-lived, single-connection capture server.
//
// A capture run binds a TCP socket, accepts exactly one connection, reads one HTTP POST request whose body
// length is carried in the URL path, and shuts itself down:
//
//	POST /<length> HTTP/1.1\r\n
//	...headers, never parsed...\r\n
//	\r\n
//	<length bytes of body>
//
// # Lifecycle
//
// [Server.Serve] runs the whole sequence synchronously; [Server.Start] (or the package level [Start]) runs it
// on a goroutine and returns a [Run]. The caller and the worker share a [Handle]: either side may cancel it,
// and the worker cancels it itself when it finishes. Both loops (accept and receive) block for a bounded
// interval only and re-check the handle on every iteration, so cancellation is cooperative.
//
// The listening socket is closed as soon as a connection is accepted; later clients are refused.
//
// # Results
//
// A [Run] publishes its [Result] exactly once and closes [Run.Done] afterwards. [Run.Result] returns
// ok=false until then, so a caller can never observe a half-written result. A Result holds either the raw
// body or a [CaptureError] whose message is meant for users:
//
//   - "<cause> | Unable to serve on IP "<host>" and port <port>" : [ErrBind]
//   - "<cause> | Error with socket.accept()" : [ErrAccept]
//   - "Expected an HTTP POST request", "Expected "/[length]" in the URL path" : [ErrProtocol]
//   - "No connection established" : [ErrNoConnection] or [ErrPrematureClose]
//
// # Response
//
// Whatever the outcome, the peer receives "HTTP/1.1 200 OK" when a body length was declared and
// "HTTP/1.1 403 Forbidden" otherwise, both with "Connection: close" and no body. Send and close failures are
// ignored.
package catcher
