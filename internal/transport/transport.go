// SPDX-License-Identifier: MIT
package transport

// Transport is a sink for rendered frames. Implementations must be
// safe for concurrent use and must not block the frame loop: queue or
// drop, never wait.
type Transport interface {
	Send(data any) error
	Close() error
}
