package api

import (
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	// Room for the handler to write its 503 after chi's Timeout fires.
	writeGrace = 5 * time.Second
)

// NewServer builds the http.Server for the bridge. Write deadlines follow the
// per-request timeout so a timed out handler can still answer.
func NewServer(port uint16, handler http.Handler, requestTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(int(port))),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       requestTimeout,
		WriteTimeout:      requestTimeout + writeGrace,
		IdleTimeout:       idleTimeout,
	}
}
