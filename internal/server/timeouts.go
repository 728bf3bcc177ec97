// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
//   • ReadTimeout   – abort slow-loris headers (10 s)
//   • WriteTimeout  – cap total response time; a cold hosted chart may wait
//                     on the chart host, so this is the publish timeout
//                     plus headroom (floor 15 s)
//   • IdleTimeout   – close keep-alives on idle clients (60 s)
//

package server

import (
	"net/http"
	"time"
)

const minWrite = 15 * time.Second

// New constructs an *http.Server for the chart host.
func New(addr string, handler http.Handler, publishTimeout time.Duration) *http.Server {
	write := publishTimeout + 5*time.Second
	if write < minWrite {
		write = minWrite
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
	}
}
