// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	goahttp "goa.design/goa/v3/http"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/logging"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/middleware"
)

// newHandler builds the routed and instrumented HTTP handler.
func newHandler(api *NotifierAPI) http.Handler {
	mux := goahttp.NewMuxer()
	api.Mount(mux)

	var handler http.Handler = mux

	// Add HTTP middleware
	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it should be the last middleware added to the handler since it is executed in reverse order.
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)
	handler = otelhttp.NewHandler(handler, "notify-slack")

	return handler
}

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(cfg config, api *NotifierAPI, gracefulCloseWG *sync.WaitGroup) *http.Server {
	addr := cfg.addr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           newHandler(api),
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + cfg.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
