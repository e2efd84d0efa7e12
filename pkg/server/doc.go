// Package server assembles the gateway: provider registry, router, cache,
// prior-response store, handlers, and middleware, behind one http.Server
// with graceful shutdown.
//
// Typical use from the CLI:
//
//	cfg, err := config.LoadConfig(path)
//	// handle err, defaults and validation happen in Load
//	srv, err := server.New(cfg, logger)
//	// handle err
//	if err := srv.Start(ctx); err != nil {
//		// listener failure or shutdown error
//	}
//
// Start blocks until the context is cancelled or SIGINT/SIGTERM arrives.
package server
