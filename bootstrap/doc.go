// Package bootstrap runs a service through its lifecycle: start registered
// components, run hooks, wait for SIGINT or SIGTERM, then stop everything in
// reverse order within a graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	_ = app.RegisterComponent(storageComponent)
//	_ = app.RegisterComponent(serverComponent)
//	return app.Run(ctx)
package bootstrap
