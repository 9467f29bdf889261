// Package bootstrap runs a finite task with config validation, logger
// initialization, start and stop hooks, and signal-driven cancellation.
//
//	app, err := bootstrap.NewApp(cfg)
//	if err != nil {
//		return err
//	}
//	tel := app.EnableTelemetry(cfg.Observability)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//		return run(ctx, tel)
//	})
package bootstrap
