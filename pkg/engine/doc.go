// Package engine serves recorded exemplars as live mock endpoints.
//
// A Handler answers requests for one target authority by matching them
// against that authority's exemplars. A Supervisor runs one listener per
// authority and shuts them all down when its context is cancelled.
//
//	idx := mock.BuildIndex(result.Transactions, cfg.Serve.BasePort)
//	sup := engine.NewSupervisor(idx, &cfg.Serve, engine.WithLogger(log))
//	err := sup.Run(ctx)
package engine
