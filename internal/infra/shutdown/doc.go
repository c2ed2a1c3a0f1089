// Package shutdown runs cleanup hooks when the process is asked to stop.
//
// A Handler waits for SIGINT, SIGTERM, an explicit Trigger or the end of a
// context, then runs the registered hooks newest first under a timeout:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
