package cycler

// Handle controls a running cycler. It is returned by Cycler.Start and owned
// by the caller.
type Handle struct {
	c *Cycler
}

// Done is closed when the loop goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.c.exited
}

// Stop cancels the loop and waits for it to exit, up to the configured stop
// timeout. It returns ErrNotRunning if the loop is already stopping or
// stopped, and ErrStopTimeout if the loop did not exit in time.
func (h *Handle) Stop() error {
	rs := h.c.runState
	if err := rs.TransitionTo(StateStopping, "Stop() called"); err != nil {
		return ErrNotRunning
	}

	rs.Cancel()

	if err := rs.WaitWithTimeout(h.c.opts.stopTimeout); err != nil {
		return err
	}
	return rs.TransitionTo(StateStopped, "graceful shutdown")
}
