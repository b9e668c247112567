// Package cycler implements a two-phase cycler: a background loop that flips
// between Red and Green on a randomized interval and publishes every flip
// through a blocking queue.
//
// # Basic Usage
//
//	c := cycler.New(cycler.WithLogger(logger))
//	h, err := c.Start(ctx)
//	if err != nil {
//	    return err
//	}
//	defer h.Stop()
//
//	// Blocks until the cycler turns green.
//	c.WaitForPhase(cycler.Green)
//
// The cycler starts in Red. Each cycle lasts a duration drawn uniformly from
// [4s, 6s) by default (see [WithCycleRange]). The duration is drawn once when
// the loop starts and reused for every toggle unless [WithRedrawEachCycle] is
// set.
//
// # Delivery
//
// Every toggle pushes exactly one value into the cycler's queue. The queue
// delivers the most recently pushed value first, so a reader that falls
// behind sees the newest phase before older ones. [Cycler.WaitForPhase]
// discards values until it receives the requested phase. Any number of
// goroutines may wait concurrently; each pushed value is handed to one of
// them.
//
// [Cycler.CurrentPhase] is a relaxed snapshot with no ordering guarantee
// relative to queue delivery.
//
// # Shutdown
//
// Start returns a [Handle] owned by the caller. [Handle.Stop] cancels the
// loop and joins it. A cycler runs at most once.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package cycler
