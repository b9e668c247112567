// Package log provides the logging abstraction used by phasecycle components.
//
// Library code only depends on the Logger interface. The CLI plugs in the
// zerolog adapter; tests and embedders that do not care about output use the
// no-op logger, which is also the default for a Cycler.
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	c := cycler.New(cycler.WithLogger(logger))
package log
