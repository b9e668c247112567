// Package phasecycle is a two-phase traffic light simulation primitive.
//
// Example usage:
//
//	light := phasecycle.New()
//	h, err := light.Start(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Stop()
//	light.WaitForPhase(phasecycle.Green)
//
// The implementation lives in pkg/cycler (the cycler) and pkg/queue (the
// blocking queue it publishes through); this package re-exports the common
// entry points.
package phasecycle

import (
	"fmt"

	"github.com/bft-labs/phasecycle/pkg/cycler"
	"github.com/bft-labs/phasecycle/pkg/lifecycle"
	"github.com/bft-labs/phasecycle/pkg/log"
	"github.com/bft-labs/phasecycle/pkg/queue"
)

// Phase is Red or Green.
type Phase = cycler.Phase

// Cycler toggles between Red and Green in the background.
type Cycler = cycler.Cycler

// Handle stops a running Cycler.
type Handle = cycler.Handle

// Option configures a Cycler.
type Option = cycler.Option

const (
	Red   = cycler.Red
	Green = cycler.Green
)

// New creates a Cycler in the Red phase. See the cycler package for options.
func New(opts ...Option) *Cycler {
	return cycler.New(opts...)
}

// NewQueue creates an empty blocking queue.
func NewQueue[T any]() *queue.Queue[T] {
	return queue.New[T]()
}

type moduleVersion struct {
	version    string
	minVersion string
}

func modules() map[string]moduleVersion {
	return map[string]moduleVersion{
		"cycler":    {cycler.Version, cycler.MinCompatibleVersion},
		"queue":     {queue.Version, queue.MinCompatibleVersion},
		"lifecycle": {lifecycle.Version, lifecycle.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
	}
}

// ModuleVersions returns the version of every sub-package.
func ModuleVersions() map[string]string {
	out := make(map[string]string)
	for name, m := range modules() {
		out[name] = m.version
	}
	return out
}

// CheckModuleVersions returns an error if any sub-package is older than its
// own minimum compatible version.
func CheckModuleVersions() error {
	for name, m := range modules() {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible reports whether version >= minVersion, both in
// "major.minor.patch" form.
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
