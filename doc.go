// Package easel provides the interactive editing core for a layered
// raster/vector image editor.
//
// # Overview
//
// easel is the document-side counterpart to the GoGPU rendering stack. It
// owns the layer stack data model (surfaces, filters, groups, selections)
// and feeds the three engines every interactive editor needs:
//
//   - filter: a speculative filter pipeline that previews, commits, or
//     cancels filter applications executed by an external service, without
//     ever corrupting pixels or history.
//   - arrange: a layer ordering engine that turns pointer-drag geometry into
//     deterministic reorder and reparent operations.
//   - refresh: a change-coalescing monitor that folds bursts of fine-grained
//     mutations into bounded-rate thumbnail and navigator refreshes.
//
// The engines never call each other. They communicate exclusively through
// the per-layer change counters and the stack-wide structural counter that
// every mutation bumps, so mutation call sites stay decoupled from the
// machinery that reacts to them.
//
// # Quick Start
//
//	stack := easel.NewStack()
//	layer := easel.NewRasterLayer("Background", 512, 512)
//	stack.Append(layer)
//
//	sess := easel.NewSession(stack,
//	    easel.WithHistory(hist),
//	    easel.WithRefresher(easel.RefresherFuncs{Navigator: repaintPanel}),
//	)
//
// # Concurrency Model
//
// The core is single-threaded and cooperative: every operation (a tool
// stroke, a drag step, a timer callback, a service response) runs to
// completion before the next is dispatched. Loop provides that dispatch
// order; asynchronous work such as filter execution re-enters through
// Session.Post. Timers go through the Scheduler abstraction so they are
// cancelable by handle and replaceable in tests.
//
// # Counters
//
// Every pixel mutation bumps the owning layer's change counter and every
// reorder, reparent, add, or remove bumps the structural counter. Counter
// values are drawn from one document-global monotonic sequence, so a value
// is never reused, not even when a layer is deleted and a later one takes
// its place. Consumers that compare counters (the refresh monitor, caches)
// can therefore trust a changed value absolutely.
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
package easel

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
