// Package carousel positions the items of a rotating 3D-style carousel and
// drives its auto-advance.
//
// An [Engine] owns the active item pointer for a fixed number of items. Every
// item gets a [Placement] derived only from its shortest signed circular
// distance to the active item, so the rendering layer can map placements to
// pixels without any logic of its own.
//
// # Basic Usage
//
//	engine, err := carousel.New(len(projects), carousel.DefaultConfig(), scheduler)
//	if err != nil {
//	    return err
//	}
//	defer engine.Dispose()
//
//	// User clicked the "next" arrow.
//	engine.AdvanceManual()
//	for _, p := range engine.Placements() {
//	    draw(projects[p.Index], p)
//	}
//
// # Auto-advance
//
// While auto-advance is enabled the engine calls [Engine.Advance] once per
// [Config.Interval] through the [Scheduler] it was given. The first manual
// navigation ([Engine.Retreat], [Engine.AdvanceManual], [Engine.SelectIndex])
// cancels the subscription for the rest of the engine's life.
//
// An Engine is not safe for concurrent use. Scheduler callbacks must be
// delivered on the goroutine that owns the engine.
package carousel
