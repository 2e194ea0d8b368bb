// Package textgeom resolves on-screen pixel bounds for character ranges
// inside text surfaces owned by other applications.
//
// # Overview
//
// textgeom is the geometry-resolution core of a text-correction overlay.
// Given an opaque handle to a text-input surface and a character range
// inside that surface's text, it computes the screen rectangle bounding
// the range so a caller can draw an indicator aligned with text this
// process does not render itself.
//
// The only source of truth is an external introspection interface whose
// behavior varies by renderer family and is frequently incomplete or
// wrong: zero-sized rectangles, or container frames returned in place of
// glyph bounds. textgeom reconciles the uncertainty about which
// capability a surface actually supports, which coordinate system and
// character-indexing scheme an answer is expressed in, and whether the
// answer is trustworthy at all.
//
// # Architecture
//
// The library is organized into:
//   - Root package: Rect, Point, Display, Mapper (coordinate flip and
//     bounds validation)
//   - textindex: scalar / UTF-16 / grapheme index conversion
//   - surface: the introspection interface abstraction, capability
//     detection, derived surface identity
//   - cache: TTL cache with recency/frequency eviction
//   - measure: font-backed text measurement and line-wrap simulation
//   - resolve: the strategy chain and the resolver that drives it
//
// # Quick Start
//
//	mapper := textgeom.NewMapper(textgeom.SingleDisplay(1920, 1080))
//	r := resolve.New(mapper)
//	defer r.Close()
//
//	req := resolve.NewRequest(handle, errRange, text, "com.example.app")
//	result, ok := r.Resolve(req)
//	if ok && result.Usable(resolve.DefaultMinConfidence) {
//	    draw(result.Bounds)
//	}
//
// # Coordinate Systems
//
// Introspection implementations answer in top-down coordinates (origin at
// the top-left of the primary display, y grows down). Window servers on
// some platforms draw in bottom-up coordinates (origin at the bottom-left,
// y grows up). Every rectangle is tagged with its system and the Mapper
// converts between them using the primary display's height.
//
// # Trust Model
//
// Every result carries a confidence score in [0, 1]. Results below the
// usable threshold are equivalent to "unavailable": they are never cached
// and a conforming renderer refuses to draw them. textgeom prefers
// returning no answer over a low-confidence guess.
package textgeom

// Version is the current version of the library.
const Version = "0.1.0"
