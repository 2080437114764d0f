// Package marquee implements the scrolling-ticker domain: message
// validation and layout, the brightness-scaled palette, the scroll
// renderer and the engine loop that owns all of it.
//
// Concurrency model: a single goroutine started by Engine.Run owns every
// piece of mutable display state. External inputs (MQTT handlers, API
// requests, connectivity callbacks) are funneled in over small buffered
// channels with latest-wins semantics, so a slow panel can never block a
// broker callback. Read-side accessors return snapshots under a lock and
// are safe from any goroutine.
//
// Rendering cycles through three phases per message: a hold while the
// text sits at the left margin, a scroll until the text has fully left
// the panel, and an optional blank before the cycle restarts. Replacing
// the message resets the cycle; a malformed payload never disturbs it.
package marquee
