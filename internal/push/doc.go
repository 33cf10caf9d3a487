// Package push normalizes platform push deliveries into call signals.
//
// The platform delivers the same logical call intent on up to three
// independent channels: the foreground event stream, the backgrounded
// data callback, and the killed-process wake task. All three carry the
// same payload shape and can race for the same call. The receiver tags
// each delivery with its origin and submits it to the call controller,
// which owns dedup and session admission.
package push
