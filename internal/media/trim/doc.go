// Package trim cuts video b-roll down to a target duration with ffmpeg.
//
// Trimming is two-tier: a lossless stream-copy cut is attempted first, and a
// bounded re-encode is the fallback when the container refuses packet copying.
// Neither tier ever overrides the source frame rate, so trimmed clips play at
// their natural speed.
package trim
