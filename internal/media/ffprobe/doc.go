// Package ffprobe wraps the ffprobe binary for media inspection: container
// duration, stream layout, and video frame rate.
package ffprobe
