// Package assetserver exposes the primary video and staged b-roll files to
// the render engine over loopback HTTP with byte-range support.
//
// The server binds an OS-assigned port on 127.0.0.1 only, serves GET /video
// and GET /broll/{name}, and answers every response with permissive CORS
// headers so the engine's headless browser contexts can fetch media. Close is
// idempotent; a broken client connection aborts that response only.
package assetserver
