// Package compose parses caption/b-roll manifests and assembles the input
// properties handed to the render engine.
//
// Manifests come in two shapes for backward compatibility: a flat JSON array
// of caption segments, or an object carrying optional captions and bRolls
// arrays. Both resolve to the same structures.
package compose
