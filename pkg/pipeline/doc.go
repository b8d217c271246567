// Package pipeline runs the maintenance sequence over book repositories.
//
// For every book the pipeline opens (cloning or updating) the repository,
// removes orphaned files reported by poet, regenerates the README and
// repository settings, synchronizes the LICENSE, and then either prunes
// branches and tags and pushes, or reports what a push run would remove.
//
// A failing book is reported and skipped; the run continues with the
// next one. Books may be processed concurrently.
package pipeline
