// Package testutil provides fixtures for testing bookops components.
//
// Key components:
//   - Git fixtures: isolated git config, bare remotes seeded with files,
//     branches and tags, and a RunGit helper that fails the test on error
//   - Book fixtures: META-INF/books.xml, collection XML and README
//     templates written either to disk or to an afero filesystem
//
// Usage guidelines:
//   - Tests that shell out to git call RequireGit first so they skip
//     cleanly on machines without git
//   - All test data is defined inline, not in external files
//   - Each test gets its own temp directories and git config
package testutil
