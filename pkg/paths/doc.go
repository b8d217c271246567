// Package paths locates the bookops tool root: the directory holding
// bookops.toml, .env and the tool checkouts (poet, repo-prep).
//
// The root is, in order of precedence:
//
//   - an explicit path (the --root flag)
//   - $BOOKOPS_ROOT
//   - the nearest directory, from the working directory upwards, that
//     contains bookops.toml
//   - the working directory, reported as a fallback
//
// Paths starting with ~ are expanded against the home directory.
package paths
