// Package gitrepo wraps the git command line for the book repository
// maintenance jobs.
//
// A Repo is always reconciled when opened: cloned or initialized if
// missing, stashed if dirty, and switched onto its working branch. Commands
// that fail return an *ExecError (wrapped in a coded error) whose Kind
// classifies the failure from git's stderr.
package gitrepo
