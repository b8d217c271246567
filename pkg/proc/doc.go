// Package proc runs the external programs bookops drives (git, npm, poet).
//
// Two flavors are offered. Run never treats a non-zero exit status as an
// error so callers that rely on exit-code conventions (poet exits 111 when
// it has something to report) can inspect Result.ExitCode. Spawn fails on
// any non-zero exit and folds stderr into the error text.
package proc
