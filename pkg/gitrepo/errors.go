package gitrepo

import (
	"regexp"
	"strconv"
	"strings"
)

// ErrorKind classifies a failed git invocation by its stderr.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	NotRepository
	UnknownReference
	AuthRequired
	RepositoryNotFound
	RepositoryUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case NotRepository:
		return "not-repository"
	case UnknownReference:
		return "unknown-reference"
	case AuthRequired:
		return "auth-required"
	case RepositoryNotFound:
		return "repository-not-found"
	case RepositoryUnavailable:
		return "repository-unavailable"
	default:
		return "unknown"
	}
}

// ExecError is returned when git exits non-zero.
type ExecError struct {
	Kind     ErrorKind
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExecError) Error() string {
	b := new(strings.Builder)
	b.WriteString("git ")
	b.WriteString(strings.Join(e.Args, " "))
	b.WriteString(": ")
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(stderr)
	} else {
		b.WriteString("exit status ")
		b.WriteString(strconv.Itoa(e.ExitCode))
	}
	return b.String()
}

var repoNotFound = regexp.MustCompile(`fatal: repository '.*' not found`)

func determineErrorKind(stderr string) ErrorKind {
	switch {
	case strings.Contains(stderr, "not a git repository"),
		strings.Contains(stderr, "cannot change to"):
		return NotRepository
	case strings.Contains(stderr, "unknown revision or path not in the working tree"),
		strings.Contains(stderr, "did not match any file(s) known to git"):
		return UnknownReference
	case strings.Contains(stderr, "could not read Username"):
		return AuthRequired
	case strings.Contains(stderr, "Could not resolve host"):
		return RepositoryUnavailable
	case repoNotFound.MatchString(stderr):
		return RepositoryNotFound
	}
	return Unknown
}
