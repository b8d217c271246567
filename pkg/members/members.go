package members

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/logging"
	"golang.org/x/time/rate"
)

// DefaultThrottle is the pause between members for role operations.
const DefaultThrottle = 10 * time.Millisecond

// Member is a CMS account.
type Member struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	FullName  string   `json:"full_name"`
	Roles     []string `json:"roles"`
}

// Directory is the member store of the CMS.
type Directory interface {
	// MemberIDs returns every member id in a stable order.
	MemberIDs(ctx context.Context) ([]string, error)
	// Member returns nil without error when id no longer exists.
	Member(ctx context.Context, id string) (*Member, error)
	Roles(ctx context.Context, id string) ([]string, error)
	RemoveRole(ctx context.Context, id, role string) error
	Commit(ctx context.Context) error
}

// Admin runs member operations against a Directory.
type Admin struct {
	dir     Directory
	out     io.Writer
	limiter *rate.Limiter
}

// NewAdmin returns an Admin printing to out and waiting throttle between
// members in PrintRoles and Deny. A zero throttle disables waiting.
func NewAdmin(dir Directory, out io.Writer, throttle time.Duration) *Admin {
	limit := rate.Inf
	if throttle > 0 {
		limit = rate.Every(throttle)
	}
	return &Admin{dir: dir, out: out, limiter: rate.NewLimiter(limit, 1)}
}

// Count returns the number of members.
func (a *Admin) Count(ctx context.Context) (int, error) {
	ids, err := a.dir.MemberIDs(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrMember, "cannot list members")
	}
	return len(ids), nil
}

// WriteCount writes n to path.
func WriteCount(path string, n int) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(n)), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	return nil
}

// window returns ids[start:end+1], rejecting ranges outside the list.
func (a *Admin) window(ctx context.Context, start, end int) ([]string, error) {
	ids, err := a.dir.MemberIDs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMember, "cannot list members")
	}
	if start < 0 || end < start || end >= len(ids) {
		return nil, errors.Newf(errors.ErrInvalidInput, "invalid member range %d-%d", start, end).
			WithDetail("members", len(ids))
	}
	return ids[start : end+1], nil
}

// roles looks up the roles of id. A failed lookup is reported on out and
// yields no roles.
func (a *Admin) roles(ctx context.Context, id string) []string {
	roles, err := a.dir.Roles(ctx, id)
	if err != nil {
		logger := logging.GetLogger("members")
		logger.Debug().Err(err).Str("member", id).Msg("Role lookup failed")
		fmt.Fprintf(a.out, "=== ERROR getting roles for %s ===\n", id)
		return nil
	}
	return roles
}

// MemberRoles pairs a member with its roles.
type MemberRoles struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// PrintRoles prints the roles of every member in [start, end] and returns
// them.
func (a *Admin) PrintRoles(ctx context.Context, start, end int) ([]MemberRoles, error) {
	ids, err := a.window(ctx, start, end)
	if err != nil {
		return nil, err
	}
	var listed []MemberRoles
	for _, id := range ids {
		if err := a.limiter.Wait(ctx); err != nil {
			return listed, err
		}
		m, err := a.dir.Member(ctx, id)
		if err != nil {
			return listed, errors.Wrapf(err, errors.ErrMember, "cannot read member %s", id)
		}
		if m == nil {
			continue
		}
		roles := a.roles(ctx, m.ID)
		fmt.Fprintf(a.out, "User: %s\n", m.ID)
		fmt.Fprintf(a.out, "Roles: %s\n", strings.Join(roles, " "))
		listed = append(listed, MemberRoles{ID: m.ID, Roles: roles})
	}
	return listed, nil
}

// Deny removes every role from the members in [start, end] that are not
// in accessList, then commits. It returns the number of members whose
// roles were removed.
func (a *Admin) Deny(ctx context.Context, accessList []string, start, end int) (int, error) {
	logger := logging.GetLogger("members")
	ids, err := a.window(ctx, start, end)
	if err != nil {
		return 0, err
	}
	allowed := make(map[string]bool, len(accessList))
	for _, id := range accessList {
		allowed[id] = true
	}

	denied := 0
	for _, id := range ids {
		if err := a.limiter.Wait(ctx); err != nil {
			return denied, err
		}
		m, err := a.dir.Member(ctx, id)
		if err != nil {
			return denied, errors.Wrapf(err, errors.ErrMember, "cannot read member %s", id)
		}
		if m == nil {
			continue
		}
		if allowed[m.ID] {
			fmt.Fprintf(a.out, "%s in access list\n", m.ID)
			continue
		}
		roles := a.roles(ctx, m.ID)
		for _, role := range roles {
			if err := a.dir.RemoveRole(ctx, m.ID, role); err != nil {
				return denied, errors.Wrapf(err, errors.ErrMember, "cannot remove role %s from %s", role, m.ID)
			}
		}
		if len(roles) > 0 {
			logger.Debug().Str("member", m.ID).Strs("roles", roles).Msg("Removed roles")
			denied++
		}
	}
	if err := a.dir.Commit(ctx); err != nil {
		return denied, errors.Wrap(err, errors.ErrMember, "cannot commit role changes")
	}
	logger.Info().Int("denied", denied).Int("checked", len(ids)).Msg("Denied members outside access list")
	return denied, nil
}

// DryRun wraps dir so that role removals and commits are only logged.
func DryRun(dir Directory) Directory {
	return dryRunDirectory{Directory: dir}
}

type dryRunDirectory struct {
	Directory
}

func (d dryRunDirectory) RemoveRole(ctx context.Context, id, role string) error {
	logger := logging.GetLogger("members")
	logger.Info().Str("member", id).Str("role", role).Msg("Would remove role")
	return nil
}

func (d dryRunDirectory) Commit(ctx context.Context) error {
	return nil
}

// ReadAccessList reads one member id per line. Blank lines are ignored.
func ReadAccessList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read access list %s", path)
	}
	defer func() { _ = f.Close() }()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read access list %s", path)
	}
	return ids, nil
}
