package members

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/httpx"
	"github.com/openstax/bookops/pkg/logging"
)

// Plone is a Directory backed by the plone.restapi `@users` endpoint.
// Every change is persisted by its own request, so Commit only logs.
type Plone struct {
	BaseURL  string
	User     string
	Password string
	Client   *http.Client
}

// NewPlone returns a Plone directory using the shared retrying client.
func NewPlone(baseURL, user, password string) *Plone {
	return &Plone{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		User:     user,
		Password: password,
		Client:   httpx.NewClient("plone"),
	}
}

type ploneUser struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FullName  string   `json:"fullname"`
	FirstName string   `json:"firstname"`
	Surname   string   `json:"surname"`
	Roles     []string `json:"roles"`
}

func (u *ploneUser) member() *Member {
	return &Member{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.Surname,
		FullName:  u.FullName,
		Roles:     u.Roles,
	}
}

func (p *Plone) userURL(id string) string {
	u := p.BaseURL + "/@users"
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (p *Plone) do(ctx context.Context, method, rawURL string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "cannot encode request")
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid URL %q", rawURL)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.User != "" {
		req.SetBasicAuth(p.User, p.Password)
	}

	resp, err := httpx.Do(p.Client, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, errors.ErrRemoteRequest, "cannot decode response from %s", rawURL)
	}
	return nil
}

// MemberIDs returns all user ids sorted.
func (p *Plone) MemberIDs(ctx context.Context) ([]string, error) {
	var users []ploneUser
	if err := p.do(ctx, http.MethodGet, p.userURL(""), nil, &users); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *Plone) user(ctx context.Context, id string) (*ploneUser, error) {
	var u ploneUser
	if err := p.do(ctx, http.MethodGet, p.userURL(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Member returns the user id, or nil when the CMS answers 404.
func (p *Plone) Member(ctx context.Context, id string) (*Member, error) {
	u, err := p.user(ctx, id)
	if err != nil {
		if errors.GetErrorDetails(err)["status"] == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return u.member(), nil
}

// Roles returns the global roles of id.
func (p *Plone) Roles(ctx context.Context, id string) ([]string, error) {
	u, err := p.user(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Roles, nil
}

// RemoveRole revokes role from id.
func (p *Plone) RemoveRole(ctx context.Context, id, role string) error {
	body := map[string]interface{}{
		"roles": map[string]bool{role: false},
	}
	return p.do(ctx, http.MethodPatch, p.userURL(id), body, nil)
}

// Commit is a no-op; the REST API commits each request.
func (p *Plone) Commit(ctx context.Context) error {
	logger := logging.GetLogger("plone")
	logger.Debug().Str("url", p.BaseURL).Msg("Changes committed per request")
	return nil
}
