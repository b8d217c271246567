// pkg/members/members_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testify mock Directory, temp directories
// PURPOSE: Test member count, export, role listing and denial

package members_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/members"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) MemberIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockDirectory) Member(ctx context.Context, id string) (*members.Member, error) {
	args := m.Called(ctx, id)
	member, _ := args.Get(0).(*members.Member)
	return member, args.Error(1)
}

func (m *mockDirectory) Roles(ctx context.Context, id string) ([]string, error) {
	args := m.Called(ctx, id)
	roles, _ := args.Get(0).([]string)
	return roles, args.Error(1)
}

func (m *mockDirectory) RemoveRole(ctx context.Context, id, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockDirectory) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var ctx = context.Background()

func directory(ids ...string) *mockDirectory {
	dir := &mockDirectory{}
	dir.On("MemberIDs", mock.Anything).Return(ids, nil)
	return dir
}

func member(id string, roles ...string) *members.Member {
	return &members.Member{
		ID:        id,
		Email:     id + "@example.org",
		FirstName: "First " + id,
		LastName:  "Last",
		FullName:  "First " + id + " Last",
		Roles:     roles,
	}
}

func TestCount(t *testing.T) {
	admin := members.NewAdmin(directory("a", "b", "c"), &bytes.Buffer{}, 0)
	n, err := admin.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	path := filepath.Join(t.TempDir(), "count.txt")
	require.NoError(t, members.WriteCount(path, n))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3", string(data))
}

func TestCount_ListFailure(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("MemberIDs", mock.Anything).Return(nil, fmt.Errorf("connection refused"))
	_, err := members.NewAdmin(dir, &bytes.Buffer{}, 0).Count(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMember))
}

func TestInvalidRange(t *testing.T) {
	admin := members.NewAdmin(directory("a", "b"), &bytes.Buffer{}, 0)
	tests := []struct {
		name       string
		start, end int
	}{
		{"negative start", -1, 1},
		{"end before start", 1, 0},
		{"end past last member", 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := admin.PrintRoles(ctx, tt.start, tt.end)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		})
	}
}

func TestExport(t *testing.T) {
	dir := directory("alice", "bob", "gone", "carol")
	dir.On("Member", mock.Anything, "alice").Return(member("alice", "Member", "Publisher"), nil)
	dir.On("Member", mock.Anything, "bob").Return(member("bob", "Member"), nil)
	dir.On("Member", mock.Anything, "gone").Return(nil, nil)
	dir.On("Member", mock.Anything, "carol").Return(member("carol"), nil)
	admin := members.NewAdmin(dir, &bytes.Buffer{}, 0)
	path := filepath.Join(t.TempDir(), "members.csv")

	n, err := admin.Export(ctx, 0, 1, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = admin.Export(ctx, 2, 3, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,email,first_name,last_name,full_name,roles\n"+
		"alice,alice@example.org,First alice,Last,First alice Last,Member Publisher\n"+
		"bob,bob@example.org,First bob,Last,First bob Last,Member\n"+
		"carol,carol@example.org,First carol,Last,First carol Last,\n", string(data))

	// A new batch from 0 starts the file over.
	_, err = admin.Export(ctx, 1, 1, path)
	require.NoError(t, err)
	_, err = admin.Export(ctx, 0, 0, path)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,email,first_name,last_name,full_name,roles\n"+
		"alice,alice@example.org,First alice,Last,First alice Last,Member Publisher\n", string(data))
}

func TestPrintRoles(t *testing.T) {
	dir := directory("alice", "bob", "gone")
	dir.On("Member", mock.Anything, "alice").Return(member("alice"), nil)
	dir.On("Member", mock.Anything, "bob").Return(member("bob"), nil)
	dir.On("Member", mock.Anything, "gone").Return(nil, nil)
	dir.On("Roles", mock.Anything, "alice").Return([]string{"Member", "Reviewer"}, nil)
	dir.On("Roles", mock.Anything, "bob").Return(nil, fmt.Errorf("no such principal"))

	var out bytes.Buffer
	start := time.Now()
	listed, err := members.NewAdmin(dir, &out, 5*time.Millisecond).PrintRoles(ctx, 0, 2)
	require.NoError(t, err)

	assert.Equal(t, "User: alice\nRoles: Member Reviewer\n"+
		"=== ERROR getting roles for bob ===\nUser: bob\nRoles: \n", out.String())
	assert.Equal(t, []members.MemberRoles{
		{ID: "alice", Roles: []string{"Member", "Reviewer"}},
		{ID: "bob"},
	}, listed)
	// three members, the first passes the limiter immediately
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	dir.AssertExpectations(t)
}

func TestDeny(t *testing.T) {
	dir := directory("alice", "bob", "carol", "dave")
	dir.On("Member", mock.Anything, "alice").Return(member("alice"), nil)
	dir.On("Member", mock.Anything, "bob").Return(member("bob"), nil)
	dir.On("Member", mock.Anything, "carol").Return(member("carol"), nil)
	dir.On("Roles", mock.Anything, "bob").Return([]string{"Member", "Publisher"}, nil)
	dir.On("Roles", mock.Anything, "carol").Return([]string{}, nil)
	dir.On("RemoveRole", mock.Anything, "bob", "Member").Return(nil).Once()
	dir.On("RemoveRole", mock.Anything, "bob", "Publisher").Return(nil).Once()
	dir.On("Commit", mock.Anything).Return(nil).Once()

	var out bytes.Buffer
	denied, err := members.NewAdmin(dir, &out, 0).Deny(ctx, []string{"alice", "dave"}, 0, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, denied)
	assert.Equal(t, "alice in access list\n", out.String())
	dir.AssertExpectations(t)
	dir.AssertNotCalled(t, "Member", mock.Anything, "dave")
}

func TestDeny_RemoveFailure(t *testing.T) {
	dir := directory("bob")
	dir.On("Member", mock.Anything, "bob").Return(member("bob"), nil)
	dir.On("Roles", mock.Anything, "bob").Return([]string{"Member"}, nil)
	dir.On("RemoveRole", mock.Anything, "bob", "Member").Return(fmt.Errorf("forbidden"))

	_, err := members.NewAdmin(dir, &bytes.Buffer{}, 0).Deny(ctx, nil, 0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMember))
	dir.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestDeny_CancelledContext(t *testing.T) {
	dir := directory("a", "b")
	cctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := members.NewAdmin(dir, &bytes.Buffer{}, time.Second).Deny(cctx, nil, 0, 1)
	require.Error(t, err)
	dir.AssertNotCalled(t, "Member", mock.Anything, mock.Anything)
}

func TestDeny_DryRun(t *testing.T) {
	dir := directory("bob")
	dir.On("Member", mock.Anything, "bob").Return(member("bob"), nil)
	dir.On("Roles", mock.Anything, "bob").Return([]string{"Member"}, nil)

	denied, err := members.NewAdmin(members.DryRun(dir), &bytes.Buffer{}, 0).Deny(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, denied)
	dir.AssertNotCalled(t, "RemoveRole", mock.Anything, mock.Anything, mock.Anything)
	dir.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestReadAccessList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice\n\n  bob \ncarol"), 0644))
	ids, err := members.ReadAccessList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, ids)

	_, err = members.ReadAccessList(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestCSVName(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "members-20240307.csv", members.CSVName("members", true, now))
	assert.Equal(t, "members.csv", members.CSVName("members", false, now))
}

func TestWriteCSV(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out", "roles")
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	rows := []map[string]string{
		{"id": "alice", "roles": "Member Publisher"},
		{"id": "bob, jr", "extra": "ignored"},
	}
	path, err := members.WriteCSV([]string{"id", "roles"}, rows, name, true, now)
	require.NoError(t, err)
	assert.Equal(t, name+"-20240307.csv", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,roles\nalice,Member Publisher\n\"bob, jr\",\n", string(data))
}
