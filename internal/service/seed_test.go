package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/cleancare-api/internal/testutil"
)

const seedYAML = `users:
  - username: root
    password: change-me-please
    email: root@cleancare.local
    is_staff: true
    is_superuser: true
  - username: ward_admin
    password: change-me-too
    is_staff: true
  - username: existing
    password: ignored-password
  - username: retired
    password: retired-password
    is_active: false
  - username: ""
    password: nobody
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeedUsersFromFile(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	existing := testutil.CreateUser(t, repo, "existing", "password123", false, false)

	path := writeSeed(t, seedYAML)
	created, err := svc.SeedUsersFromFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	root, err := repo.FindUserByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, root.IsSuperuser)
	assert.True(t, root.IsActive)
	assert.Equal(t, "root@cleancare.local", root.Email)

	admin, err := repo.FindUserByUsername(ctx, "ward_admin")
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)
	assert.False(t, admin.IsSuperuser)

	retired, err := repo.FindUserByUsername(ctx, "retired")
	require.NoError(t, err)
	assert.False(t, retired.IsActive)

	kept, err := repo.FindUserByUsername(ctx, "existing")
	require.NoError(t, err)
	assert.Equal(t, existing.PasswordHash, kept.PasswordHash)

	// running again is a no-op
	created, err = svc.SeedUsersFromFile(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestSeedUsersFromFile_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SeedUsersFromFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = svc.SeedUsersFromFile(ctx, writeSeed(t, "users: [unterminated"))
	assert.Error(t, err)
}
