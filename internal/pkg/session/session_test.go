package session

import (
	"testing"
	"time"

	"github.com/blogd/blogd/internal/models"
	jwtpkg "github.com/blogd/blogd/internal/pkg/jwt"
	"github.com/blogd/blogd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIssueBindsTokenToSession(t *testing.T) {
	db := testutil.NewDB(t)
	user := &models.User{Email: "a@example.com", Password: "x", Role: models.RoleWriter}
	require.NoError(t, db.Create(user).Error)

	issued, err := Issue(db, user, "127.0.0.1", "go-test", time.Hour)
	require.NoError(t, err)

	claims, err := jwtpkg.Parse(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.Session.ID, claims.SessionID)
	assert.Equal(t, "User", claims.Name)
	assert.Equal(t, "WRITER", claims.Role)

	active, err := IsActive(db, user.ID, claims.SessionID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestRevokeAllDeactivates(t *testing.T) {
	db := testutil.NewDB(t)
	user := &models.User{Email: "b@example.com", Password: "x", Role: models.RoleReader}
	require.NoError(t, db.Create(user).Error)

	first, err := Issue(db, user, "", "", time.Hour)
	require.NoError(t, err)
	second, err := Issue(db, user, "", "", time.Hour)
	require.NoError(t, err)

	n, err := RevokeAll(db, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	for _, s := range []*Issued{first, second} {
		active, err := IsActive(db, user.ID, s.Session.ID)
		require.NoError(t, err)
		assert.False(t, active)
	}

	assert.ErrorIs(t, Revoke(db, user.ID, first.Session.ID), gorm.ErrRecordNotFound)
}

func TestPurgeRemovesStaleRows(t *testing.T) {
	db := testutil.NewDB(t)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Create(&models.Session{UserID: "u", ExpiresAt: old}).Error)
	require.NoError(t, db.Create(&models.Session{UserID: "u", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	n, err := Purge(db, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	live, err := ListActive(db, "u")
	require.NoError(t, err)
	assert.Len(t, live, 1)
}
