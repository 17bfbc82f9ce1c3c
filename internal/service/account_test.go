package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinematch/internal/repository"
)

func newAccountService(t *testing.T) *AccountService {
	t.Helper()
	db, err := repository.InitDB(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewAccountService(repository.NewRepositories(db).User)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	accounts := newAccountService(t)

	_, err := accounts.Register("ripley", "nostromo")
	require.NoError(t, err)

	_, err = accounts.Register("ripley", "a-different-password")
	require.Error(t, err)
	assert.Equal(t, KindUsernameTaken, KindOf(err))
}

func TestVerify(t *testing.T) {
	accounts := newAccountService(t)
	_, err := accounts.Register("ripley", "nostromo")
	require.NoError(t, err)

	user, err := accounts.Verify("ripley", "nostromo")
	require.NoError(t, err)
	assert.Equal(t, "ripley", user.Username)

	_, wrongPassword := accounts.Verify("ripley", "sulaco")
	_, unknownUser := accounts.Verify("bishop", "nostromo")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, KindInvalidCredentials, KindOf(wrongPassword))
	assert.Equal(t, KindInvalidCredentials, KindOf(unknownUser))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())

	wrongMsg, _ := MessageOf(wrongPassword)
	unknownMsg, _ := MessageOf(unknownUser)
	assert.Equal(t, wrongMsg, unknownMsg)
}
