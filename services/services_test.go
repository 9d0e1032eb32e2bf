package services

import (
	"testing"
	"time"

	"helmet-store/store"
	"helmet-store/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T, st *store.MemoryStore) *AuthService {
	t.Helper()
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	return newAuthService(st.Users(), tokens, zaptest.NewLogger(t), bcrypt.MinCost)
}

func requireKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, utils.KindOf(err), "unexpected error: %v", err)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
