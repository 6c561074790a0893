package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/elibrary/pkg/errors"
)

// TestGenerateAndParse 测试Token生成与解析往返
func TestGenerateAndParse(t *testing.T) {
	manager := NewManager("test-secret", 2*time.Hour, 168*time.Hour)

	t.Run("正常往返", func(t *testing.T) {
		pair, err := manager.GenerateToken(42, "reader@example.com", []string{"User", "Librarian"})
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, int64(7200), pair.ExpiresIn)

		claims, err := manager.ParseToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "reader@example.com", claims.Email)
		assert.Equal(t, []string{"User", "Librarian"}, claims.Roles, "角色应该随Token携带")

		t.Logf("✓ Token往返成功: user_id=%d, roles=%v", claims.UserID, claims.Roles)
	})

	t.Run("错误密钥被拒绝", func(t *testing.T) {
		pair, err := manager.GenerateToken(42, "reader@example.com", nil)
		require.NoError(t, err)

		other := NewManager("another-secret", 2*time.Hour, 168*time.Hour)
		_, err = other.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

		t.Logf("✓ 错误密钥签发的Token正确被拒绝")
	})

	t.Run("过期Token被拒绝", func(t *testing.T) {
		expired := NewManager("test-secret", -time.Minute, 168*time.Hour)
		pair, err := expired.GenerateToken(42, "reader@example.com", nil)
		require.NoError(t, err)

		_, err = manager.ParseToken(pair.AccessToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired, "过期应该映射为专门的错误")

		t.Logf("✓ 过期Token正确被拒绝")
	})

	t.Run("畸形Token被拒绝", func(t *testing.T) {
		_, err := manager.ParseToken("not-a-jwt")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}
