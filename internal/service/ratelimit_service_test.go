package service

import (
	"testing"
	"time"

	"github.com/dikoweii/XianTu/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimitWindow(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.configs.SetAll(map[string]string{
		CfgRegisterRateLimitEnabled: "true",
		CfgRegisterRateLimitMax:     "3",
		CfgRegisterRateLimitWindow:  "3600",
	}))

	now := time.Now()
	clock := func() time.Time { return now }
	limiter := NewIPRateLimitService(env.db, env.configs, clock)

	for i := 0; i < 3; i++ {
		allowed, remaining, err := limiter.Check("10.0.0.1", ActionRegister)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 3-i, remaining)
		require.NoError(t, limiter.Record("10.0.0.1", ActionRegister))
	}

	allowed, remaining, err := limiter.Check("10.0.0.1", ActionRegister)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	t.Run("other addresses unaffected", func(t *testing.T) {
		allowed, _, err := limiter.Check("10.0.0.2", ActionRegister)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("enforce returns rate limit error with reset time", func(t *testing.T) {
		err := limiter.Enforce("10.0.0.1", ActionRegister)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeRateLimited))
		appErr := apperrors.FromError(err)
		assert.NotNil(t, appErr.Details)
	})

	t.Run("window rolls over", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		allowed, remaining, err := limiter.Check("10.0.0.1", ActionRegister)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 3, remaining)
	})
}

func TestIPRateLimitDisabled(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.configs.Set(CfgRegisterRateLimitEnabled, "false"))
	limiter := NewIPRateLimitService(env.db, env.configs, nil)

	for i := 0; i < 20; i++ {
		require.NoError(t, limiter.Enforce("10.0.0.9", ActionRegister))
	}
}
