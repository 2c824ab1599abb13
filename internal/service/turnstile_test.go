package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dikoweii/XianTu/pkg/apperrors"
	"github.com/dikoweii/XianTu/pkg/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTurnstileEnv(t *testing.T, verifyURL string) *TurnstileService {
	t.Helper()
	env := newTestEnv(t)
	require.NoError(t, env.configs.Set(CfgTurnstileEnabled, "true"))
	if verifyURL != "" {
		require.NoError(t, env.configs.Set(CfgTurnstileVerifyURL, verifyURL))
	}
	sm := secrets.Static{secrets.KeyTurnstileSecret: "server-secret"}
	return NewTurnstileService(env.configs, sm)
}

func TestTurnstileVerify(t *testing.T) {
	t.Run("success passes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "server-secret", r.Form.Get("secret"))
			assert.Equal(t, "client-token", r.Form.Get("response"))
			w.Write([]byte(`{"success": true}`))
		}))
		defer srv.Close()

		ts := newTurnstileEnv(t, srv.URL)
		assert.NoError(t, ts.Verify(context.Background(), "client-token", "1.2.3.4"))
	})

	t.Run("rejection surfaces error codes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
		}))
		defer srv.Close()

		ts := newTurnstileEnv(t, srv.URL)
		err := ts.Verify(context.Background(), "bad-token", "")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		assert.Contains(t, err.Error(), "invalid-input-response")
	})

	t.Run("upstream outage is a gateway failure, not a pass", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		ts := newTurnstileEnv(t, srv.URL)
		err := ts.Verify(context.Background(), "client-token", "")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamFailure))
	})

	t.Run("repeated outages trip the breaker", func(t *testing.T) {
		hits := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		ts := newTurnstileEnv(t, srv.URL)
		for i := 0; i < 5; i++ {
			err := ts.Verify(context.Background(), "client-token", "")
			assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamFailure))
		}

		// The breaker is open now: still an upstream failure, but the
		// endpoint is no longer called.
		before := hits
		err := ts.Verify(context.Background(), "client-token", "")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamFailure))
		assert.Equal(t, before, hits)
	})

	t.Run("missing token rejected before any call", func(t *testing.T) {
		ts := newTurnstileEnv(t, "")
		err := ts.Verify(context.Background(), "", "")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})

	t.Run("disabled passes unconditionally", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.configs.Set(CfgTurnstileEnabled, "false"))
		ts := NewTurnstileService(env.configs, secrets.Static{})
		assert.NoError(t, ts.Verify(context.Background(), "", ""))
	})

	t.Run("missing secret is misconfiguration", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.configs.Set(CfgTurnstileEnabled, "true"))
		ts := NewTurnstileService(env.configs, secrets.Static{})
		err := ts.Verify(context.Background(), "client-token", "")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamFailure))
	})
}
