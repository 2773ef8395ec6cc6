package app_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soiree-app/soiree/internal/auth/app"
)

func TestProductionPolicyFollowsEnv(t *testing.T) {
	t.Run("prod implies the policy", func(t *testing.T) {
		t.Setenv("ENV", "prod")

		cfg, err := app.LoadConfig()
		require.NoError(t, err)
		require.True(t, cfg.ProductionPolicy,
			"ENV=prod without AUTH_PRODUCTION_POLICY must fail closed")
	})

	t.Run("explicit false overrides prod", func(t *testing.T) {
		t.Setenv("ENV", "prod")
		t.Setenv("AUTH_PRODUCTION_POLICY", "false")

		cfg, err := app.LoadConfig()
		require.NoError(t, err)
		require.False(t, cfg.ProductionPolicy)
	})

	t.Run("dev defaults off", func(t *testing.T) {
		t.Setenv("ENV", "dev")

		cfg, err := app.LoadConfig()
		require.NoError(t, err)
		require.False(t, cfg.ProductionPolicy)
	})

	t.Run("explicit true outside prod", func(t *testing.T) {
		t.Setenv("ENV", "dev")
		t.Setenv("AUTH_PRODUCTION_POLICY", "true")

		cfg, err := app.LoadConfig()
		require.NoError(t, err)
		require.True(t, cfg.ProductionPolicy)
	})
}
