package credential

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdditionalConfig_EffectiveTimeout(t *testing.T) {
	t.Run("Configured", func(t *testing.T) {
		cfg := AdditionalConfig{Timeout: 5 * time.Second}
		assert.Equal(t, 5*time.Second, cfg.EffectiveTimeout(0))
	})

	t.Run("ConfiguredWinsOverShorterFallback", func(t *testing.T) {
		cfg := AdditionalConfig{Timeout: 90 * time.Second}
		assert.Equal(t, 90*time.Second, cfg.EffectiveTimeout(30*time.Second))
	})

	t.Run("FallbackAppliesWhenUnset", func(t *testing.T) {
		cfg := AdditionalConfig{}
		assert.Equal(t, 10*time.Second, cfg.EffectiveTimeout(10*time.Second))
	})

	t.Run("ZeroFallsBackToDefault", func(t *testing.T) {
		cfg := AdditionalConfig{}
		assert.Equal(t, DefaultRequestTimeout, cfg.EffectiveTimeout(0))
	})
}

func TestCredential_PasswordNotSerialized(t *testing.T) {
	cred := &Credential{
		ID:          uuid.New(),
		ServiceName: "ceisa-tank",
		ServiceType: ServiceTypeJSONBearer,
		EndpointURL: "https://host.example/api/submit",
		Username:    "wh-operator",
		Password:    "s3cret",
		IsActive:    true,
	}

	data, err := json.Marshal(cred)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "s3cret")
	assert.Contains(t, string(data), "wh-operator")
}
