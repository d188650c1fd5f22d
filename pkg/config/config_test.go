package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, AuthProviderJWT, cfg.Auth.Provider)
	assert.Equal(t, []string{"settings/app", "settings/global"}, cfg.Schedule.SettingsPaths)
	assert.Equal(t, 8, cfg.Schedule.ParentFanOut)
	assert.False(t, cfg.Schedule.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.Schedule.CacheTTL)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORE_DRIVER", "Firestore")
	v.Set("SCHEDULE_SETTINGS_PATHS", " settings/global , ,config/term ")
	v.Set("SCHEDULE_CACHE_TTL", "not-a-duration")
	v.Set("SCHEDULE_DEFAULT_YEAR", 2025)
	cfg := fromViper(v)

	assert.Equal(t, StoreDriverFirestore, cfg.Store.Driver)
	assert.Equal(t, []string{"settings/global", "config/term"}, cfg.Schedule.SettingsPaths)
	assert.Equal(t, 5*time.Minute, cfg.Schedule.CacheTTL)
	assert.Equal(t, 2025, cfg.Schedule.DefaultYear)
}
