package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, time.August, cfg.School.RolloverMonth)
	assert.Equal(t, "UTC", cfg.School.Timezone)
	assert.Equal(t, ResubmissionAppend, cfg.Attendance.ResubmissionPolicy)
	assert.Equal(t, 10*time.Minute, cfg.Timetable.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestFromViperOverrides(t *testing.T) {
	v := newTestViper()
	v.Set("ATTENDANCE_RESUBMISSION_POLICY", " Reject ")
	v.Set("ACADEMIC_YEAR_ROLLOVER_MONTH", 9)
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("TIMETABLE_CACHE_TTL", "bogus")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ResubmissionReject, cfg.Attendance.ResubmissionPolicy)
	assert.Equal(t, time.September, cfg.School.RolloverMonth)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.Timetable.CacheTTL)
}

func TestFromViperRejectsInvalidValues(t *testing.T) {
	cases := map[string]func(*viper.Viper){
		"policy":   func(v *viper.Viper) { v.Set("ATTENDANCE_RESUBMISSION_POLICY", "upsert") },
		"month":    func(v *viper.Viper) { v.Set("ACADEMIC_YEAR_ROLLOVER_MONTH", 13) },
		"timezone": func(v *viper.Viper) { v.Set("SCHOOL_TIMEZONE", "Mars/Olympus") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := newTestViper()
			mutate(v)
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}
