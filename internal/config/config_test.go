package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, DriverSQLite, c.DBDriver)
	assert.Equal(t, "./data/billing.db", c.DBPath)
	assert.Equal(t, "./exports", c.ExportDir)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
}

func TestLoad_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BILLING_HTTP_ADDR", ":9090")
	t.Setenv("BILLING_DB_DRIVER", "postgres")
	t.Setenv("BILLING_DB_DSN", "postgres://billing@localhost/billing")
	t.Setenv("BILLING_EXPORT_DIR", "/tmp/out")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, DriverPostgres, c.DBDriver)
	assert.Equal(t, "postgres://billing@localhost/billing", c.DBDSN)
	assert.Equal(t, "/tmp/out", c.ExportDir)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "postgres without dsn",
			env:     map[string]string{"BILLING_DB_DRIVER": "postgres"},
			wantErr: "BILLING_DB_DSN is required",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"BILLING_DB_DRIVER": "mysql"},
			wantErr: `unknown BILLING_DB_DRIVER "mysql"`,
		},
		{
			name:    "unknown log format",
			env:     map[string]string{"LOG_FORMAT": "xml"},
			wantErr: `unknown LOG_FORMAT "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
