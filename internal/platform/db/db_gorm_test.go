package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestBuildDSN はDSN文字列が正しく生成されることを検証します。
func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "full",
			cfg:  Config{User: "u", Password: "p", Name: "chart", Host: "db", Port: "5432", SSLMode: "disable", TimeZone: "Asia/Seoul"},
			want: "host=db port=5432 user=u dbname=chart sslmode=disable password=p TimeZone=Asia/Seoul",
		},
		{
			name: "no password or timezone",
			cfg:  Config{User: "u", Name: "chart", Host: "localhost", Port: "5433", SSLMode: "require"},
			want: "host=localhost port=5433 user=u dbname=chart sslmode=require",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildDSN(tt.cfg))
		})
	}
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	db, err := ConnectWithRetry("test-dsn", 5*time.Second, func(dsn string) (*gorm.DB, error) {
		attempts++
		assert.Equal(t, "test-dsn", dsn)
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// Not parallel because this test takes time due to retry sleeps
	mockDB := &gorm.DB{}
	attempts := 0
	db, err := ConnectWithRetry("test-dsn", 10*time.Second, func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	})

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, func(dsn string) (*gorm.DB, error) {
		attempts++
		return nil, errors.New("connection refused")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.GreaterOrEqual(t, attempts, 1)
}

// TestLoadConfigFromEnv は環境変数からデータベース設定が正しく読み込まれることを検証します。
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "5544")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("RUN_MIGRATIONS", "true")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, "envuser", cfg.User)
	assert.Equal(t, "envpass", cfg.Password)
	assert.Equal(t, "envdb", cfg.Name)
	assert.Equal(t, "envhost", cfg.Host)
	assert.Equal(t, "5544", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.True(t, cfg.RunMigrations)
}

// TestMigrate は全テーブルが作成されることを検証します。
func TestMigrate(t *testing.T) {
	t.Parallel()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(conn))

	for _, table := range []string{"stock_candles", "access_tokens", "stock_rankings", "backtest_histories", "symbols", "watchlists", "portfolio_holdings"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
}
