package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Namra404/secunda/config"
	"github.com/Namra404/secunda/pkg/database"
)

func newHTTPDependency(t *testing.T, port int) *HTTPDependency {
	t.Helper()
	mockDB, _, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	db, ok := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "postgres"), logger).(*database.DatabaseInstance)
	require.True(t, ok)

	cfg := &config.Config{
		AppName:      "secunda-test",
		Port:         port,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet},
	}
	return NewHTTPDependency(cfg, &DatabaseDependency{logger: logger, db: db}, "test", logger)
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestHTTPDependency_PortInUseFailsStart(t *testing.T) {
	taken, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer taken.Close()

	dep := newHTTPDependency(t, taken.Addr().(*net.TCPAddr).Port)

	err = dep.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
	assert.False(t, dep.checker.IsReady())
	assert.NoError(t, dep.Stop(context.Background()))
}

func TestHTTPDependency_ServesUntilStopped(t *testing.T) {
	port := freePort(t)
	dep := newHTTPDependency(t, port)

	require.NoError(t, dep.Start(context.Background()))
	assert.True(t, dep.checker.IsReady())

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health/live", port))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, dep.Stop(context.Background()))
	assert.False(t, dep.checker.IsReady())

	_, err = http.Get(fmt.Sprintf("http://127.0.0.1:%d/health/live", port))
	assert.Error(t, err)
}
