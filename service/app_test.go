package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"postboard/app/config"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeGracefulShutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var finished atomic.Bool
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Simulate work.
			time.Sleep(100 * time.Millisecond)
			finished.Store(true)
			w.WriteHeader(http.StatusOK)
		}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, listener, time.Second) }()

	respCh := make(chan int, 1)
	go func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/", listener.Addr()))
		if err != nil {
			respCh <- 0
			return
		}
		resp.Body.Close()
		respCh <- resp.StatusCode
	}()

	// Let the request reach the handler before shutting down.
	time.Sleep(50 * time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, http.StatusOK, <-respCh)
	assert.True(t, finished.Load())
}

func TestRunServesAPI(t *testing.T) {
	addr := freeAddr(t)
	cfg := &config.Config{
		Addr:            addr,
		StoreDriver:     config.DriverBadger,
		BadgerPath:      filepath.Join(t.TempDir(), "badger"),
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		BcryptCost:      config.MinBcryptCost,
		CORSOrigins:     []string{"*"},
		MaxBodyBytes:    1 << 20,
		ShutdownTimeout: time.Second,
	}
	logger, hook := test.NewNullLogger()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, logger) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get("http://" + addr + "/posts")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	cancel()
	require.NoError(t, <-done)

	var started bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "starting postboard API" {
			started = true
			assert.Equal(t, config.DriverBadger, entry.Data["store"])
		}
	}
	assert.True(t, started)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{StoreDriver: "sqlite"}, logrus.New())
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(logrus.WarnLevel)
	assert.Equal(t, logrus.WarnLevel, logger.Level)

	formatter, ok := logger.Formatter.(*logrus.JSONFormatter)
	require.True(t, ok)
	assert.Equal(t, "severity", formatter.FieldMap[logrus.FieldKeyLevel])
}

func freeAddr(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()
	return addr
}
