package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/server/auth"
	"github.com/dmitrijs2005/passkeeper/internal/server/config"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.DatabaseDSN = repomanager.MemoryDSN
	c.BcryptCost = auth.MinBcryptCost
	return c
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig()
	c.EncryptionKey = "short"

	_, err := NewApp(context.Background(), c, logging.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestNewApp_StoreError(t *testing.T) {
	orig := openStore
	t.Cleanup(func() { openStore = orig })
	openStore = func(context.Context, string) (*repomanager.Store, error) {
		return nil, errors.New("unreachable")
	}

	_, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return app.cleaner.Stats().Runs > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunFailsOnBadAddress(t *testing.T) {
	c := testConfig()
	c.EndpointAddrHTTP = "256.0.0.1:99999"

	app, err := NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not fail")
	}
}
