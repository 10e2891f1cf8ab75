package app

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/whyyagswhy/dealcalc-sub000/internal/config"
	"github.com/whyyagswhy/dealcalc-sub000/internal/store"
)

func TestNewRedisPingsServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewRedis(context.Background(), "redis://"+mr.Addr(), false, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	require.True(t, mr.Exists("k"))
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "http://nope", false, zerolog.Nop())
	require.ErrorContains(t, err, "parse redis url")
}

func TestNewQuoteServiceUsesConfig(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":  "postgres://localhost/dealcalc",
		"REDIS_URL":     "redis://localhost:6379/0",
		"CURRENCY_CODE": "eur",
		"LOCALE":        "de-DE",
	})
	require.NoError(t, err)

	svc, err := NewQuoteService(cfg, store.New(nil), nil, zerolog.Nop())
	require.NoError(t, err)
	require.Contains(t, svc.Formatter().Currency(decimal.NewFromInt(1234)), "€")
}

func TestOpenRequiresConfig(t *testing.T) {
	_, err := Open(context.Background(), nil, zerolog.Nop(), Options{})
	require.Error(t, err)
}

func TestCloseNil(t *testing.T) {
	var d *Dependencies
	d.Close()
}
