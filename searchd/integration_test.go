//go:build integration

package searchd

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shipq/sphinxql/internal/config"
	"github.com/shipq/sphinxql/query"
)

// connectSearchd opens the searchd at SPHINXQL_URL, or 127.0.0.1:9306.
// It skips the test when searchd is unavailable.
func connectSearchd(t *testing.T) *Adapter {
	t.Helper()

	cfg := config.DefaultAdapterConfig(config.DefaultAdapter)
	cfg.Timeout = 2 * time.Second
	if u := os.Getenv(config.EnvURL); u != "" {
		f := &config.File{}
		f.Set("searchd", "url", u)
		c, err := config.FromFile(f, "")
		require.NoError(t, err)
		cfg, _ = c.Adapter(config.DefaultAdapter)
	}

	a, err := Open(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := a.Ping(ctx); err != nil {
		a.Close()
		t.Skipf("searchd unavailable at %s: %v. Start searchd with an rt index named rt to run this test.", cfg.Addr(), err)
		return nil
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSearchdIntegration_SelectExecutes(t *testing.T) {
	a := connectSearchd(t)
	if a == nil {
		return
	}
	ctx := context.Background()

	s := query.NewSelect().From("rt").
		Where(query.NewWhere().Match("test")).
		Order("id DESC").
		Limit(5).
		Option(map[string]any{"max_matches": 100}, query.OptionsMerge)
	_, err := a.QueryMaps(ctx, s)
	require.NoError(t, err)

	_, err = a.Exec(ctx, query.DeleteFrom("rt").Where(query.Pairs{{Key: "id", Value: []int{987654321}}}))
	require.NoError(t, err)
}
