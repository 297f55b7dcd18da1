//go:build live

package checks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/hn-contract-checks/internal/session"
)

// TestLiveContract runs the default suite against the profile selected by ENV.
//
//	ENV=PROD go test -tags live ./internal/checks/...
func TestLiveContract(t *testing.T) {
	client, err := session.Client()
	require.NoError(t, err)

	p := client.Profile()
	perCall := p.Timeout*time.Duration(p.MaxRetries+1) + p.MaxBackoffDelay*time.Duration(p.MaxRetries)

	for _, c := range Default(Options{}).All() {
		t.Run(c.ID(), func(t *testing.T) {
			// The heaviest checks issue a dozen calls.
			ctx, cancel := context.WithTimeout(context.Background(), 12*perCall)
			defer cancel()
			require.NoError(t, c.Run(ctx, client))
		})
	}
}
