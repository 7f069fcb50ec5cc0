package dump

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pgschema/pgsplit/internal/retry"
	"github.com/pgschema/pgsplit/pkg/pgsplit"
)

// probeBackoff retries the version probe on transient connection failures.
// Kept short: the probe result only feeds the METADATA artifact.
var probeBackoff = retry.NewBackoff(2)

// ServerVersion queries the server_version setting over a short-lived
// connection. The result goes into the METADATA artifact only; a failed
// probe is the caller's decision to tolerate.
func ServerVersion(ctx context.Context, params ConnectionParams) (string, error) {
	var version string
	err := probeBackoff.Do(ctx, func(ctx context.Context) error {
		conn, err := pgx.Connect(ctx, params.URL())
		if err != nil {
			// Both sentinels stay in the chain: ErrConnectionFailed for
			// exit-code mapping, the pgconn error for transience checks.
			return fmt.Errorf("%w: %w", pgsplit.ErrConnectionFailed, err)
		}
		defer conn.Close(ctx)

		return conn.QueryRow(ctx,
			"SELECT setting FROM pg_catalog.pg_settings WHERE name = 'server_version'",
		).Scan(&version)
	})
	if err != nil {
		return "", err
	}
	return version, nil
}
