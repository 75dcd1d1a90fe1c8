package libsql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tursodatabase/libsql-client-go/libsql"
)

// Open connects to a hosted libSQL database (Turso) with url and authToken.
// Nothing is validated up front; a trivial query proves the credentials
// and the network path before the pool is handed out.
func Open(ctx context.Context, url, authToken string) (*sql.DB, error) {
	connector, err := libsql.NewConnector(url, libsql.WithAuthToken(authToken))
	if err != nil {
		return nil, fmt.Errorf("failed to create libsql connector: %w", err)
	}

	db := sql.OpenDB(connector)

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach remote database: %w", err)
	}

	return db, nil
}
