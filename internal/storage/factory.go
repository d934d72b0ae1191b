package storage

import "fmt"

// Backend names accepted by Open. SQLite is the default for single-host
// deployments; Postgres serves shared installations.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open creates the TransactionStore selected by the DATA_BACKEND setting.
func Open(backend, sqlitePath, postgresURL string) (TransactionStore, error) {
	switch backend {
	case BackendSQLite, "":
		return NewSQLiteStore(sqlitePath)
	case BackendPostgres:
		if postgresURL == "" {
			return nil, fmt.Errorf("postgres backend requires DATABASE_URL")
		}
		return NewPostgresStore(postgresURL)
	default:
		return nil, fmt.Errorf("unsupported data backend %q: use %s | %s", backend, BackendSQLite, BackendPostgres)
	}
}
