package sqlstore

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds SQL storage configuration
type Config struct {
	Driver       string // postgres or sqlite
	DSN          string
	MaxOpenConns int
	Debug        bool // log every statement
}

// DefaultConfig returns a configuration for a local sqlite file
func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          "battleship.db",
		MaxOpenConns: 10,
	}
}
