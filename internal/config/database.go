// internal/config/database.go
package config

import "fmt"

// DSN renders the keyword/value connection string for the postgres
// driver. Timestamps are stored and compared in UTC so the session
// timezone is pinned rather than inherited from the host.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
