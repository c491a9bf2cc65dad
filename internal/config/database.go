// internal/config/database.go
package config

import (
	"fmt"
)

func (d *DatabaseConfig) DSN() string {
	return d.dsn(d.Password)
}

// RedactedDSN is DSN with the password masked, for log output.
func (d *DatabaseConfig) RedactedDSN() string {
	if d.Password == "" {
		return d.dsn("")
	}
	return d.dsn("*****")
}

func (d *DatabaseConfig) dsn(password string) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, password, d.Database, d.SSLMode,
	)
}
