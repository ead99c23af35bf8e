package sites

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files for this package.
// Paths are rooted at data/sql/migrations/<driver>.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
