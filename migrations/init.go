package migrations

import (
	"io/fs"

	timeclock "github.com/goliatone/go-timeclock"
)

func init() {
	coreFS, err := fs.Sub(timeclock.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(coreFS)
}
