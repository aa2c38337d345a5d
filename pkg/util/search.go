package util

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search returns a scope matching rows where any of the columns contains q,
// ignoring case. Both sides are folded by the database's LOWER, so what
// counts as the same letter is up to the driver. SQLite only folds ASCII.
// An empty q matches everything.
func Search(q string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		q = strings.TrimSpace(q)
		if q == "" || len(columns) == 0 {
			return db
		}

		pattern := "%" + likeEscaper.Replace(q) + "%"

		conds := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, c := range columns {
			conds[i] = "LOWER(" + c + ") LIKE LOWER(?) ESCAPE '!'"
			args[i] = pattern
		}

		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}
