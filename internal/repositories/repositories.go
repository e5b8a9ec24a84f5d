// Package repositories provides GORM-backed access to the durable
// entity store. Reads go to the read-only replica, writes to the
// primary. All failures are wrapped into the domain error taxonomy.
package repositories

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/krupapatkar/appsolution-admin/internal/errs"
)

// readErr maps a read failure onto the domain taxonomy.
func readErr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(errs.ErrNotFound, msg)
	}
	return errors.Wrap(err, msg)
}

// writeErr maps a write failure onto the domain taxonomy.
func writeErr(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(errs.ErrConflict, msg)
	}
	return errors.Wrap(err, msg)
}
