package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateUser means the username or email is already registered.
	ErrDuplicateUser = errors.New("username or email already exists")
	// ErrDuplicateMembership means the song is already in the playlist.
	ErrDuplicateMembership = errors.New("song already in playlist")
)

// isDuplicateKey reports whether err is a unique-constraint violation. The
// raw driver surfaces MySQL error 1062; GORM may translate it first.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
