package db

import (
	"log"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/vibeloghq/vibelog/internal/export"
	"github.com/vibeloghq/vibelog/internal/journal"
	"github.com/vibeloghq/vibelog/internal/models"
)

// Connect opens the configured database and runs migrations.
// driver "mysql" takes a full DSN; anything else ("sqlite", "local")
// opens a sqlite file, which local mode still uses for users and
// export jobs.
func Connect(driver, dsn string) *gorm.DB {
	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case "mysql":
		gdb, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		gdb, err = gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("db open driver=%s err=%v", driver, err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&journal.Session{},
		&journal.Idea{},
		&journal.Blocker{},
		&export.Job{},
	); err != nil {
		log.Fatalf("db automigrate err=%v", err)
	}
	return gdb
}
