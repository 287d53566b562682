// Package migration creates the schema on startup. Postgres runs the
// versioned SQL files; the other dialects fall back to gorm AutoMigrate of
// the same models.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
	containerdomain "github.com/smallbiznis/birracraft/internal/container/domain"
	customerdomain "github.com/smallbiznis/birracraft/internal/customer/domain"
	flavourdomain "github.com/smallbiznis/birracraft/internal/flavour/domain"
	orderdomain "github.com/smallbiznis/birracraft/internal/order/domain"
	paymentdomain "github.com/smallbiznis/birracraft/internal/payment/domain"
	productdomain "github.com/smallbiznis/birracraft/internal/product/domain"
	quotadomain "github.com/smallbiznis/birracraft/internal/quota/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Models lists every table owned by the application, parents first.
func Models() []any {
	return []any{
		&customerdomain.Customer{},
		&containerdomain.Container{},
		&flavourdomain.Flavour{},
		&productdomain.Product{},
		&orderdomain.Order{},
		&orderdomain.OrderProduct{},
		&paymentdomain.Payment{},
		&paymentdomain.Sequence{},
		&quotadomain.Quota{},
		&authdomain.User{},
		&authdomain.Session{},
	}
}

// AutoMigrate creates the schema through gorm and seeds the transaction
// sequence from any payments already present.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return seedTransactionSequence(db)
}

func seedTransactionSequence(db *gorm.DB) error {
	var current sql.NullInt64
	row := db.Model(&paymentdomain.Payment{}).Select("MAX(transaction_number)").Row()
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("read max transaction: %w", err)
	}
	if !current.Valid {
		return nil
	}
	seq := paymentdomain.Sequence{Name: paymentdomain.TransactionSequence, Value: current.Int64}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error
}
