package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/rentals/internal/config"
	"github.com/mrlokans/rentals/internal/entities"
)

var defaultAmenities = []entities.Amenity{
	{Code: "wifi", DisplayName: "Wi-Fi"},
	{Code: "kitchen", DisplayName: "Kitchen"},
	{Code: "parking", DisplayName: "Free parking"},
	{Code: "pool", DisplayName: "Pool"},
	{Code: "air_conditioning", DisplayName: "Air conditioning"},
	{Code: "heating", DisplayName: "Heating"},
	{Code: "washer", DisplayName: "Washer"},
	{Code: "tv", DisplayName: "TV"},
	{Code: "workspace", DisplayName: "Dedicated workspace"},
	{Code: "pets", DisplayName: "Pets allowed"},
	{Code: "fireplace", DisplayName: "Fireplace"},
	{Code: "hot_tub", DisplayName: "Hot tub"},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(cfg config.Database) (*Database, error) {
	dialector, where, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database, err := NewWithDB(db)
	if err != nil {
		return nil, err
	}

	log.Printf("Database initialized successfully at %s", where)

	return database, nil
}

// NewWithDB migrates and seeds an already opened connection.
func NewWithDB(db *gorm.DB) (*Database, error) {
	err := db.AutoMigrate(
		&entities.Owner{},
		&entities.Amenity{},
		&entities.Category{},
		&entities.Property{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedAmenities(); err != nil {
		return nil, fmt.Errorf("failed to seed amenities: %w", err)
	}

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedAmenities() error {
	for _, amenity := range defaultAmenities {
		var existing entities.Amenity
		result := d.DB.Where("code = ?", amenity.Code).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&amenity).Error; err != nil {
				return fmt.Errorf("failed to create amenity %s: %w", amenity.Code, err)
			}
			log.Printf("Created amenity: %s", amenity.DisplayName)
		}
	}
	return nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		path := cfg.Path
		if path == "" {
			path = config.DefaultDatabasePath
		}
		return sqlite.Open(path), path, nil
	case config.DriverMySQL:
		dsn := MySQLDSN(cfg)
		return mysql.Open(dsn), cfg.Host + ":" + strconv.Itoa(cfg.Port) + "/" + cfg.Name, nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// MySQLDSN builds the connection string for the MySQL driver.
func MySQLDSN(cfg config.Database) string {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Host + ":" + strconv.Itoa(cfg.Port)
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Ping checks connectivity to the relational store.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
