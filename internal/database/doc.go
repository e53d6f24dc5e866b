// Package database provides the relational data access layer.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, amenity seeding
//	├── properties/      # Property CRUD, association specs, batch loading
//	├── catalog/         # Amenities and categories, property attachments
//	└── owners/          # Property owners
//
// # Drivers
//
// SQLite is the default. Setting DATABASE_DRIVER=mysql switches to MySQL;
// the DSN is assembled from the DATABASE_* settings by MySQLDSN.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	propertiesRepo := properties.NewRepository(db.DB)
//	catalogRepo := catalog.NewRepository(db.DB)
//
//	props, err := propertiesRepo.GetBatch(ctx, []uint{7, 3, 9})
//	wifi, err := catalogRepo.GetAmenityByCode("wifi")
package database
