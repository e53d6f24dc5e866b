// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - PropertyStore: Property writes and batch reads (internal/services/interfaces.go)
//   - CatalogStore: Amenity and category lookup and links (internal/services/interfaces.go)
//   - OwnerStore: Owner management (internal/services/interfaces.go)
//
// All three are implemented by repositories under internal/database/. Property
// reads go through the generic association loader (internal/loader), which
// fetches the base rows and every bag relation inside one read transaction.
//
// ## Index Synchronization Interfaces
//
//   - IndexNotifier: Receives committed changes (internal/services/interfaces.go)
//   - DocumentSource: Re-reads a property as a search document (internal/indexsync)
//   - Index: Document writes (internal/indexsync)
//   - Retrier: Durable retry of failed ids (internal/indexsync, backlite in internal/tasks)
//   - Invalidator: Search cache invalidation (internal/indexsync, Redis in internal/search)
//
// The coordinator never blocks a writer on index I/O. Operations for the same
// property id are applied in notification order.
//
// ## Search Interfaces
//
//   - Searcher: Query-string search (internal/services/interfaces.go)
//   - search.Index: Document queries (internal/search)
//
// ## HTTP Interfaces
//
// Each controller declares the slice of the service layer it needs in
// internal/http/stores.go. The task endpoints use TaskQueue (internal/http/tasks.go).
//
// # Adding a New Association
//
// To load another many-to-many relation with properties:
//
//  1. Add the entity and the gorm many2many tag in internal/entities/
//
//  2. Describe the bag in internal/database/properties/:
//
//     func ViewsSpec() loader.Bag[entities.Property, entities.View] {
//     return loader.ManyToMany(...)
//     }
//
//  3. Append it to Repository.specs()
//
//  4. Extend searchindex.FromProperty if the relation is searchable
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
