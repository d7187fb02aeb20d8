// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain types to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain types should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain types and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - option.go: named store options (app ID, tracking flag)
// - order.go: orders, line items and order meta
// - product.go: catalog products
// - user.go: store accounts used for identify calls
package models
