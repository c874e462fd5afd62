package repository

import (
	"github.com/oasis-cafe/oasis-service/internal/db"
)

// Repositories provides access to all repository instances
type Repositories struct {
	User    *UserRepository
	Catalog *CatalogRepository
	Order   *OrderRepository
}

// NewRepositories creates a new repositories container
func NewRepositories(database *db.Postgres) *Repositories {
	return &Repositories{
		User:    NewUserRepository(database.DB),
		Catalog: NewCatalogRepository(database.DB),
		Order:   NewOrderRepository(database.DB),
	}
}
