package repositories

import (
	"context"

	"github.com/SAP-F-2025/course-service/internal/models"
)

type UserFilters struct {
	Query string
	// Role narrows the returned page; Casdoor has no server-side role filter
	Role   *models.UserRole
	Limit  int
	Offset int
}

// UserRepository reads accounts owned by the identity provider. The course
// service never writes users; roles and admin tiers come from Casdoor.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, filters UserFilters) ([]*models.User, int64, error)

	// Enrollment and teaching checks
	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
