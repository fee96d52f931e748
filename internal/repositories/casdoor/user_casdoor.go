package casdoor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/course-service/internal/cache"
	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// adminLevelProperty is the Casdoor user property carrying the admin tier
const adminLevelProperty = "admin_level"

type UserCasdoor struct {
	client *casdoorsdk.Client
	cache  *cache.CacheHelper
	exists *cache.CacheHelper
}

func NewUserCasdoor(config CasdoorConfig, redisClient *redis.Client) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	cm := cache.NewCacheManager(redisClient)
	return &UserCasdoor{
		client: client,
		cache:  cm.User,
		exists: cm.Exists,
	}
}

// ===== CONVERSION =====

// ToModel converts a Casdoor user into the service's user model
func ToModel(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	var createdAt, updatedAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}
	if casdoorUser.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, casdoorUser.UpdatedTime)
	}

	user := &models.User{
		ID:            casdoorUser.Id,
		FullName:      casdoorUser.DisplayName,
		Email:         casdoorUser.Email,
		Role:          resolveRole(casdoorUser),
		EmailVerified: casdoorUser.EmailVerified,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	if casdoorUser.Avatar != "" {
		avatar := casdoorUser.Avatar
		user.AvatarURL = &avatar
	}
	if user.Role == models.RoleAdmin {
		user.AdminLevel = MapAdminLevel(casdoorUser.Properties[adminLevelProperty])
	}

	return user
}

// resolveRole picks the primary role; admin wins over everything else
func resolveRole(casdoorUser *casdoorsdk.User) models.UserRole {
	var roles []models.UserRole
	for _, role := range casdoorUser.Roles {
		if role == nil {
			continue
		}
		mapped := MapRole(role.Name)
		if !slices.Contains(roles, mapped) {
			roles = append(roles, mapped)
		}
	}

	if casdoorUser.IsAdmin || slices.Contains(roles, models.RoleAdmin) {
		return models.RoleAdmin
	}
	if len(roles) == 0 {
		return MapRole(casdoorUser.Type)
	}
	return roles[0]
}

// MapRole maps a Casdoor role or user type name onto a platform role
func MapRole(name string) models.UserRole {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "admin", "administrator":
		return models.RoleAdmin
	case "instructor", "teacher", "educator":
		return models.RoleInstructor
	case "analyst", "data analyst", "data_analyst":
		return models.RoleAnalyst
	default:
		return models.RoleStudent
	}
}

// MapAdminLevel defaults to the junior tier
func MapAdminLevel(value string) models.AdminLevel {
	if strings.EqualFold(strings.TrimSpace(value), string(models.AdminSenior)) {
		return models.AdminSenior
	}
	return models.AdminJunior
}

func (u *UserCasdoor) remember(ctx context.Context, user *models.User) {
	_ = u.cache.Set(ctx, "id:"+user.ID, user, cache.UserCacheConfig.TTL)
	if user.Email != "" {
		_ = u.cache.Set(ctx, "email:"+user.Email, user, cache.UserCacheConfig.TTL)
	}
}

// ===== READS =====

func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	var cached models.User
	if err := u.cache.Get(ctx, "id:"+id, &cached); err == nil {
		return &cached, nil
	}

	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}

	user := ToModel(casdoorUser)
	u.remember(ctx, user)
	return user, nil
}

func (u *UserCasdoor) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var cached models.User
	if err := u.cache.Get(ctx, "email:"+email, &cached); err == nil {
		return &cached, nil
	}

	casdoorUser, err := u.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user with email %s: %w", email, repositories.ErrNotFound)
	}

	user := ToModel(casdoorUser)
	u.remember(ctx, user)
	return user, nil
}

// GetByIDs skips users that cannot be resolved
func (u *UserCasdoor) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := u.GetByID(ctx, id)
		if err != nil {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (u *UserCasdoor) ExistsByID(ctx context.Context, id string) (bool, error) {
	key := "user:" + id
	var exists bool
	if err := u.exists.Get(ctx, key, &exists); err == nil {
		return exists, nil
	}

	_, err := u.GetByID(ctx, id)
	switch {
	case err == nil:
		exists = true
	case errors.Is(err, repositories.ErrNotFound):
		exists = false
	default:
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	_ = u.exists.Set(ctx, key, exists, time.Minute)
	return exists, nil
}

func (u *UserCasdoor) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.Role == role, nil
}

// ===== LIST AND SEARCH =====

func (u *UserCasdoor) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	if filters.Limit <= 0 {
		filters.Limit = 10
	}
	if filters.Limit > 100 {
		filters.Limit = 100
	}

	// Casdoor pages are 1-indexed
	page := filters.Offset/filters.Limit + 1

	queryMap := make(map[string]string)
	if filters.Query != "" {
		queryMap["field"] = "email"
		queryMap["value"] = filters.Query
	}

	casdoorUsers, count, err := u.client.GetPaginationUsers(page, filters.Limit, queryMap)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get users from Casdoor: %w", err)
	}

	users := make([]*models.User, 0, len(casdoorUsers))
	for _, casdoorUser := range casdoorUsers {
		user := ToModel(casdoorUser)
		if user == nil {
			continue
		}
		u.remember(ctx, user)
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		users = append(users, user)
	}

	return users, int64(count), nil
}

func (u *UserCasdoor) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	filters.Query = query
	return u.List(ctx, filters)
}
