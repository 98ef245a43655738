package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lsjscarlett/store-locator/internal/database"
	"github.com/lsjscarlett/store-locator/internal/models"
	"github.com/lsjscarlett/store-locator/pkg/auth"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrRoleNotFound     = errors.New("role not found")
	ErrSelfDeactivation = errors.New("cannot deactivate your own account")
)

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	RoleID   *uint  `json:"role_id"`
}

type UpdateUserRequest struct {
	RoleID   *uint `json:"role_id"`
	IsActive *bool `json:"is_active"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
	RoleID   *uint  `json:"role_id"`
	Role     string `json:"role"`
}

// NewUserResponse builds the public view of u. The role must be preloaded
// for Role to be set.
func NewUserResponse(u *models.User) *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		IsActive: u.IsActive,
		RoleID:   u.RoleID,
		Role:     u.RoleName(),
	}
}

// GetByID retrieves a user by ID with its role
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns every user ordered by id.
func (s *UserService) List(ctx context.Context) ([]UserResponse, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Role").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *NewUserResponse(&users[i]))
	}
	return out, nil
}

// Create registers a user. Without a role id the user becomes a viewer.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	roleID, err := s.resolveRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		RoleID:       &roleID,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, user.ID)
}

// Update changes a user's role or active flag. An admin may not deactivate
// their own account.
func (s *UserService) Update(ctx context.Context, actorID, id uint, req UpdateUserRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.IsActive != nil && !*req.IsActive && actorID == id {
		return nil, ErrSelfDeactivation
	}

	updates := map[string]interface{}{}
	if req.RoleID != nil {
		roleID, err := s.resolveRole(ctx, req.RoleID)
		if err != nil {
			return nil, err
		}
		updates["role_id"] = roleID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

func (s *UserService) resolveRole(ctx context.Context, roleID *uint) (uint, error) {
	var role models.Role
	query := s.db.WithContext(ctx)
	var err error
	if roleID == nil {
		err = query.Where("name = ?", models.RoleViewer).Take(&role).Error
	} else {
		err = query.Take(&role, *roleID).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrRoleNotFound
	}
	if err != nil {
		return 0, err
	}
	return role.ID, nil
}
