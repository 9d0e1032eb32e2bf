package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"helmet-store/models"
	"helmet-store/store"
	"helmet-store/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	passwordHashCost  = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService registers and authenticates users and issues bearer tokens
type AuthService struct {
	users  store.UserStore
	tokens *utils.TokenIssuer
	log    *zap.Logger
	now    func() time.Time
	cost   int

	// compared against when the email is unknown so both failure paths cost a hash
	dummyHash []byte
}

func NewAuthService(users store.UserStore, tokens *utils.TokenIssuer, log *zap.Logger) *AuthService {
	return newAuthService(users, tokens, log, passwordHashCost)
}

func newAuthService(users store.UserStore, tokens *utils.TokenIssuer, log *zap.Logger, cost int) *AuthService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &AuthService{users: users, tokens: tokens, log: log, now: time.Now, cost: cost, dummyHash: dummy}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with the "user" role. A taken email is reported as a
// conflict before the password is looked at.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, utils.NewValidationError("Email and password are required")
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, utils.NewConflictError("Email already used")
	case !errors.Is(err, store.ErrNotFound):
		return nil, utils.NewInternalError("Registration failed", err)
	}

	if in.Password == "" {
		return nil, utils.NewValidationError("Email and password are required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, utils.NewValidationError("Password must be at least 6 characters")
	}
	if !emailPattern.MatchString(email) {
		return nil, utils.NewValidationError("Invalid email address")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, utils.NewInternalError("Registration failed", err)
	}

	now := s.now()
	user := &models.User{
		Email:     email,
		Password:  string(hashed),
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.NewConflictError("Email already used")
		}
		return nil, utils.NewInternalError("Registration failed", err)
	}
	s.log.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return s.issue(user, "Registration failed")
}

// Login checks credentials. Unknown emails and wrong passwords produce the
// same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.NewValidationError("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, utils.NewAuthError("Invalid credentials")
	}
	if err != nil {
		return nil, utils.NewInternalError("Login failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, utils.NewAuthError("Invalid credentials")
	}
	return s.issue(user, "Login failed")
}

func (s *AuthService) issue(user *models.User, failure string) (*AuthResult, error) {
	token, err := s.tokens.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, utils.NewInternalError(failure, err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) Me(ctx context.Context, id string) (*models.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("Failed to fetch user", err)
	}
	public := user.Public()
	return &public, nil
}

// UpdateProfile applies a partial update of name, phone and address
func (s *AuthService) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (*models.PublicUser, error) {
	if id == "" {
		return nil, utils.NewValidationError("Missing user id")
	}
	if update.Empty() {
		return s.Me(ctx, id)
	}
	user, err := s.users.UpdateProfile(ctx, id, update, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("Failed to update profile", err)
	}
	public := user.Public()
	return &public, nil
}

// Promote grants the admin role to the user with the given email
func (s *AuthService) Promote(ctx context.Context, email string) (*models.PublicUser, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, utils.NewValidationError("Missing email")
	}
	user, err := s.users.SetRole(ctx, email, models.RoleAdmin, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("Failed to promote user", err)
	}
	s.log.Warn("user promoted to admin", zap.String("user_id", user.ID.Hex()))
	public := user.Public()
	return &public, nil
}
