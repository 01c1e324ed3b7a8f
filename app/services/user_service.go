package services

import (
	"context"
	"strings"

	"postboard/app/models"
	"postboard/app/repositories"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Result *models.User `json:"result"`
	Token  string       `json:"token"`
}

// UserService handles registration, sign-in and profiles
type UserService struct {
	users      repositories.UserRepository
	tokens     TokenIssuer
	bcryptCost int
}

// NewUserService creates a new UserService hashing passwords at bcryptCost.
func NewUserService(users repositories.UserRepository, tokens TokenIssuer, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// SignUp registers a new user and returns it with a fresh token.
func (s *UserService) SignUp(ctx context.Context, req models.SignUpRequest) (*AuthResult, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalidInput(err)
	}

	email := models.NormalizeEmail(req.Email)
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, userExists(nil)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, errors.Wrap(err, "failed to look up user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         models.DisplayName(req.FirstName, req.LastName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// the store catches a concurrent sign-up with the same email
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, userExists(err)
		}
		return nil, errors.Wrap(err, "failed to create user")
	}

	return s.authenticate(user)
}

// SignIn checks the password against the stored hash.
func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (*AuthResult, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalidInput(err)
	}

	user, err := s.users.GetByEmail(ctx, models.NormalizeEmail(req.Email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, userNotFound()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, newError(ErrInvalidCredentials, nil, "Invalid credentials")
	}

	return s.authenticate(user)
}

// Profile returns the caller's user record.
func (s *UserService) Profile(ctx context.Context, callerID string) (*models.User, error) {
	oid, err := parseUserID(callerID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, oid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, userNotFound()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return user, nil
}

// UpdateProfile overwrites the caller's display name.
func (s *UserService) UpdateProfile(ctx context.Context, callerID string, req models.ProfileRequest) (*models.User, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalidInput(err)
	}

	user, err := s.Profile(ctx, callerID)
	if err != nil {
		return nil, err
	}

	user.Name = models.DisplayName(req.FirstName, req.LastName)
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, userNotFound()
		}
		return nil, errors.Wrap(err, "failed to update user")
	}
	return user, nil
}

func (s *UserService) authenticate(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}
	return &AuthResult{Result: user, Token: token}, nil
}

func userExists(cause error) error {
	return newError(ErrConflict, cause, "User already exists")
}

// parseUserID accepts only first-party ids. Identities from third-party
// tokens have no user record.
func parseUserID(id string) (primitive.ObjectID, error) {
	if strings.TrimSpace(id) == "" {
		return primitive.NilObjectID, unauthenticated()
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, userNotFound()
	}
	return oid, nil
}
