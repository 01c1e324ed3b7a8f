package repositories

import (
	"context"

	"postboard/app/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// List returns posts newest first.
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, query models.PostQuery) ([]*models.Post, error)
	// Modify loads a post, applies fn and writes the result back. The write
	// fails with ErrWriteConflict if the post changed underneath after every
	// retry. An error from fn aborts the write and is returned unchanged.
	Modify(ctx context.Context, id primitive.ObjectID, fn func(post *models.Post) error) (*models.Post, error)
	// Delete removes a post. Deleting a missing post is not an error.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create stores a new user, failing with ErrDuplicate if the email is taken.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
