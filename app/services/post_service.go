package services

import (
	"context"

	"postboard/app/models"
	"postboard/app/repositories"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageSize is the fixed number of posts per listing page.
const PageSize = 8

// PostService handles business logic for posts
type PostService struct {
	posts repositories.PostRepository
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository) *PostService {
	return &PostService{posts: posts}
}

// GetPost retrieves a post by its hex id. Malformed and unknown ids are both
// reported as ErrNotFound.
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, oid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, postNotFound(id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get post %s", id)
	}
	return post, nil
}

// ListPosts returns one page of posts, newest first. Pages are 1-indexed and
// anything below 1 is treated as the first page.
func (s *PostService) ListPosts(ctx context.Context, page int) (*models.PostPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count posts")
	}

	posts, err := s.posts.List(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list posts")
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	return &models.PostPage{
		Data:          posts,
		CurrentPage:   page,
		NumberOfPages: (total + PageSize - 1) / PageSize,
	}, nil
}

// SearchPosts finds posts whose title contains searchQuery or whose tags
// overlap the comma-separated tags.
func (s *PostService) SearchPosts(ctx context.Context, searchQuery, tags string) ([]*models.Post, error) {
	posts, err := s.posts.Search(ctx, models.ParsePostQuery(searchQuery, tags))
	if err != nil {
		return nil, errors.Wrap(err, "failed to search posts")
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

// CreatePost validates req and stores a new post owned by creatorID.
func (s *PostService) CreatePost(ctx context.Context, creatorID string, req models.PostRequest) (*models.Post, error) {
	if creatorID == "" {
		return nil, unauthenticated()
	}
	if err := models.Validate(req); err != nil {
		return nil, invalidInput(err)
	}

	post := &models.Post{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Creator: creatorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(err, "failed to create post")
		}
		return nil, newError(ErrConflict, err, "Could not create post")
	}
	return post, nil
}

// UpdatePost replaces the title, content and tags of a post. Only the
// creator may update it.
func (s *PostService) UpdatePost(ctx context.Context, callerID, id string, req models.PostRequest) (*models.Post, error) {
	oid, err := parsePostID(id)
	if err != nil {
		return nil, err
	}
	if callerID == "" {
		return nil, unauthenticated()
	}
	if err := models.Validate(req); err != nil {
		return nil, invalidInput(err)
	}

	return s.modify(ctx, oid, func(post *models.Post) error {
		if !post.IsOwnedBy(callerID) {
			return newError(ErrForbidden, nil, "Only the creator can update this post")
		}
		post.Title = req.Title
		post.Content = req.Content
		post.Tags = req.Tags
		return nil
	})
}

// DeletePost removes a post owned by callerID. Deleting a post that does not
// exist succeeds.
func (s *PostService) DeletePost(ctx context.Context, callerID, id string) error {
	oid, err := parsePostID(id)
	if err != nil {
		return err
	}
	if callerID == "" {
		return unauthenticated()
	}

	post, err := s.posts.GetByID(ctx, oid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to get post %s", id)
	}
	if !post.IsOwnedBy(callerID) {
		return newError(ErrForbidden, nil, "Only the creator can delete this post")
	}

	if err := s.posts.Delete(ctx, oid); err != nil {
		return errors.Wrapf(err, "failed to delete post %s", id)
	}
	return nil
}

// LikePost toggles callerID in the post's likes.
func (s *PostService) LikePost(ctx context.Context, callerID, id string) (*models.Post, error) {
	if callerID == "" {
		return nil, unauthenticated()
	}
	oid, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	return s.modify(ctx, oid, func(post *models.Post) error {
		post.ToggleLike(callerID)
		return nil
	})
}

// CommentPost appends a comment to the post.
func (s *PostService) CommentPost(ctx context.Context, callerID, id string, req models.CommentRequest) (*models.Post, error) {
	if callerID == "" {
		return nil, unauthenticated()
	}
	oid, err := parsePostID(id)
	if err != nil {
		return nil, err
	}
	if err := models.Validate(req); err != nil {
		return nil, invalidInput(err)
	}

	return s.modify(ctx, oid, func(post *models.Post) error {
		if err := post.AddComment(req.Value); err != nil {
			return invalidInput(err)
		}
		return nil
	})
}

// modify runs fn through the repository's conflict-checked update and maps
// the store errors.
func (s *PostService) modify(ctx context.Context, id primitive.ObjectID, fn func(post *models.Post) error) (*models.Post, error) {
	post, err := s.posts.Modify(ctx, id, fn)
	if err == nil {
		return post, nil
	}

	var svcErr *Error
	switch {
	case errors.As(err, &svcErr):
		return nil, svcErr
	case errors.Is(err, repositories.ErrNotFound):
		return nil, postNotFound(id.Hex())
	case errors.Is(err, repositories.ErrWriteConflict):
		return nil, newError(ErrConflict, err, "Post was modified concurrently, try again")
	default:
		return nil, errors.Wrapf(err, "failed to update post %s", id.Hex())
	}
}

func parsePostID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, postNotFound(id)
	}
	return oid, nil
}
