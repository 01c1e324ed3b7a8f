package mock

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"postboard/app/models"
	"postboard/app/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostRepository is an in-memory repositories.PostRepository. Stored posts
// are copied on the way in and out so callers cannot mutate them in place.
type PostRepository struct {
	posts map[primitive.ObjectID]*models.Post
	mutex sync.RWMutex

	// Err, when set, is returned by every method.
	Err error
}

// UserRepository is an in-memory repositories.UserRepository.
type UserRepository struct {
	users map[primitive.ObjectID]*models.User
	mutex sync.RWMutex

	// Err, when set, is returned by every method.
	Err error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[primitive.ObjectID]*models.Post)}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]*models.User)}
}

// Clear removes every stored post.
func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[primitive.ObjectID]*models.Post)
}

// PostRepository implementation
func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if m.Err != nil {
		return m.Err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if _, exists := m.posts[post.ID]; exists {
		return repositories.ErrDuplicate
	}
	post.BeforeCreate()
	m.posts[post.ID] = clonePost(post)
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return clonePost(post), nil
}

func (m *PostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	posts := m.sorted()
	// newest first
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
	if offset >= len(posts) {
		return []*models.Post{}, nil
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end], nil
}

func (m *PostRepository) Count(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.posts), nil
}

func (m *PostRepository) Search(ctx context.Context, query models.PostQuery) ([]*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	matches := []*models.Post{}
	for _, post := range m.sorted() {
		if query.Matches(post) {
			matches = append(matches, post)
		}
	}
	return matches, nil
}

func (m *PostRepository) Modify(ctx context.Context, id primitive.ObjectID, fn func(post *models.Post) error) (*models.Post, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stored, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	post := clonePost(stored)
	if err := fn(post); err != nil {
		return nil, err
	}
	post.ID = id
	post.Revision++
	post.Normalize()
	m.posts[id] = clonePost(post)
	return post, nil
}

func (m *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if m.Err != nil {
		return m.Err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.posts, id)
	return nil
}

// sorted returns copies of all posts, oldest first.
func (m *PostRepository) sorted() []*models.Post {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := make([]*models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		posts = append(posts, clonePost(post))
	}
	sort.Slice(posts, func(i, j int) bool {
		return bytes.Compare(posts[i].ID[:], posts[j].ID[:]) < 0
	})
	return posts
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.Likes = append([]string{}, p.Likes...)
	c.Comments = append([]string{}, p.Comments...)
	return &c
}

// UserRepository implementation
func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	if m.Err != nil {
		return m.Err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	user.Email = models.NormalizeEmail(user.Email)
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	email = models.NormalizeEmail(email)
	for _, user := range m.users {
		if user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) Update(ctx context.Context, user *models.User) error {
	if m.Err != nil {
		return m.Err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.users[user.ID]; !exists {
		return repositories.ErrNotFound
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

// Count returns the number of stored users.
func (m *UserRepository) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.users)
}
