package repositories

import (
	"context"

	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	post.BeforeCreate()

	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(post.ID)
		if _, err := txn.Get(key); err == nil {
			return ErrDuplicate
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = getPost(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// List retrieves a page of posts, newest first. Object ids sort by creation
// time, so a reverse scan over the post keys yields recency order.
func (r *BadgerPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(PostKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		count := 0
		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if count < offset {
				count++
				continue
			}
			if count >= offset+limit {
				break
			}

			post, err := decodePost(it.Item())
			if err != nil {
				return err
			}
			posts = append(posts, post)
			count++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of stored posts using a key-only scan.
func (r *BadgerPostRepository) Count(ctx context.Context) (int, error) {
	total := 0
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(PostKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			total++
		}
		return nil
	})
	return total, err
}

// Search scans every post and keeps the ones matching the query, oldest first.
func (r *BadgerPostRepository) Search(ctx context.Context, query models.PostQuery) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(PostKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			post, err := decodePost(it.Item())
			if err != nil {
				return err
			}
			if query.Matches(post) {
				posts = append(posts, post)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Modify runs fn inside a read-write transaction. Badger aborts the commit
// with ErrConflict when another transaction wrote the post after we read it,
// in which case the whole read-modify-write is retried.
func (r *BadgerPostRepository) Modify(ctx context.Context, id primitive.ObjectID, fn func(post *models.Post) error) (*models.Post, error) {
	for attempt := 0; attempt < maxModifyAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var updated *models.Post
		err := r.db.Update(func(txn *badger.Txn) error {
			post, err := getPost(txn, id)
			if err != nil {
				return err
			}
			if err := fn(post); err != nil {
				return err
			}
			post.ID = id
			post.Revision++
			post.Normalize()

			data, err := marshalEntity(post)
			if err != nil {
				return err
			}
			updated = post
			return txn.Set(postKey(id), data)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrWriteConflict
}

// Delete deletes a post by ID
func (r *BadgerPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(postKey(id))
	})
}

func getPost(txn *badger.Txn, id primitive.ObjectID) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodePost(item)
}

func decodePost(item *badger.Item) (*models.Post, error) {
	var post models.Post
	err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode post %s", item.Key())
	}
	post.Normalize()
	return &post, nil
}
