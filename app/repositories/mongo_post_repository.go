package repositories

import (
	"context"

	"postboard/app/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostsCollection is the document store collection holding posts.
const PostsCollection = "posts"

// MongoPostRepository implements PostRepository on a MongoDB collection.
type MongoPostRepository struct {
	coll *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{coll: db.Collection(PostsCollection)}
}

func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	post.BeforeCreate()

	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "insert post")
	}
	return nil
}

func (r *MongoPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find post")
	}
	post.Normalize()
	return &post, nil
}

func (r *MongoPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{}, opts)
}

func (r *MongoPostRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "count posts")
	}
	return int(n), nil
}

// Search matches the title with a case-insensitive literal regex or any
// overlap with the requested tags.
func (r *MongoPostRepository) Search(ctx context.Context, query models.PostQuery) ([]*models.Post, error) {
	tags := query.Tags
	if tags == nil {
		tags = []string{}
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": query.TitleRegex()},
		bson.M{"tags": bson.M{"$in": tags}},
	}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// Modify replaces the document only if its revision is still the one that
// was read, retrying from a fresh read otherwise.
func (r *MongoPostRepository) Modify(ctx context.Context, id primitive.ObjectID, fn func(post *models.Post) error) (*models.Post, error) {
	for attempt := 0; attempt < maxModifyAttempts; attempt++ {
		post, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(post); err != nil {
			return nil, err
		}

		read := post.Revision
		post.ID = id
		post.Revision = read + 1
		post.Normalize()

		res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": id, "revision": read}, post)
		if err != nil {
			return nil, errors.Wrap(err, "replace post")
		}
		if res.MatchedCount == 1 {
			return post, nil
		}
	}
	return nil, ErrWriteConflict
}

func (r *MongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(err, "delete post")
	}
	return nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*models.Post, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find posts")
	}

	posts := []*models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, errors.Wrap(err, "decode posts")
	}
	for _, post := range posts {
		post.Normalize()
	}
	return posts, nil
}
