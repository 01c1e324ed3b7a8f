package repositories

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("record already exists")
	ErrWriteConflict = errors.New("record was modified concurrently")
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix      = "post:"
	UserKeyPrefix      = "user:"
	UserEmailKeyPrefix = "user_email:"

	// maxModifyAttempts bounds the optimistic read-modify-write loop.
	maxModifyAttempts = 5
)

func postKey(id primitive.ObjectID) []byte {
	return []byte(PostKeyPrefix + id.Hex())
}

func userKey(id primitive.ObjectID) []byte {
	return []byte(UserKeyPrefix + id.Hex())
}

func userEmailKey(email string) []byte {
	return []byte(UserEmailKeyPrefix + email)
}

// marshalEntity encodes an entity as BSON, the same encoding the document
// store uses, so both backends share the model tags.
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := bson.Marshal(entity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal entity")
	}
	return data, nil
}

// unmarshalEntity decodes BSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := bson.Unmarshal(data, entity); err != nil {
		return errors.Wrap(err, "failed to unmarshal entity")
	}
	return nil
}
