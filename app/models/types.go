package models

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Post is a text post with its likes and comments embedded.
type Post struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Title     string             `json:"title" bson:"title"`
	Content   string             `json:"content" bson:"content"`
	Tags      []string           `json:"tags" bson:"tags"`
	Creator   string             `json:"creator" bson:"creator"`
	Likes     []string           `json:"likes" bson:"likes"`
	Comments  []string           `json:"comments" bson:"comments"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	Revision  int64              `json:"-" bson:"revision"`
}

// User is a registered account. The password hash is persisted but never rendered.
type User struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"`
	Name         string             `json:"name" bson:"name"`
}

// PostPage is one page of the post listing.
type PostPage struct {
	Data          []*Post `json:"data"`
	CurrentPage   int     `json:"currentPage"`
	NumberOfPages int     `json:"numberOfPages"`
}
