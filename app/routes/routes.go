package routes

import (
	"net/http"

	"postboard/app/controllers"
	"postboard/app/middleware"
	"postboard/app/services"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Options holds everything the router needs.
type Options struct {
	Posts        *services.PostService
	Users        *services.UserService
	Tokens       middleware.TokenResolver
	Logger       logrus.FieldLogger
	CORSOrigins  []string
	MaxBodyBytes int64
}

// SetupRoutes defines the application's routes and returns the handler with
// the global middleware applied.
func SetupRoutes(opts Options) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(controllers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(controllers.MethodNotAllowed)

	postController := controllers.NewPostController(opts.Posts)
	userController := controllers.NewUserController(opts.Users)
	authenticated := func(h http.HandlerFunc) http.Handler {
		return middleware.Authenticate(opts.Tokens)(h)
	}

	// Posts endpoints; /search must be registered before /{id}
	posts := router.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("/search", postController.Search).Methods("GET")
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.Handle("", authenticated(postController.Create)).Methods("POST")
	posts.HandleFunc("/{id}", postController.Show).Methods("GET")
	posts.Handle("/{id}", authenticated(postController.Update)).Methods("PATCH")
	posts.Handle("/{id}", authenticated(postController.Delete)).Methods("DELETE")
	posts.Handle("/{id}/likePost", authenticated(postController.Like)).Methods("PATCH")
	posts.Handle("/{id}/commentPost", authenticated(postController.Comment)).Methods("POST")
	methodNotAllowed(posts, "/search", "", "/{id}", "/{id}/likePost", "/{id}/commentPost")

	// User endpoints
	user := router.PathPrefix("/user").Subrouter()
	user.HandleFunc("/signin", userController.SignIn).Methods("POST")
	user.HandleFunc("/signup", userController.SignUp).Methods("POST")
	user.Handle("/profile", authenticated(userController.Profile)).Methods("GET")
	user.Handle("/profile", authenticated(userController.UpdateProfile)).Methods("PATCH")
	methodNotAllowed(user, "/signin", "/signup", "/profile")

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	var handler http.Handler = router
	handler = middleware.MaxBody(opts.MaxBodyBytes)(handler)
	handler = middleware.ContentTypeJSON(handler)
	handler = middleware.Recoverer(handler)
	handler = middleware.Logger(logger)(handler)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(handler)

	return handler
}

// methodNotAllowed registers a method-less route per path, after the real
// ones, so a known path hit with an unsupported method answers 405 no matter
// how mux resolves method mismatches across sibling routes.
func methodNotAllowed(router *mux.Router, paths ...string) {
	for _, path := range paths {
		router.HandleFunc(path, controllers.MethodNotAllowed)
	}
}
