package controllers

import (
	"net/http"
	"strconv"

	"postboard/app/middleware"
	"postboard/app/models"
	"postboard/app/services"

	"github.com/gorilla/mux"
)

// PostController handles HTTP requests for posts
type PostController struct {
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Index handles GET /posts?page=N
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	result, err := pc.postService.ListPosts(r.Context(), page)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// Search handles GET /posts/search?searchQuery=&tags=
func (pc *PostController) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	posts, err := pc.postService.SearchPosts(r.Context(), query.Get("searchQuery"), query.Get("tags"))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"data": posts})
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.postService.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Update handles editing an existing post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	var req models.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	post, err := pc.postService.UpdatePost(ctx, middleware.UserIDFromContext(ctx), mux.Vars(r)["id"], req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := pc.postService.DeletePost(ctx, middleware.UserIDFromContext(ctx), mux.Vars(r)["id"]); err != nil {
		sendError(w, r, err)
		return
	}
	sendMessage(w, http.StatusOK, "Post deleted successfully")
}

// Like toggles the caller's like on a post
func (pc *PostController) Like(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post, err := pc.postService.LikePost(ctx, middleware.UserIDFromContext(ctx), mux.Vars(r)["id"])
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Comment appends a comment to a post
func (pc *PostController) Comment(w http.ResponseWriter, r *http.Request) {
	var req models.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	post, err := pc.postService.CommentPost(ctx, middleware.UserIDFromContext(ctx), mux.Vars(r)["id"], req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}
