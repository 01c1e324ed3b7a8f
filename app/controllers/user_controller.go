package controllers

import (
	"net/http"

	"postboard/app/middleware"
	"postboard/app/models"
	"postboard/app/services"
)

// UserController handles sign-up, sign-in and profile requests
type UserController struct {
	userService *services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

// SignUp handles POST /user/signup
func (uc *UserController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := uc.userService.SignUp(r.Context(), req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, result)
}

// SignIn handles POST /user/signin
func (uc *UserController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := uc.userService.SignIn(r.Context(), req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// Profile handles GET /user/profile
func (uc *UserController) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := uc.userService.Profile(ctx, middleware.UserIDFromContext(ctx))
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"result": user})
}

// UpdateProfile handles PATCH /user/profile
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	user, err := uc.userService.UpdateProfile(ctx, middleware.UserIDFromContext(ctx), req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"result":  user,
		"message": "Profile updated successfully",
	})
}
