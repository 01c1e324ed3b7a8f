package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"postboard/app/middleware"
	"postboard/app/models"
	"postboard/app/repositories/mock"
	"postboard/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// idIssuer hands out the user id as the token, matching stubTokens.
type idIssuer struct{}

func (idIssuer) Issue(user *models.User) (string, error) {
	return user.ID.Hex(), nil
}

func setupTestUserController(t *testing.T) *mux.Router {
	t.Helper()
	userService := services.NewUserService(mock.NewUserRepository(), idIssuer{}, bcrypt.MinCost)
	controller := NewUserController(userService)

	router := mux.NewRouter()
	protected := middleware.Authenticate(stubTokens{})
	router.HandleFunc("/user/signup", controller.SignUp).Methods("POST")
	router.HandleFunc("/user/signin", controller.SignIn).Methods("POST")
	router.Handle("/user/profile", protected(http.HandlerFunc(controller.Profile))).Methods("GET")
	router.Handle("/user/profile", protected(http.HandlerFunc(controller.UpdateProfile))).Methods("PATCH")
	return router
}

type authResponse struct {
	Result  map[string]interface{} `json:"result"`
	Token   string                 `json:"token"`
	Message string                 `json:"message"`
}

func decodeAuth(t *testing.T, body []byte) authResponse {
	t.Helper()
	var resp authResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestUserController(t *testing.T) {
	router := setupTestUserController(t)
	signup := `{"email":"jane@example.com","password":"secret1","confirmPassword":"secret1","firstName":"Jane","lastName":"Doe"}`
	var token string

	t.Run("sign up", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/user/signup", "", signup)
		require.Equal(t, http.StatusCreated, w.Code)

		resp := decodeAuth(t, w.Body.Bytes())
		assert.Equal(t, "jane@example.com", resp.Result["email"])
		assert.Equal(t, "Jane Doe", resp.Result["name"])
		assert.NotContains(t, resp.Result, "password")
		assert.NotContains(t, w.Body.String(), "PasswordHash")
		assert.Equal(t, resp.Result["_id"], resp.Token)
		token = resp.Token
	})

	t.Run("sign up twice", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/user/signup", "", signup)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "User already exists", decodeMessage(t, w))
	})

	t.Run("sign up with bad email", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/user/signup", "", `{"email":"nope","password":"secret1","firstName":"J","lastName":"D"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("sign in", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/user/signin", "", `{"email":"jane@example.com","password":"secret1"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, token, decodeAuth(t, w.Body.Bytes()).Token)
	})

	t.Run("sign in with wrong password", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/user/signin", "", `{"email":"jane@example.com","password":"wrong12"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid credentials", decodeMessage(t, w))
	})

	t.Run("sign in unknown user", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/user/signin", "", `{"email":"bob@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("profile", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/user/profile", token, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Jane Doe", decodeAuth(t, w.Body.Bytes()).Result["name"])

		w = doRequest(router, http.MethodGet, "/user/profile", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("update profile", func(t *testing.T) {
		w := doRequest(router, http.MethodPatch, "/user/profile", token, `{"firstName":"Janet","lastName":"Smith"}`)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeAuth(t, w.Body.Bytes())
		assert.Equal(t, "Janet Smith", resp.Result["name"])
		assert.Equal(t, "Profile updated successfully", resp.Message)
	})
}
