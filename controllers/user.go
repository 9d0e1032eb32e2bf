package controllers

import (
	"net/http"

	"helmet-store/models"
	"helmet-store/services"
	"helmet-store/utils"

	"go.uber.org/zap"
)

// UserController handles registration, login and profile requests
type UserController struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewUserController(auth *services.AuthService, log *zap.Logger) *UserController {
	return &UserController{auth: auth, log: log}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.WriteError(w, requestLogger(uc.log, r), err, "Registration failed")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	result, err := uc.auth.Register(ctx, services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		utils.WriteError(w, requestLogger(uc.log, r), err, "Registration failed")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, result)
}

// Login handles user login
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.WriteError(w, requestLogger(uc.log, r), err, "Login failed")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	result, err := uc.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, requestLogger(uc.log, r), err, "Login failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// GetProfile returns the authenticated user
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		utils.WriteError(w, requestLogger(uc.log, r), utils.NewAuthError("Unauthorized"), "")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.auth.Me(ctx, caller.UserID)
	if err != nil {
		utils.WriteError(w, requestLogger(uc.log, r), err, "Failed to fetch profile")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

type profileRequest struct {
	ID      string  `json:"id"`
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateProfile applies a partial profile update. The target defaults to the
// token subject; only admins may edit someone else.
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		utils.WriteError(w, requestLogger(uc.log, r), utils.NewAuthError("Unauthorized"), "")
		return
	}
	var req profileRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.WriteError(w, requestLogger(uc.log, r), err, "Update failed")
		return
	}
	id := firstNonEmpty(req.ID, caller.UserID)
	if id != caller.UserID && !caller.IsAdmin() {
		utils.WriteError(w, requestLogger(uc.log, r), utils.NewForbiddenError("Forbidden"), "")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.auth.UpdateProfile(ctx, id, models.ProfileUpdate{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		utils.WriteError(w, requestLogger(uc.log, r), err, "Update failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
