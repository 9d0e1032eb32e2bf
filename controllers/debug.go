package controllers

import (
	"net/http"

	"helmet-store/services"
	"helmet-store/utils"

	"go.uber.org/zap"
)

// DebugController exposes maintenance hooks guarded by the debug key
type DebugController struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewDebugController(auth *services.AuthService, log *zap.Logger) *DebugController {
	return &DebugController{auth: auth, log: log}
}

type promoteRequest struct {
	Email string `json:"email"`
}

// Promote grants the admin role to the user with the given email. It sits
// behind the debug key, not behind token auth.
func (dc *DebugController) Promote(w http.ResponseWriter, r *http.Request) {
	var req promoteRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.WriteError(w, requestLogger(dc.log, r), err, "Promote failed")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := dc.auth.Promote(ctx, req.Email)
	if err != nil {
		utils.WriteError(w, requestLogger(dc.log, r), err, "Promote failed")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
