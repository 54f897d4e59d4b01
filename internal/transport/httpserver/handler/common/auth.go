package common

import (
	"net/http"

	"tiffin-app-go/internal/transport/httpserver/middleware"
)

type authMeResponse struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, authMeResponse{
		ID:          user.ID,
		PhoneNumber: user.Phone,
	})
}
