package httpapi

import (
	"net/http"

	"github.com/betinha/rental-core/internal/service"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	token, u, err := h.svc.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": toUser(u)})
}

// Tokens are stateless; the client just drops its copy.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := service.UserIDFrom(r.Context())
	u, err := h.svc.Auth.Me(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(u))
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var in changePasswordRequest
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	userID, _ := service.UserIDFrom(r.Context())
	if err := h.svc.Auth.ChangePassword(r.Context(), userID, in.CurrentPassword, in.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK)
}
