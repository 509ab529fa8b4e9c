package handler

import (
	"net/http"

	"github.com/impservers/impchat/internal/api"
	"github.com/impservers/impchat/internal/utils"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body api.RegisterRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if _, err := h.account.Register(body.Name, body.Password); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, api.RegisterResponse{Message: "Account created. You can sign in now."})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	token, err := h.account.Login(body.Name, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	http.SetCookie(w, h.accessCookie(token, int(h.cfg.Public.JwtTTL.Seconds())))
	writeJSON(w, api.LoginResponse{Message: "Signed in", AccessToken: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.accessCookie("", -1))
	writeJSON(w, api.LogoutResponse{Message: "Signed out"})
}

func (h *Handler) accessCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    value,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
