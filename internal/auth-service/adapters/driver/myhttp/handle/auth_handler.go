package handle

import (
	"encoding/json"
	"net/http"

	"waste-collect/internal/auth-service/core/domain/dto"
	"waste-collect/internal/auth-service/core/ports"
	"waste-collect/internal/mylogger"
)

type AuthHandler struct {
	authService ports.IAuthService
	log         mylogger.Logger
}

func NewAuthHandler(as ports.IAuthService, log mylogger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: as,
		log:         log,
	}
}

func (ah *AuthHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.RegisterRequestDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		resp, err := ah.authService.Register(r.Context(), req)
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusCreated, resp)
	}
}

func (ah *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.LoginRequestDto{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		resp, err := ah.authService.Login(r.Context(), req)
		if err != nil {
			JsonError(w, statusFor(err), err)
			return
		}

		jsonResponse(w, http.StatusOK, resp)
	}
}
