package handlers

import (
	"errors"
	"net/http"

	"github.com/pribylovaa/go-blog-auth/internal/http/response"
	"github.com/pribylovaa/go-blog-auth/internal/service"
)

// Register — POST /registration.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("email", "firstName", "lastName", "password"))
	if !ok || !passwordsFit(w, r, in, "password") {
		return
	}

	sess, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:     in["email"],
		Password:  in["password"],
		FirstName: in["firstName"],
		LastName:  in["lastName"],
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			response.InvalidData(w, r, []string{"email"})
			return
		}

		h.fail(w, r, err)
		return
	}

	response.OK(w, r, viewSession(sess))
}

// Login — POST /login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("email", "password"))
	if !ok {
		return
	}

	sess, err := h.svc.Login(r.Context(), in["email"], in["password"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, viewSession(sess))
}

// Refresh — POST /refresh-tokens.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("refreshToken"))
	if !ok {
		return
	}

	sess, err := h.svc.Refresh(r.Context(), in["refreshToken"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, viewSession(sess))
}

// Logout — POST /logout (текущее устройство).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("refreshToken"))
	if !ok {
		return
	}

	if err := h.svc.Logout(r.Context(), identity(r).UserID, in["refreshToken"]); err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}

// LogoutAll — GET /logout/all.
func (h *Handlers) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.LogoutAll(r.Context(), identity(r).UserID); err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}

// ChangePassword — PATCH /change-password.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("newPassword", "oldPassword"))
	if !ok || !passwordsFit(w, r, in, "newPassword") {
		return
	}

	sess, err := h.svc.ChangePassword(r.Context(), identity(r).User, in["oldPassword"], in["newPassword"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, map[string]tokensView{
		"tokens": viewSession(sess).Tokens,
	})
}
