package handlers

import (
	"errors"
	"net/http"

	"github.com/pribylovaa/go-blog-auth/internal/http/response"
	"github.com/pribylovaa/go-blog-auth/internal/service"
)

// SendEmailVerification — GET /verify-email.
func (h *Handlers) SendEmailVerification(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SendEmailVerification(r.Context(), identity(r).User); err != nil {
		if errors.Is(err, service.ErrEmailAlreadyVerified) {
			response.Write(w, r, http.StatusBadRequest, response.InfoEmailAlreadyVerified, nil)
			return
		}

		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}

// VerifyEmail — POST /verify-email.
func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("code"))
	if !ok {
		return
	}

	if err := h.svc.VerifyEmail(r.Context(), in["code"]); err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}

// SendEmailChange — POST /change-email/send-link.
func (h *Handlers) SendEmailChange(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("newEmail"))
	if !ok {
		return
	}

	if err := h.svc.SendEmailChange(r.Context(), identity(r).User, in["newEmail"]); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			response.InvalidData(w, r, []string{"newEmail"})
			return
		}

		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}

// VerifyEmailChange — POST /change-email/verify-code.
func (h *Handlers) VerifyEmailChange(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("code"))
	if !ok {
		return
	}

	if err := h.svc.VerifyEmailChange(r.Context(), in["code"]); err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}
