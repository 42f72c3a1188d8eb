package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-blog-auth/internal/http/response"
)

// SendAccountRecovery — POST /account-recovery/send-email.
func (h *Handlers) SendAccountRecovery(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("email"))
	if !ok {
		return
	}

	if err := h.svc.SendAccountRecovery(r.Context(), in["email"]); err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}

// VerifyAccountRecovery — POST /account-recovery/verify-code.
func (h *Handlers) VerifyAccountRecovery(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("code"))
	if !ok {
		return
	}

	if err := h.svc.VerifyAccountRecovery(r.Context(), in["code"]); err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}

// SendPasswordRecovery — POST /password-recovery/send-email.
func (h *Handlers) SendPasswordRecovery(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("email"))
	if !ok {
		return
	}

	if err := h.svc.SendPasswordRecovery(r.Context(), in["email"]); err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}

// SubmitPasswordRecovery — POST /password-recovery/submit-password.
func (h *Handlers) SubmitPasswordRecovery(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, required("code", "newPassword"))
	if !ok || !passwordsFit(w, r, in, "newPassword") {
		return
	}

	if err := h.svc.SubmitPasswordRecovery(r.Context(), in["code"], in["newPassword"]); err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}
