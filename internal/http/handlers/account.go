package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-blog-auth/internal/http/response"
	"github.com/pribylovaa/go-blog-auth/internal/models"
)

type accountView struct {
	About           string `json:"about"`
	AvatarLink      string `json:"avatarLink"`
	Created         int64  `json:"created"`
	Email           string `json:"email"`
	EmailIsVerified bool   `json:"emailIsVerified"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Role            string `json:"role"`
}

func viewAccount(u *models.User) accountView {
	return accountView{
		About:           u.About,
		AvatarLink:      u.AvatarLink,
		Created:         u.CreatedAt.Unix(),
		Email:           u.Email,
		EmailIsVerified: u.EmailVerified,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
	}
}

// Index — GET /. Для аутентифицированного вызова добавляет {id, role}.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	if id == nil {
		response.OK(w, r, nil)
		return
	}

	response.OK(w, r, map[string]string{
		"id":   id.UserID.String(),
		"role": id.Role,
	})
}

// Account — GET /account.
func (h *Handlers) Account(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, viewAccount(identity(r).User))
}

// UpdateAccount — PATCH /account.
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	in, ok := readFields(w, r, []field{
		{name: "firstName"},
		{name: "lastName"},
		{name: "about", optional: true},
	})
	if !ok {
		return
	}

	u, err := h.svc.UpdateAccount(r.Context(), identity(r).User, in["firstName"], in["lastName"], in["about"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, viewAccount(u))
}

// DeleteAccount — DELETE /account.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), identity(r).User); err != nil {
		h.fail(w, r, err)
		return
	}

	response.OK(w, r, nil)
}
