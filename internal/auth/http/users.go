package http

import (
	"encoding/json"
	"net/http"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
	"github.com/emsdesk/emsdesk/internal/auth/service"
	"github.com/emsdesk/emsdesk/pkg/httpx"
	"github.com/emsdesk/emsdesk/pkg/slogx"
)

// UsersHandler serves registration and the administrative user listing.
type UsersHandler struct {
	UserService *service.UserService
}

type registerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// HandleRegister handles POST /v1/auth/register.
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return
	}
	if req.Email == "" || req.PhoneNumber == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"email, phone_number and password are required", nil)
		return
	}

	user, err := h.UserService.Register(ctx, service.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		if isUnexpected(err) {
			log.Error("registration failed", "err", err)
		}
		writeServiceError(w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, "Registration successful", user.Profile())
}

// HandleList handles GET /v1/users. ADMIN only; enforced in the route chain.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	params := httpx.ParsePageParams(r)
	search := r.URL.Query().Get("search")

	users, total, err := h.UserService.ListUsers(ctx, search, params.PageSize, params.Offset())
	if err != nil {
		log.Error("user listing failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	profiles := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}

	httpx.WriteSuccess(w, http.StatusOK, "Users retrieved",
		httpx.NewPage(params, total, profiles))
}
