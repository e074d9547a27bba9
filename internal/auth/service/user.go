package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/emsdesk/emsdesk/internal/auth/domain"
	"github.com/emsdesk/emsdesk/internal/auth/mail"
	"github.com/emsdesk/emsdesk/internal/auth/store"
	"github.com/emsdesk/emsdesk/pkg/cryptox"
	"github.com/emsdesk/emsdesk/pkg/idx"
	"github.com/emsdesk/emsdesk/pkg/slogx"
)

var ErrInvalidRole = errors.New("invalid role")

// RegisterInput is everything needed to create an account. Username is
// generated, not chosen.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Password    string
	Role        domain.Role // empty defaults to PATIENT
}

// UserService covers registration and the administrative user listing.
type UserService struct {
	Store  store.Store
	Policy *PasswordPolicy
	Mailer mail.Mailer
}

// Register creates a new account. The password must clear the policy, and
// uniqueness violations come back as *store.ConflictError naming the field.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RolePatient
	}
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	if err := s.Policy.Validate(in.Password); err != nil {
		return domain.User{}, err
	}

	username, err := s.generateUsername(ctx, in.FirstName, in.LastName)
	if err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	if s.Mailer != nil {
		bg := context.WithoutCancel(ctx)
		go func() {
			if err := s.Mailer.SendWelcome(bg, user.Email, user.FirstName, user.Username); err != nil {
				slogx.FromContext(bg).Error("mail delivery failed", "error", err)
			}
		}()
	}

	return user, nil
}

// generateUsername builds first-initial + last-name, lowercased, then
// appends an increasing numeric suffix until the name is free.
func (s *UserService) generateUsername(ctx context.Context, firstName, lastName string) (string, error) {
	base := usernameBase(firstName, lastName)

	candidate := base
	for i := 1; ; i++ {
		taken, err := s.Store.Users().UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func usernameBase(firstName, lastName string) string {
	clean := func(s string) string {
		var b strings.Builder
		for _, r := range strings.ToLower(s) {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String()
	}

	first := clean(firstName)
	last := clean(lastName)
	switch {
	case first != "" && last != "":
		return first[:1] + last
	case last != "":
		return last
	case first != "":
		return first
	default:
		return "user"
	}
}

// ListUsers returns one page of users plus the total matching count, newest
// first.
func (s *UserService) ListUsers(ctx context.Context, search string, limit, offset int) ([]domain.User, int, error) {
	return s.Store.Users().ListUsers(ctx, store.ListUsersQuery{
		Search: search,
		Limit:  limit,
		Offset: offset,
	})
}
