package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
)

const minPasswordLength = 3

type RegisterInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type UserPatch struct {
	Email     Optional[string] `json:"email"`
	FirstName Optional[string] `json:"firstName"`
	LastName  Optional[string] `json:"lastName"`
	Password  Optional[string] `json:"password"`
}

func validateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email must contain @", common.ErrValidation)
	}
	return nil
}

func validatePassword(p string) error {
	if len([]rune(p)) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLength)
	}
	return nil
}

// Register creates an account with the default role.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: digest,
		Roles:        models.Roles{auth.RoleUser},
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Update applies the fields present in p. A new password is hashed before it
// is stored.
func (s *UserService) Update(ctx context.Context, id int64, p UserPatch) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Email.Set {
		email := strings.TrimSpace(p.Email.Value)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if p.FirstName.Set {
		user.FirstName = p.FirstName.Value
	}
	if p.LastName.Set {
		user.LastName = p.LastName.Value
	}
	if p.Password.Set {
		if err := validatePassword(p.Password.Value); err != nil {
			return nil, err
		}
		digest, err := s.hasher.Hash(p.Password.Value)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = digest
	}

	return repo.Update(ctx, user)
}

// Delete removes the account. It fails with common.ErrInUse while tasks are
// still assigned to the user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Users(s.db).Delete(ctx, id)
}
