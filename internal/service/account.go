package service

import (
	"strings"

	"github.com/impservers/impchat/internal/domain"
	"github.com/impservers/impchat/internal/errors"
	"github.com/impservers/impchat/internal/logger"
	"github.com/impservers/impchat/internal/moderation"
	"golang.org/x/crypto/bcrypt"
)

type AccountService interface {
	Register(name, password string) (domain.UserId, error)
	Login(name, password string) (string, error)

	// Admin operations, top role only.
	CreateUser(actor *domain.User, name, password string, role domain.Role) (domain.UserId, error)
	UpdateUser(actor *domain.User, name string, role domain.Role, password string) error
	DeleteUser(actor *domain.User, name string) error
	ListUsers(actor *domain.User) ([]domain.User, error)
}

type Account struct {
	storage AccountStorage
	jwt     Jwt
}

type AccountStorage interface {
	SaveUser(name string, passHash []byte, role domain.Role) (domain.UserId, error)
	User(name string) (*domain.User, error)
	Users() ([]domain.User, error)
	UpdateUserRole(name string, role domain.Role) error
	UpdateUserPassword(name string, passHash []byte) error
	DeleteUser(name string) error
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

func NewAccount(storage AccountStorage, jwt Jwt) AccountService {
	return &Account{storage: storage, jwt: jwt}
}

// Register creates an account at the lowest tier. Promotions come from the
// admin surface, never from self-registration.
func (a *Account) Register(name, password string) (domain.UserId, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.NewValidation("Name is required")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return 0, err
	}

	id, err := a.storage.SaveUser(name, passHash, domain.RoleMember)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("account registered", "name", name)
	return id, nil
}

// Login verifies the password and issues a token. An unknown name and a
// wrong password are indistinguishable to the caller.
func (a *Account) Login(name, password string) (string, error) {
	user, err := a.storage.User(strings.TrimSpace(name))
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.NewUnauthorized("Wrong name or password")
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		return "", errors.NewUnauthorized("Wrong name or password")
	}
	return a.jwt.NewToken(*user)
}

func (a *Account) CreateUser(actor *domain.User, name, password string, role domain.Role) (domain.UserId, error) {
	if err := moderation.Authorize(actor.Role, moderation.ActionCreateAccount); err != nil {
		return 0, err
	}
	if !domain.ValidRole(role) {
		return 0, errors.NewValidation("Unknown role")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return 0, err
	}

	id, err := a.storage.SaveUser(strings.TrimSpace(name), passHash, role)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("account created by admin", "name", name, "role", role, "by", actor.Name)
	return id, nil
}

// UpdateUser changes role, password or both. Role changes apply to future
// messages only; sent messages keep the role they were sent under.
func (a *Account) UpdateUser(actor *domain.User, name string, role domain.Role, password string) error {
	if err := moderation.Authorize(actor.Role, moderation.ActionUpdateAccount); err != nil {
		return err
	}
	if role == "" && password == "" {
		return errors.NewValidation("Nothing to update")
	}

	if role != "" {
		if !domain.ValidRole(role) {
			return errors.NewValidation("Unknown role")
		}
		if err := a.storage.UpdateUserRole(name, role); err != nil {
			return err
		}
	}
	if password != "" {
		passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			logger.Log.Error("failed to hash password", "error", err)
			return err
		}
		if err := a.storage.UpdateUserPassword(name, passHash); err != nil {
			return err
		}
	}
	logger.Log.Info("account updated", "name", name, "by", actor.Name)
	return nil
}

func (a *Account) DeleteUser(actor *domain.User, name string) error {
	if err := moderation.Authorize(actor.Role, moderation.ActionDeleteAccount); err != nil {
		return err
	}
	if name == actor.Name {
		return errors.NewValidation("Cannot delete your own account")
	}
	if err := a.storage.DeleteUser(name); err != nil {
		return err
	}
	logger.Log.Info("account deleted", "name", name, "by", actor.Name)
	return nil
}

func (a *Account) ListUsers(actor *domain.User) ([]domain.User, error) {
	if err := moderation.Authorize(actor.Role, moderation.ActionUpdateAccount); err != nil {
		return nil, err
	}
	return a.storage.Users()
}
