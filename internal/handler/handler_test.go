package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/impservers/impchat/internal/config"
	"github.com/impservers/impchat/internal/domain"
	"github.com/impservers/impchat/internal/middleware"
	"github.com/impservers/impchat/internal/presence"
	"github.com/impservers/impchat/internal/service"
)

// Mock services shared by the handler tests.

type MockAccountService struct {
	RegisterFunc   func(name, password string) (domain.UserId, error)
	LoginFunc      func(name, password string) (string, error)
	CreateUserFunc func(actor *domain.User, name, password string, role domain.Role) (domain.UserId, error)
	UpdateUserFunc func(actor *domain.User, name string, role domain.Role, password string) error
	DeleteUserFunc func(actor *domain.User, name string) error
	ListUsersFunc  func(actor *domain.User) ([]domain.User, error)
}

func (m *MockAccountService) Register(name, password string) (domain.UserId, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(name, password)
	}
	return 1, nil
}

func (m *MockAccountService) Login(name, password string) (string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(name, password)
	}
	return "token", nil
}

func (m *MockAccountService) CreateUser(actor *domain.User, name, password string, role domain.Role) (domain.UserId, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(actor, name, password, role)
	}
	return 1, nil
}

func (m *MockAccountService) UpdateUser(actor *domain.User, name string, role domain.Role, password string) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(actor, name, role, password)
	}
	return nil
}

func (m *MockAccountService) DeleteUser(actor *domain.User, name string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(actor, name)
	}
	return nil
}

func (m *MockAccountService) ListUsers(actor *domain.User) ([]domain.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(actor)
	}
	return []domain.User{}, nil
}

type MockMessageService struct {
	SendFunc   func(author *domain.User, text string, attachment *domain.AttachmentRef) (domain.Message, error)
	ListFunc   func(since domain.MsgId) ([]domain.Message, error)
	DeleteFunc func(actor *domain.User, id domain.MsgId) error
}

func (m *MockMessageService) Send(author *domain.User, text string, attachment *domain.AttachmentRef) (domain.Message, error) {
	if m.SendFunc != nil {
		return m.SendFunc(author, text, attachment)
	}
	return domain.Message{Id: 1, Author: author.Name, Role: author.Role, Text: text, Attachment: attachment}, nil
}

func (m *MockMessageService) List(since domain.MsgId) ([]domain.Message, error) {
	if m.ListFunc != nil {
		return m.ListFunc(since)
	}
	return []domain.Message{}, nil
}

func (m *MockMessageService) Delete(actor *domain.User, id domain.MsgId) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(actor, id)
	}
	return nil
}

type MockAttachmentService struct {
	StoreFunc func(data io.Reader, originalName string) (*domain.AttachmentRef, int64, error)
	OpenFunc  func(key string) (io.ReadCloser, error)
}

func (m *MockAttachmentService) Store(data io.Reader, originalName string) (*domain.AttachmentRef, int64, error) {
	if m.StoreFunc != nil {
		return m.StoreFunc(data, originalName)
	}
	return &domain.AttachmentRef{StorageKey: "key.png", OriginalName: originalName}, 1, nil
}

func (m *MockAttachmentService) Open(key string) (io.ReadCloser, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(key)
	}
	return io.NopCloser(strings.NewReader("")), nil
}

type MockHealth struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealth) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{
		JwtTTL:            time.Hour,
		TypingTTL:         4 * time.Second,
		MaxAttachmentSize: 1 << 20,
	}}
}

type testDeps struct {
	account    *MockAccountService
	message    *MockMessageService
	attachment *MockAttachmentService
	presence   *presence.Tracker
	health     *MockHealth
}

func newTestHandler() (*Handler, *testDeps) {
	deps := &testDeps{
		account:    &MockAccountService{},
		message:    &MockMessageService{},
		attachment: &MockAttachmentService{},
		presence:   presence.New(4 * time.Second),
		health:     &MockHealth{},
	}
	h := New(deps.account, deps.message, deps.attachment, deps.presence, nil, deps.health, testConfig())
	return h, deps
}

// asUser injects the authenticated caller the way the auth middleware does.
func asUser(r *http.Request, user *domain.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserClaimsKey, user)
	return r.WithContext(ctx)
}

func serve(handlerFunc http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handlerFunc(w, r)
	return w
}

// Interface checks
var (
	_ service.AccountService    = (*MockAccountService)(nil)
	_ service.MessageService    = (*MockMessageService)(nil)
	_ service.AttachmentService = (*MockAttachmentService)(nil)
)
