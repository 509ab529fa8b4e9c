package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/impservers/impchat/internal/api"
	"github.com/impservers/impchat/internal/domain"
	internal_errors "github.com/impservers/impchat/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member() *domain.User {
	return &domain.User{Id: 1, Name: "keko", Role: domain.RoleMember}
}

func leader() *domain.User {
	return &domain.User{Id: 2, Name: "boss", Role: domain.RoleLeader}
}

func TestListMessages(t *testing.T) {
	h, deps := newTestHandler()
	deps.message.ListFunc = func(since domain.MsgId) ([]domain.Message, error) {
		assert.Equal(t, domain.MsgId(5), since)
		return []domain.Message{{Id: 6, Author: "keko", Role: domain.RoleMember, Text: "hi"}}, nil
	}

	r := asUser(httptest.NewRequest("GET", "/v1/messages?since=5", nil), member())
	w := serve(h.ListMessages, r)

	require.Equal(t, http.StatusOK, w.Code)
	var response api.MessagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Messages, 1)
	assert.Equal(t, domain.MsgId(6), response.Messages[0].Id)
}

func TestListMessagesDefaultCursor(t *testing.T) {
	h, deps := newTestHandler()
	deps.message.ListFunc = func(since domain.MsgId) ([]domain.Message, error) {
		assert.Equal(t, domain.MsgId(0), since, "absent cursor means full history")
		return []domain.Message{}, nil
	}

	r := asUser(httptest.NewRequest("GET", "/v1/messages", nil), member())
	w := serve(h.ListMessages, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListMessagesBadCursor(t *testing.T) {
	h, _ := newTestHandler()

	r := asUser(httptest.NewRequest("GET", "/v1/messages?since=abc", nil), member())
	w := serve(h.ListMessages, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMessage(t *testing.T) {
	h, deps := newTestHandler()
	deps.message.SendFunc = func(author *domain.User, text string, attachment *domain.AttachmentRef) (domain.Message, error) {
		assert.Equal(t, "keko", author.Name)
		assert.Equal(t, "hola", text)
		return domain.Message{Id: 9, Author: author.Name, Role: author.Role, Text: text}, nil
	}

	body := strings.NewReader(`{"text": "hola"}`)
	r := asUser(httptest.NewRequest("POST", "/v1/messages", body), member())
	w := serve(h.CreateMessage, r)

	require.Equal(t, http.StatusCreated, w.Code)
	var response api.CreateMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, domain.MsgId(9), response.Id)
}

func TestCreateMessageWithAttachment(t *testing.T) {
	h, deps := newTestHandler()
	deps.message.SendFunc = func(author *domain.User, text string, attachment *domain.AttachmentRef) (domain.Message, error) {
		require.NotNil(t, attachment)
		assert.Equal(t, "abc.png", attachment.StorageKey)
		return domain.Message{Id: 1, Author: author.Name, Attachment: attachment}, nil
	}

	body := strings.NewReader(`{"attachment": {"storage_key": "abc.png", "original_name": "cat.png"}}`)
	r := asUser(httptest.NewRequest("POST", "/v1/messages", body), member())
	w := serve(h.CreateMessage, r)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateMessageUnauthenticated(t *testing.T) {
	h, _ := newTestHandler()

	r := httptest.NewRequest("POST", "/v1/messages", strings.NewReader(`{"text": "hola"}`))
	w := serve(h.CreateMessage, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateMessageValidationError(t *testing.T) {
	h, deps := newTestHandler()
	deps.message.SendFunc = func(author *domain.User, text string, attachment *domain.AttachmentRef) (domain.Message, error) {
		return domain.Message{}, internal_errors.NewValidation("Message needs text or an attachment")
	}

	r := asUser(httptest.NewRequest("POST", "/v1/messages", strings.NewReader(`{}`)), member())
	w := serve(h.CreateMessage, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMessageUnknownAuthor(t *testing.T) {
	h, deps := newTestHandler()
	deps.message.SendFunc = func(author *domain.User, text string, attachment *domain.AttachmentRef) (domain.Message, error) {
		return domain.Message{}, internal_errors.NewAuthorUnknown("Unknown author")
	}

	r := asUser(httptest.NewRequest("POST", "/v1/messages", strings.NewReader(`{"text": "hi"}`)), member())
	w := serve(h.CreateMessage, r)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// deleteRequest routes through chi so URL params resolve.
func deleteRequest(h *Handler, user *domain.User, path string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Delete("/v1/messages/{message}", h.DeleteMessage)

	r := httptest.NewRequest("DELETE", path, nil)
	if user != nil {
		r = asUser(r, user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestDeleteMessage(t *testing.T) {
	h, deps := newTestHandler()
	var deletedId domain.MsgId
	deps.message.DeleteFunc = func(actor *domain.User, id domain.MsgId) error {
		deletedId = id
		return nil
	}

	w := deleteRequest(h, leader(), "/v1/messages/42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.MsgId(42), deletedId)
}

func TestDeleteMessageForbidden(t *testing.T) {
	h, deps := newTestHandler()
	deps.message.DeleteFunc = func(actor *domain.User, id domain.MsgId) error {
		return internal_errors.NewForbidden("role MEMBER may not delete_message")
	}

	w := deleteRequest(h, member(), "/v1/messages/42")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteMessageNotFound(t *testing.T) {
	h, deps := newTestHandler()
	deps.message.DeleteFunc = func(actor *domain.User, id domain.MsgId) error {
		return internal_errors.NewNotFound("Message not found")
	}

	w := deleteRequest(h, leader(), "/v1/messages/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMessageBadId(t *testing.T) {
	h, _ := newTestHandler()

	w := deleteRequest(h, leader(), "/v1/messages/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
