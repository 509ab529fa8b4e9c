package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/impservers/impchat/internal/delivery"
	"github.com/impservers/impchat/internal/domain"
	internal_errors "github.com/impservers/impchat/internal/errors"
	"github.com/impservers/impchat/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock structs
type MockMessageStorage struct {
	AppendMessageFunc func(draft domain.MessageDraft) (domain.Message, error)
	ListMessagesFunc  func(since domain.MsgId) ([]domain.Message, error)
	DeleteMessageFunc func(id domain.MsgId) error
}

func (m *MockMessageStorage) AppendMessage(draft domain.MessageDraft) (domain.Message, error) {
	if m.AppendMessageFunc != nil {
		return m.AppendMessageFunc(draft)
	}
	return domain.Message{Id: 1, Author: draft.Author, Text: draft.Text, Attachment: draft.Attachment}, nil
}

func (m *MockMessageStorage) ListMessages(since domain.MsgId) ([]domain.Message, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(since)
	}
	return []domain.Message{}, nil
}

func (m *MockMessageStorage) DeleteMessage(id domain.MsgId) error {
	if m.DeleteMessageFunc != nil {
		return m.DeleteMessageFunc(id)
	}
	return nil
}

// MockChannel records published messages.
type MockChannel struct {
	Published []domain.Message
}

func (m *MockChannel) Publish(msg domain.Message) {
	m.Published = append(m.Published, msg)
}

// MockPresence records cleared authors.
type MockPresence struct {
	Cleared []string
}

func (m *MockPresence) Clear(name string) {
	m.Cleared = append(m.Cleared, name)
}

func newMessageService(storage *MockMessageStorage, channel *MockChannel, pres *MockPresence) MessageService {
	return NewMessage(storage, validation.New(), channel, pres)
}

func TestMessageSend(t *testing.T) {
	storage := &MockMessageStorage{}
	channel := &MockChannel{}
	pres := &MockPresence{}
	service := newMessageService(storage, channel, pres)

	author := &domain.User{Id: 1, Name: "keko", Role: domain.RoleMember}

	msg, err := service.Send(author, "hola", nil)
	require.NoError(t, err)
	assert.Equal(t, "hola", msg.Text)

	require.Len(t, channel.Published, 1, "stored message is fanned out")
	assert.Equal(t, msg, channel.Published[0])
	assert.Equal(t, []string{"keko"}, pres.Cleared, "send retires the typing signal")
}

func TestMessageSendSanitizesText(t *testing.T) {
	storage := &MockMessageStorage{}
	service := newMessageService(storage, &MockChannel{}, &MockPresence{})

	author := &domain.User{Id: 1, Name: "keko", Role: domain.RoleMember}

	msg, err := service.Send(author, "  <script>alert(1)</script>hola  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "hola", msg.Text, "markup is stripped and whitespace trimmed")
}

func TestMessageSendValidation(t *testing.T) {
	storage := &MockMessageStorage{}
	channel := &MockChannel{}
	service := newMessageService(storage, channel, &MockPresence{})

	author := &domain.User{Id: 1, Name: "keko", Role: domain.RoleMember}

	_, err := service.Send(author, "", nil)
	assert.True(t, internal_errors.IsValidation(err), "empty message is rejected")

	_, err = service.Send(author, strings.Repeat("a", domain.MaxTextLen+1), nil)
	assert.True(t, internal_errors.IsValidation(err))

	assert.Empty(t, channel.Published, "nothing is fanned out on failure")
}

func TestMessageSendStorageError(t *testing.T) {
	mockError := errors.New("mock AppendMessageFunc")
	storage := &MockMessageStorage{
		AppendMessageFunc: func(draft domain.MessageDraft) (domain.Message, error) {
			return domain.Message{}, mockError
		},
	}
	channel := &MockChannel{}
	pres := &MockPresence{}
	service := newMessageService(storage, channel, pres)

	author := &domain.User{Id: 1, Name: "keko", Role: domain.RoleMember}

	_, err := service.Send(author, "hola", nil)
	assert.ErrorIs(t, err, mockError)
	assert.Empty(t, channel.Published, "failed append must not be fanned out")
	assert.Empty(t, pres.Cleared)
}

func TestMessageList(t *testing.T) {
	storage := &MockMessageStorage{
		ListMessagesFunc: func(since domain.MsgId) ([]domain.Message, error) {
			assert.Equal(t, domain.MsgId(5), since)
			return []domain.Message{{Id: 6}, {Id: 7}}, nil
		},
	}
	service := newMessageService(storage, &MockChannel{}, &MockPresence{})

	messages, err := service.List(5)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.MsgId(6), messages[0].Id)
}

func TestMessageDelete(t *testing.T) {
	deleted := []domain.MsgId{}
	storage := &MockMessageStorage{
		DeleteMessageFunc: func(id domain.MsgId) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	service := newMessageService(storage, &MockChannel{}, &MockPresence{})

	leader := &domain.User{Id: 1, Name: "boss", Role: domain.RoleLeader}
	require.NoError(t, service.Delete(leader, 42))
	assert.Equal(t, []domain.MsgId{42}, deleted)

	// Everyone below the top role is refused, including the message author.
	for _, role := range []domain.Role{domain.RoleCoLeader, domain.RoleVeteran, domain.RoleMember} {
		err := service.Delete(&domain.User{Id: 2, Name: "other", Role: role}, 42)
		assert.True(t, internal_errors.IsForbidden(err), "role %s must be refused", role)
	}
	assert.Len(t, deleted, 1, "refused deletes never reach storage")
}

func TestMessageDeleteMissing(t *testing.T) {
	storage := &MockMessageStorage{
		DeleteMessageFunc: func(id domain.MsgId) error {
			return internal_errors.NewNotFound("Message not found")
		},
	}
	service := newMessageService(storage, &MockChannel{}, &MockPresence{})

	leader := &domain.User{Id: 1, Name: "boss", Role: domain.RoleLeader}
	err := service.Delete(leader, 999)
	assert.True(t, internal_errors.IsNotFound(err))
}

var _ delivery.Channel = (*MockChannel)(nil)
