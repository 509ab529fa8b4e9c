// Package service implements the chat operations on top of storage,
// delivery and moderation.
package service

import (
	"strings"

	"github.com/impservers/impchat/internal/delivery"
	"github.com/impservers/impchat/internal/domain"
	"github.com/impservers/impchat/internal/logger"
	"github.com/impservers/impchat/internal/middleware/metrics"
	"github.com/impservers/impchat/internal/moderation"
	"github.com/microcosm-cc/bluemonday"
)

type MessageService interface {
	Send(author *domain.User, text string, attachment *domain.AttachmentRef) (domain.Message, error)
	List(since domain.MsgId) ([]domain.Message, error)
	Delete(actor *domain.User, id domain.MsgId) error
}

type Message struct {
	storage   MessageStorage
	validator DraftValidator
	channel   delivery.Channel
	presence  Presence
	sanitizer *bluemonday.Policy
}

type MessageStorage interface {
	AppendMessage(draft domain.MessageDraft) (domain.Message, error)
	ListMessages(since domain.MsgId) ([]domain.Message, error)
	DeleteMessage(id domain.MsgId) error
}

type DraftValidator interface {
	Draft(draft domain.MessageDraft) error
}

// Presence lets a successful send retire the author's typing signal.
type Presence interface {
	Clear(name string)
}

func NewMessage(storage MessageStorage, validator DraftValidator, channel delivery.Channel, presence Presence) MessageService {
	return &Message{
		storage:   storage,
		validator: validator,
		channel:   channel,
		presence:  presence,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Send validates, stores and fans out one message. The stored row is the
// source of truth; fan-out happens only after the append committed, so a
// pushed message is always also visible to polling readers.
func (m *Message) Send(author *domain.User, text string, attachment *domain.AttachmentRef) (domain.Message, error) {
	draft := domain.MessageDraft{
		Author:     author.Name,
		Text:       strings.TrimSpace(m.sanitizer.Sanitize(text)),
		Attachment: attachment,
	}
	if err := m.validator.Draft(draft); err != nil {
		return domain.Message{}, err
	}

	msg, err := m.storage.AppendMessage(draft)
	if err != nil {
		return domain.Message{}, err
	}
	metrics.MessagesAppended.Inc()

	m.channel.Publish(msg)
	m.presence.Clear(author.Name)
	return msg, nil
}

func (m *Message) List(since domain.MsgId) ([]domain.Message, error) {
	return m.storage.ListMessages(since)
}

// Delete removes a message for everyone. Only the top role passes the
// moderation gate; the author cannot delete their own messages.
func (m *Message) Delete(actor *domain.User, id domain.MsgId) error {
	if err := moderation.Authorize(actor.Role, moderation.ActionDeleteMessage); err != nil {
		return err
	}
	if err := m.storage.DeleteMessage(id); err != nil {
		return err
	}
	logger.Log.Info("message deleted", "id", id, "by", actor.Name)
	return nil
}
