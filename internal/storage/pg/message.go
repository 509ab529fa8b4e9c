package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/impservers/impchat/internal/domain"
	internal_errors "github.com/impservers/impchat/internal/errors"
)

// AppendMessage persists a draft and returns the stored message with id and
// created timestamp assigned. The author row is resolved inside the same
// transaction so name and role are snapshotted at the moment of sending; an
// unknown author fails the whole append. A failed append leaves the log
// untouched (transaction rollback).
func (s *Storage) AppendMessage(draft domain.MessageDraft) (domain.Message, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var msg domain.Message
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var authorId domain.UserId
		var role string
		err := tx.QueryRow(`SELECT id, role FROM users WHERE name = $1`, draft.Author).Scan(&authorId, &role)
		if errors.Is(err, sql.ErrNoRows) {
			return internal_errors.NewAuthorUnknown(fmt.Sprintf("Unknown author %q", draft.Author))
		}
		if err != nil {
			return err
		}

		created := s.nextCreated()

		var attachmentKey, attachmentName sql.NullString
		if draft.Attachment != nil {
			attachmentKey = sql.NullString{String: draft.Attachment.StorageKey, Valid: true}
			attachmentName = sql.NullString{String: draft.Attachment.OriginalName, Valid: true}
		}

		var id domain.MsgId
		err = tx.QueryRow(`
		INSERT INTO messages(author_id, author_name, author_role, text, attachment_key, attachment_name, created)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
			authorId, draft.Author, role, draft.Text, attachmentKey, attachmentName, created).Scan(&id)
		if err != nil {
			return err
		}

		msg = domain.Message{
			Id:         id,
			Author:     draft.Author,
			Role:       domain.Role(role),
			Text:       draft.Text,
			Attachment: draft.Attachment,
			CreatedAt:  created,
		}
		return nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// ListMessages returns messages strictly after sinceId in append order.
// sinceId 0 returns the full history. Read-only and idempotent.
func (s *Storage) ListMessages(sinceId domain.MsgId) ([]domain.Message, error) {
	rows, err := s.db.Query(`
	SELECT id, author_name, author_role, text, attachment_key, attachment_name, created
	FROM messages
	WHERE id > $1
	ORDER BY id ASC`, sinceId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		var role string
		var attachmentKey, attachmentName sql.NullString
		if err := rows.Scan(&msg.Id, &msg.Author, &role, &msg.Text, &attachmentKey, &attachmentName, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Role = domain.Role(role)
		if attachmentKey.Valid {
			msg.Attachment = &domain.AttachmentRef{StorageKey: attachmentKey.String, OriginalName: attachmentName.String}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// GetMessage fetches one message by id.
func (s *Storage) GetMessage(id domain.MsgId) (domain.Message, error) {
	var msg domain.Message
	var role string
	var attachmentKey, attachmentName sql.NullString
	err := s.db.QueryRow(`
	SELECT id, author_name, author_role, text, attachment_key, attachment_name, created
	FROM messages
	WHERE id = $1`, id).Scan(&msg.Id, &msg.Author, &role, &attachmentKey, &attachmentName, &msg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, internal_errors.NewNotFound("Message not found")
	}
	if err != nil {
		return domain.Message{}, err
	}
	msg.Role = domain.Role(role)
	if attachmentKey.Valid {
		msg.Attachment = &domain.AttachmentRef{StorageKey: attachmentKey.String, OriginalName: attachmentName.String}
	}
	return msg, nil
}

// DeleteMessage hard-deletes one message. The moderation check happened
// upstream; the store does not re-check roles. Deleting an absent id
// reports not found, so a repeated delete is safe.
func (s *Storage) DeleteMessage(id domain.MsgId) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.Exec(`DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return internal_errors.NewNotFound("Message not found")
	}
	return nil
}
