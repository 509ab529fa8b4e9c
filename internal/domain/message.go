package domain

import (
	"fmt"
	"time"
)

// MaxTextLen bounds the plain text body of a message.
const MaxTextLen = 256

// AttachmentRef points at a blob owned by the attachment store. StorageKey is
// the generated on-disk name; OriginalName is kept for display and download
// only and never used to address the blob.
type AttachmentRef struct {
	StorageKey   string `json:"storage_key"`
	OriginalName string `json:"original_name"`
}

// Message is the unit of conversation. Author name and role are snapshotted
// at send time so history reflects the role held when the message was sent.
// Messages are immutable; the only mutation is hard deletion.
type Message struct {
	Id         MsgId          `json:"id"`
	Author     string         `json:"author"`
	Role       Role           `json:"role"`
	Text       string         `json:"text,omitempty"`
	Attachment *AttachmentRef `json:"attachment,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// MessageDraft is what a sender submits; the store assigns Id and CreatedAt.
type MessageDraft struct {
	Author     string
	Text       string
	Attachment *AttachmentRef
}

// Empty reports whether the draft carries neither text nor an attachment.
func (d MessageDraft) Empty() bool {
	return d.Text == "" && d.Attachment == nil
}

// for debug
func (m Message) String() string {
	att := "<none>"
	if m.Attachment != nil {
		att = m.Attachment.StorageKey
	}
	return fmt.Sprintf("[id:%d author:%s role:%s text:%q attachment:%s created:%s]",
		m.Id, m.Author, m.Role, m.Text, att, m.CreatedAt.Format(time.StampMilli))
}
