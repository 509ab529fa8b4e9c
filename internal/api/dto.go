// Package api holds the request and response DTOs shared by handlers and
// their tests.
package api

import "github.com/impservers/impchat/internal/domain"

// Request DTOs

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=32"`
	Password string `json:"password" validate:"required,min=4"`
}

type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateMessageRequest struct {
	Text       string                `json:"text,omitempty"`
	Attachment *domain.AttachmentRef `json:"attachment,omitempty"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=32"`
	Password string `json:"password" validate:"required,min=4"`
	Role     string `json:"role" validate:"required"`
}

type UpdateUserRequest struct {
	Role     string `json:"role,omitempty"`
	Password string `json:"password,omitempty"`
}

// Response DTOs

type RegisterResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token,omitempty"` // for non-cookie clients
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type MessagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

type CreateMessageResponse struct {
	domain.Message
}

type TypingResponse struct {
	Typing []string `json:"typing"`
}

// UploadResponse returns the generated storage key a client embeds in its
// next message. Width and height are present for decodable images only.
type UploadResponse struct {
	StorageKey   string `json:"storage_key"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	Width        *int   `json:"width,omitempty"`
	Height       *int   `json:"height,omitempty"`
}

type UserResponse struct {
	Id      domain.UserId `json:"id"`
	Name    string        `json:"name"`
	Role    domain.Role   `json:"role"`
	Created string        `json:"created"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

// PublicConfigResponse tells clients how to consume this deployment.
type PublicConfigResponse struct {
	DeliveryMode      string `json:"delivery_mode"`
	PollIntervalSec   int    `json:"poll_interval_sec"`
	TypingTTLSec      int    `json:"typing_ttl_sec"`
	MaxAttachmentSize int64  `json:"max_attachment_size"`
}
