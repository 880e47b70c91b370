package types

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageSystem MessageType = "system"
)

// ChatMessage is one message in a trip's chat thread.
type ChatMessage struct {
	ID        uuid.UUID   `json:"id"`
	TripID    uuid.UUID   `json:"trip_id"`
	UserID    uuid.UUID   `json:"user_id"`
	Username  string      `json:"username,omitempty"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
}

type PostMessageRequest struct {
	Content string `json:"content" validate:"required"`
	Type    string `json:"type,omitempty" validate:"omitempty,oneof=text image system"`
}

type CollaboratorRole string

const (
	RoleViewer CollaboratorRole = "viewer"
	RoleEditor CollaboratorRole = "editor"
	RoleAdmin  CollaboratorRole = "admin"
)

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
)

// TripCollaborator links a user to a shared trip.
type TripCollaborator struct {
	ID        uuid.UUID        `json:"id"`
	TripID    uuid.UUID        `json:"trip_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Username  string           `json:"username,omitempty"`
	Email     string           `json:"email,omitempty"`
	Role      CollaboratorRole `json:"role"`
	Status    InviteStatus     `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=viewer editor"`
}
