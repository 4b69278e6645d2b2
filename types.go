package authsess

import (
	"context"

	"github.com/opencampus/authsess/gateway"
	"github.com/opencampus/authsess/internal/events"
	"github.com/opencampus/authsess/session"
	"github.com/opencampus/authsess/vault"
)

// Core session value types, aliased from the session package so callers
// never import sub-packages directly.
type (
	// User is the platform identity committed to the session store.
	User = session.User
	// Role is the platform role carried by a User.
	Role = session.Role
	// TokenPair is the access/refresh token pair issued by the backend.
	TokenPair = session.TokenPair
	// Credentials is the login input.
	Credentials = session.Credentials
	// Snapshot is the observable session state at a point in time.
	Snapshot = session.Snapshot
)

const (
	// RoleAdmin is an exported constant or variable used by the session controller.
	RoleAdmin = session.RoleAdmin
	// RoleTeacher is an exported constant or variable used by the session controller.
	RoleTeacher = session.RoleTeacher
	// RoleStudent is an exported constant or variable used by the session controller.
	RoleStudent = session.RoleStudent
	// RoleParent is an exported constant or variable used by the session controller.
	RoleParent = session.RoleParent
)

// AuthError is the structured gateway failure. Callers usually branch on
// the package sentinels instead; the typed form carries the HTTP status and
// a renderable message.
type AuthError = gateway.AuthError

// ErrorKind classifies an AuthError.
type ErrorKind = gateway.ErrorKind

// LoginPayload is the normalized result of a successful login exchange.
type LoginPayload = gateway.LoginPayload

// Vault persists the token pair and the cached user snapshot across
// process restarts.
//
//	Docs: vault sub-package for the Redis and in-memory implementations.
type Vault = vault.Vault

// Stored is the material a Vault holds.
type Stored = vault.Stored

// Gateway is the backend transport the Controller drives. Implementations
// must classify failures as [AuthError] values.
type Gateway interface {
	Login(ctx context.Context, creds Credentials) (LoginPayload, error)
	Logout(ctx context.Context, accessToken string) error
	Verify(ctx context.Context, accessToken string) (*User, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

// Event is a session lifecycle record delivered to an EventSink.
type Event = events.Event

// EventSink receives session lifecycle events from the async dispatcher.
type EventSink = events.Sink

// NoOpEventSink drops all events.
type NoOpEventSink = events.NoOpSink

// ChannelEventSink buffers events into a channel for consumption by the
// host application.
type ChannelEventSink = events.ChannelSink

// JSONWriterEventSink writes one JSON object per line.
type JSONWriterEventSink = events.JSONWriterSink

// NewChannelEventSink creates a ChannelEventSink with the given buffer.
var NewChannelEventSink = events.NewChannelSink

// NewJSONWriterEventSink creates a JSONWriterEventSink over w.
var NewJSONWriterEventSink = events.NewJSONWriterSink
