// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"
	"time"
)

// Kind tells who originated a session. Only admin sessions exist today.
type Kind string

const KindAdmin Kind = "admin"

// IdentifierLen is the length of a public session identifier.
const IdentifierLen = 8

var (
	ErrNotFound            = errors.New("session not found")
	ErrPersistence         = errors.New("session persistence failure")
	ErrDuplicateIdentifier = errors.New("session identifier already exists")
	ErrEmptyIdentifier     = errors.New("session identifier empty")
)

// Session is one admin↔student pairing opportunity, addressable by Identifier.
type Session struct {
	Identifier string    `json:"identifier"`
	Kind       Kind      `json:"kind"`
	ViewingURL string    `json:"viewingURL"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewSession builds an admin session record without timestamps; the store sets them.
func NewSession(id, viewingURL string) (Session, error) {
	if id == "" {
		return Session{}, ErrEmptyIdentifier
	}
	return Session{Identifier: id, Kind: KindAdmin, ViewingURL: viewingURL}, nil
}
