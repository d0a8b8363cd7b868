package id

import "github.com/google/uuid"

// Generator produces opaque unique identifiers.
type Generator interface {
	NewID() string
}

type uuidGenerator struct{}

func NewUUIDGenerator() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}
