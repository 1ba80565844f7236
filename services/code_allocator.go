package services

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/sirupsen/logrus"

	"roomloop-backend/repository"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// maxCodeAttempts bounds collision retries. At realistic room counts a
	// collision is already rare (36^6 codes); hitting the bound means the
	// store is misbehaving, not that the space is full.
	maxCodeAttempts = 10
)

// CodeAllocator hands out unique human-shareable room codes.
type CodeAllocator struct {
	rooms repository.RoomRepository
}

func NewCodeAllocator(rooms repository.RoomRepository) *CodeAllocator {
	if rooms == nil {
		panic("RoomRepository cannot be nil for CodeAllocator")
	}
	return &CodeAllocator{rooms: rooms}
}

// Allocate draws random candidates and checks them against the store,
// returning ErrCodeAllocationExhausted after maxCodeAttempts collisions.
func (a *CodeAllocator) Allocate(ctx context.Context) (string, error) {
	buf := make([]byte, codeLength)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate random bytes: %w", err)
		}
		for i := range buf {
			buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(buf)

		exists, err := a.rooms.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check room code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
		logrus.WithFields(logrus.Fields{
			"code":    code,
			"attempt": attempt + 1,
		}).Warn("Room code collision, retrying")
	}
	logrus.Errorf("Failed to allocate a unique room code after %d attempts", maxCodeAttempts)
	return "", ErrCodeAllocationExhausted
}
