package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomloop-backend/models"
	"roomloop-backend/repository"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestAllocateProducesUniqueCodes(t *testing.T) {
	repo := repository.NewInMemoryRoomRepo()
	alloc := NewCodeAllocator(repo)

	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		code, err := alloc.Allocate(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
		assert.False(t, seen[code], "code %s allocated twice", code)
		seen[code] = true

		// Register the code so the next draw sees it as taken.
		require.NoError(t, repo.Create(context.Background(), &models.Room{
			Code:      code,
			Title:     "t",
			StartTime: time.Now(),
			EndTime:   time.Now().Add(time.Hour),
		}))
	}
}

type saturatedCodeStore struct {
	*repository.InMemoryRoomRepo
}

func (saturatedCodeStore) CodeExists(context.Context, string) (bool, error) {
	return true, nil
}

func TestAllocateGivesUpAfterBoundedAttempts(t *testing.T) {
	alloc := NewCodeAllocator(saturatedCodeStore{repository.NewInMemoryRoomRepo()})

	_, err := alloc.Allocate(context.Background())
	assert.ErrorIs(t, err, ErrCodeAllocationExhausted)
}
