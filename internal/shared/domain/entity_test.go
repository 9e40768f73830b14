package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	entity := domain.NewBaseEntity(now)

	assert.NotEqual(t, uuid.Nil, entity.ID())
	assert.Equal(t, now.UTC(), entity.CreatedAt())
	assert.Equal(t, entity.CreatedAt(), entity.UpdatedAt())
}

func TestBaseEntity_Touch(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entity := domain.NewBaseEntity(now)

	entity.Touch(now.Add(time.Minute))
	assert.Equal(t, now.Add(time.Minute), entity.UpdatedAt())

	entity.Touch(now)
	assert.Equal(t, now.Add(time.Minute), entity.UpdatedAt(), "touch never moves backwards")
	assert.Equal(t, now, entity.CreatedAt())
}

func TestSameIdentity(t *testing.T) {
	id := uuid.New()
	now := time.Now()
	a := domain.NewBaseEntityWithID(id, now)
	b := domain.RehydrateBaseEntity(id, now, now)

	assert.True(t, domain.SameIdentity(a, b))
	assert.False(t, domain.SameIdentity(a, domain.NewBaseEntity(now)))
	assert.False(t, domain.SameIdentity(a, nil))
}
