package car

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyCarName      = errors.New("car name cannot be empty")
	ErrCarNameTooLong    = errors.New("car name is too long (max 255 characters)")
	ErrNegativeDailyRate = errors.New("daily rate cannot be negative")
	ErrMissingOwner      = errors.New("car owner is required")
)

const (
	MaxCarNameLength = 255
)

type Car struct {
	id               uuid.UUID
	ownerID          uuid.UUID
	name             string
	pricePerDayCents int64
	createdAt        time.Time
	updatedAt        time.Time
}

func NewCar(id, ownerID uuid.UUID, name string, pricePerDayCents int64) (*Car, error) {
	if err := validateCarName(name); err != nil {
		return nil, err
	}
	if ownerID == uuid.Nil {
		return nil, ErrMissingOwner
	}
	if pricePerDayCents < 0 {
		return nil, ErrNegativeDailyRate
	}

	return &Car{
		id:               id,
		ownerID:          ownerID,
		name:             strings.TrimSpace(name),
		pricePerDayCents: pricePerDayCents,
	}, nil
}

func validateCarName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCarName
	}
	if len(name) > MaxCarNameLength {
		return ErrCarNameTooLong
	}
	return nil
}

func (c *Car) IsOwnedBy(userID uuid.UUID) bool {
	return c.ownerID == userID
}

func (c *Car) ID() uuid.UUID           { return c.id }
func (c *Car) OwnerID() uuid.UUID      { return c.ownerID }
func (c *Car) Name() string            { return c.name }
func (c *Car) PricePerDayCents() int64 { return c.pricePerDayCents }
func (c *Car) CreatedAt() time.Time    { return c.createdAt }
func (c *Car) UpdatedAt() time.Time    { return c.updatedAt }
