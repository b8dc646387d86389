package repository

import (
	"context"

	"car-rental-booking/internal/domain/car"
	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
)

const insertCar = `
INSERT INTO cars (id, owner_id, name, price_per_day_cents)
VALUES ($1, $2, $3, $4)`

// CarRepository registers cars; the fleet itself is managed elsewhere.
type CarRepository struct{}

func NewCarRepository() *CarRepository {
	return &CarRepository{}
}

func (r *CarRepository) Create(ctx context.Context, tx db.DBTX, c *car.Car) error {
	_, err := tx.Exec(ctx, insertCar, c.ID(), c.OwnerID(), c.Name(), c.PricePerDayCents())
	if err != nil {
		return infra.WrapRepoErr("failed to create car", err)
	}
	return nil
}
