package readstore

import (
	"context"

	"car-rental-booking/internal/infra"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/pkg/pgconv"
	"car-rental-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getCarByID = `
SELECT id, owner_id, name, price_per_day_cents, created_at, updated_at
FROM cars
WHERE id = $1`

type CarReadStore struct {
	db db.DBTX
}

func NewCarReadStore(db db.DBTX) *CarReadStore {
	return &CarReadStore{db: db}
}

func (r *CarReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.CarView, error) {
	return r.FindByIDWith(ctx, r.db, id)
}

func (r *CarReadStore) FindByIDWith(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*queries.CarView, error) {
	var (
		v                    queries.CarView
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := dbtx.QueryRow(ctx, getCarByID, id).Scan(&v.ID, &v.OwnerID, &v.Name, &v.PricePerDayCents, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("car not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find car by ID", err)
	}
	v.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	v.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &v, nil
}
