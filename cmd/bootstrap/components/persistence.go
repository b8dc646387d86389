package components

import (
	"log/slog"

	"car-rental-booking/internal/domain/availability"
	"car-rental-booking/internal/infra/db"
	"car-rental-booking/internal/infra/readstore"
	"car-rental-booking/internal/infra/uow"
	"car-rental-booking/internal/usecase/commands"
	"car-rental-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	indexModule,
)

var baseOption = fx.Provide(
	NewDBTX,
	uow.NewPostgresUoW,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Booking
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		// Car
		fx.Annotate(
			readstore.NewCarReadStore,
			fx.As(new(queries.CarReadStore)),
		),
		// Availability
		fx.Annotate(
			readstore.NewAvailabilityLoader,
			fx.As(new(availability.Loader)),
		),
	),
)

var indexModule = fx.Module("persistence/index",
	fx.Provide(
		NewAvailabilityIndex,
		func(idx *availability.Index) commands.AvailabilityIndex { return idx },
		func(idx *availability.Index) queries.AvailabilityIndex { return idx },
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

// NewAvailabilityIndex builds the process-wide calendar index. Calendars
// load lazily per car on first access.
func NewAvailabilityIndex(loader availability.Loader, versions availability.Versioner, logger *slog.Logger) *availability.Index {
	return availability.NewIndex(loader, versions, logger.With("component", "availability"))
}
