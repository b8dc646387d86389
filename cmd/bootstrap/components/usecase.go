package components

import (
	"car-rental-booking/internal/domain/booking"
	"car-rental-booking/internal/pkg/clock"
	"car-rental-booking/internal/pkg/config"
	"car-rental-booking/internal/usecase"
	"car-rental-booking/internal/usecase/commands"
	"car-rental-booking/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		booking.NewDailyRateCalculator,
		fx.As(new(booking.PriceCalculator)),
	),
	func(clk clock.Clock, calc booking.PriceCalculator, cfg config.Config) *booking.Factory {
		return booking.NewFactory(clk, calc, cfg.Booking.Location())
	},
	func(f *booking.Factory) queries.RangeValidator { return f },
	func(cfg config.Config) commands.LifecyclePolicy {
		return commands.LifecyclePolicy{
			PendingTTL: cfg.Booking.PendingTTL,
			AutoPickup: cfg.Booking.AutoPickup,
		}
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewAvailabilityQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
