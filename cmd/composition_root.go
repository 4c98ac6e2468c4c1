package cmd

import (
	"context"
	"fmt"
	"log/slog"

	httpadapter "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/adapters/out/notify"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/journalrepo"
	"fulfillment/internal/core/application/fulfillment"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
)

type CompositionRoot struct {
	config       Config
	logger       *slog.Logger
	uowFactory   ports.UnitOfWorkFactory
	sink         *notify.QueueSink
	recorder     ports.InconsistencyRecorder
	orchestrator *fulfillment.Orchestrator
}

// NewCompositionRoot opens the storage selected by DBDriver and wires the
// engine on top of it. Migrations run on every start.
func NewCompositionRoot(config Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{config: config, logger: logger}

	var store ports.NotificationStore
	switch config.DBDriver {
	case StorageMemory:
		mem := memory.NewStore()
		c.uowFactory = memory.NewUnitOfWorkFactory(mem)
		c.recorder = memory.NewInconsistencyLog()
		store = memory.NewNotificationLog()
		logger.Warn("Using in-memory storage, state is lost on restart")
	case StoragePostgres, StorageSQLite:
		db, err := postgres.Open(config.DBDriver, config.ConnectionString(), logger)
		if err != nil {
			return nil, err
		}
		if err = postgres.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(db)
		c.recorder = journalrepo.NewGormInconsistencyRecorder(db)
		store = journalrepo.NewGormNotificationStore(db)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.DBDriver)
	}

	c.sink = notify.NewQueueSink(store, notify.Config{
		QueueSize: config.NotificationQueueSize,
		Workers:   config.NotificationWorkers,
	}, logger)

	c.orchestrator = fulfillment.NewOrchestrator(c.uowFactory, c.sink, c.recorder, fulfillment.Config{
		MaxDistanceMeters: config.DispatchMaxDistanceMeters,
		CandidateLimit:    config.DispatchCandidateLimit,
		CourierSpeedKmh:   config.CourierSpeedKmh,
	}, logger)

	return c, nil
}

// Start launches the notification workers.
func (c *CompositionRoot) Start() {
	c.sink.Start()
}

// Stop drains pending notifications.
func (c *CompositionRoot) Stop(ctx context.Context) error {
	return c.sink.Stop(ctx)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) driverUoWFactory() commands.DriverUoWFactory {
	return FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.orchestrator)
}

func (c *CompositionRoot) CreateRegisterDriverCommandHandler() commands.RegisterDriverCommandHandler {
	return commands.NewRegisterDriverCommandHandler(c.driverUoWFactory())
}

func (c *CompositionRoot) CreateUpdateDriverLocationCommandHandler() commands.UpdateDriverLocationCommandHandler {
	return commands.NewUpdateDriverLocationCommandHandler(c.driverUoWFactory())
}

func (c *CompositionRoot) CreateCreateDeliveryCommandHandler() commands.CreateDeliveryCommandHandler {
	return commands.NewCreateDeliveryCommandHandler(c.orchestrator)
}

func (c *CompositionRoot) CreateAdvanceDeliveryStatusCommandHandler() commands.AdvanceDeliveryStatusCommandHandler {
	return commands.NewAdvanceDeliveryStatusCommandHandler(c.orchestrator)
}

func (c *CompositionRoot) CreateCancelDeliveryCommandHandler() commands.CancelDeliveryCommandHandler {
	return commands.NewCancelDeliveryCommandHandler(c.orchestrator)
}

func (c *CompositionRoot) CreateReassignDriverCommandHandler() commands.ReassignDriverCommandHandler {
	return commands.NewReassignDriverCommandHandler(c.orchestrator)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetDeliveryQueryHandler() queries.GetDeliveryQueryHandler {
	return queries.NewGetDeliveryQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetAvailableDriversQueryHandler() queries.GetAvailableDriversQueryHandler {
	return queries.NewGetAvailableDriversQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(httpadapter.Handlers{
		CreateOrder:           c.CreateCreateOrderCommandHandler(),
		ChangeOrderStatus:     c.CreateChangeOrderStatusCommandHandler(),
		RegisterDriver:        c.CreateRegisterDriverCommandHandler(),
		UpdateDriverLocation:  c.CreateUpdateDriverLocationCommandHandler(),
		CreateDelivery:        c.CreateCreateDeliveryCommandHandler(),
		AdvanceDeliveryStatus: c.CreateAdvanceDeliveryStatusCommandHandler(),
		CancelDelivery:        c.CreateCancelDeliveryCommandHandler(),
		ReassignDriver:        c.CreateReassignDriverCommandHandler(),
		GetOrder:              c.CreateGetOrderQueryHandler(),
		GetDelivery:           c.CreateGetDeliveryQueryHandler(),
		GetAvailableDrivers:   c.CreateGetAvailableDriversQueryHandler(),
	}, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.uowFactory, c.CreateCreateDeliveryCommandHandler(), c.recorder, jobs.Config{
		AutoDispatchSchedule:   c.config.AutoDispatchSchedule,
		AutoDispatchBatch:      c.config.AutoDispatchBatch,
		ReconciliationSchedule: c.config.ReconciliationSchedule,
	}, c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}
