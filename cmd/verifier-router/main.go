package main

import (
	"os"

	"github.com/boundless-xyz/risc0-solana/internal/api"
	"github.com/boundless-xyz/risc0-solana/internal/chain"
	"github.com/boundless-xyz/risc0-solana/internal/client"
	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/boundless-xyz/risc0-solana/internal/store"
	"github.com/boundless-xyz/risc0-solana/internal/workers"
	appbuilder "github.com/boundless-xyz/risc0-solana/pkg/app_builder"
	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"github.com/boundless-xyz/risc0-solana/pkg/rabbitmq"
	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
	"gorm.io/gorm"
)

const (
	serviceName      = "verifier-router"
	logPublisherName = "LogPublisher"
)

type builder = appbuilder.AppBuilder[RouterConfigJson, RouterConfig]

func main() {
	var (
		db            *gorm.DB
		routerService *router.Router
		encoder       *client.Encoder
	)

	appbuilder.New[RouterConfigJson, RouterConfig]().
		InitLogger(logger.GlobalLoggerConfig{
			Args: []logger.LoggerArg{{Key: "service", Value: serviceName}},
		}).
		ResolveEnvironment().
		LoadConfig(utilities.GetEnvOrDefault("ROUTER_CONFIG_PATH", "config.json")).
		InitRabbitmqConnection().
		InitRabbitmqRegistries().
		WithOption(func(a *builder) {
			logPublisher := rabbitmq.GetPublisher(logPublisherName)
			if logPublisher == nil {
				a.Logger.Warnf("No %s configured, logs stay local", logPublisherName)
				return
			}
			logger.AddSinkToLoggerInstance(a.Logger, rabbitmq.CreateRabbitmqLoggerSink(logPublisher, serviceName))
		}).
		WithOption(func(a *builder) {
			keys, err := chain.LoadKeys(
				os.Getenv("ROUTER_PROGRAM_ID"),
				os.Getenv("INITIAL_OWNER"),
				os.Getenv("OWNER_KEYPAIR_PATH"),
			)
			utilities.FailOnError(err, "Failed to load router keys")
			if keys.Keys.UsesDefaultOwner() {
				a.Logger.Warnf("INITIAL_OWNER is not set, falling back to %s which nobody can sign for", chain.DefaultInitialOwner)
			}

			db, err = store.ConnectToDatabase(a.Config.GetDatabaseConnectionString(), a.Logger)
			utilities.FailOnError(err, "Failed to connect to database")
			routerStore, err := store.NewGormStore(db, keys.Keys.ProgramID)
			utilities.FailOnError(err, "Failed to create router store")

			routerAddress, err := router.RouterAddress(keys.Keys.ProgramID)
			utilities.FailOnError(err, "Failed to derive router address")
			programs, current, err := loadPrograms(a.Config.Verifiers, routerAddress, a.Logger)
			utilities.FailOnError(err, "Failed to load verifier programs")
			encoder = sealEncoder(current, a.Logger)

			var authorities router.AuthorityResolver = programs
			if endpoint := a.Config.SolanaConf.RpcEndpoint; endpoint != "" {
				a.Logger.Infof("Resolving upgrade authorities through %s", endpoint)
				authorities = chain.NewRpcAuthorityResolver(endpoint)
			}

			routerService, err = router.New(router.Config{
				ProgramID:    keys.Keys.ProgramID,
				InitialOwner: keys.Keys.InitialOwner,
				Store:        routerStore,
				Programs:     programs,
				Authorities:  authorities,
				Logger:       a.Logger,
			})
			utilities.FailOnError(err, "Failed to create router")
			a.Logger.Infof("Router %s serving program %s", routerService.Address(), keys.Keys.ProgramID)
		}).
		WithOption(func(a *builder) {
			a.AddWorkerServices(backgroundWorkers(a, db, routerService)...)

			a.AddGinMiddleware(api.Middlewares()...)
			a.AddGinRoutes(api.Routes(api.NewHandler(routerService, encoder))...)
		}).
		InitGinRouter().
		Build().
		Start()
}

// backgroundWorkers skips workers whose queues are not configured.
func backgroundWorkers(a *builder, db *gorm.DB, routerService *router.Router) []rabbitmq.WorkerService {
	var services []rabbitmq.WorkerService

	if publisher := rabbitmq.GetPublisher(workers.EstopEventPublisherName); publisher != nil {
		services = append(services, workers.NewOutboxWorker(
			publisher,
			store.NewOutboxRepository(db),
			a.Config.SolanaConf.OutboxSchedule,
			a.Logger,
		))
	} else {
		a.Logger.Warnf("No %s configured, estop events are only stored", workers.EstopEventPublisherName)
	}

	if consumer := rabbitmq.GetConsumer(workers.EstopProofConsumerName); consumer != nil {
		services = append(services, workers.NewEstopConsumer(routerService, consumer, a.Logger))
	}

	if consumer := rabbitmq.GetConsumer(workers.LogConsumerName); consumer != nil {
		// the sink worker logs without the rabbitmq sink to avoid feeding itself
		workerLogger := logger.New().WithOutput(os.Stdout)
		services = append(services, workers.NewLogSinkWorker(store.NewLogAuditRepository(db), consumer, workerLogger))
	}

	return services
}
