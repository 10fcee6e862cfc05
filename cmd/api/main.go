// @title           Document Processing API
// @version         1.0
// @description     This API handles asynchronous document ingestion: extraction, classification, chunking, embedding and vector storage, with live progress streaming.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/data/chunkStore/qdrantDB"
	"github.com/akolanti/DocPipeAPI/internal/data/store"
	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	jobmodel "github.com/akolanti/DocPipeAPI/internal/domain/jobModel"
	"github.com/akolanti/DocPipeAPI/internal/handlers"
	"github.com/akolanti/DocPipeAPI/internal/job"
	"github.com/akolanti/DocPipeAPI/internal/notify"
	"github.com/akolanti/DocPipeAPI/internal/pipeline"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/classify/keywordClassifier"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/embedding"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/embedding/googleEmbedding"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/embedding/openaiEmbedding"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/extract/docExtractor"
	"github.com/akolanti/DocPipeAPI/internal/pipeline/splitter/tokenSplitter"
	"github.com/akolanti/DocPipeAPI/internal/server"
	"github.com/akolanti/DocPipeAPI/internal/worker"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and stores
	var jobStore jobmodel.JobStore
	if redisJobs := store.GetRedisJobStore(serviceContext); redisJobs != nil {
		jobStore = redisJobs
	} else {
		logger.Error("Redis job store is offline, falling back to memory")
		jobStore = store.InitInMemoryJobStore()
	}

	var documentStore docModel.DocumentStore
	if redisDocs := store.GetRedisDocumentStore(serviceContext); redisDocs != nil {
		documentStore = redisDocs
	} else {
		logger.Error("Redis document store is offline, falling back to memory")
		documentStore = store.InitInMemoryDocumentStore()
	}

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	chunkStore := qdrantDB.GetQdrantClient(serviceContext)
	embedder := selectEmbedder(serviceContext)

	if chunkStore == nil || embedder == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "ChunkStore", chunkStore != nil, "Embedder", embedder != nil)
		return
	}

	registry := notify.NewRegistry()
	publisher := notify.NewPublisher(registry)

	pipelineService := pipeline.NewService(
		documentStore,
		chunkStore,
		docExtractor.NewDocExtractor(),
		keywordClassifier.NewKeywordClassifier(),
		tokenSplitter.NewTokenSplitter(),
		embedder,
		publisher,
	)

	handlers.InitJobHandler(service, documentStore, chunkStore, registry)

	//init worker pool
	worker.InitServices(service, pipelineService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func selectEmbedder(ctx context.Context) embedding.Embedder {
	if config.EmbeddingProvider == "openai" {
		return openaiEmbedding.GetOpenAIEmbeddingClient(ctx, config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
	}
	return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey)
}
