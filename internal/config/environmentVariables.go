package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	NoAuthBypass = true //flip for local testing without a token
	AuthToken    = ""

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//pipeline
	ChunkMaxTokens     = 512
	ChunkOverlapTokens = 50
	EmbeddingBatchSize = 32

	//stage progress percentages reported to subscribers
	ProgressExtracting  = 20
	ProgressClassifying = 35
	ProgressChunking    = 50
	ProgressEmbedding   = 70
	ProgressStoring     = 85
	ProgressComplete    = 100

	//TODO:this will differ based on the provider
	EmbeddingOutputDimensionality int32 = 1536
	ChunkCollectionName                 = "document-chunks"

	//embedding provider: "google" or "openai"
	EmbeddingProvider     = "google"
	GoogleEmbeddingModel  = "gemini-embedding-001"
	GoogleEmbeddingAPIKey = ""
	OpenAIEmbeddingModel  = "text-embedding-3-small"
	OpenAIAPIKey          = ""

	//one run covers extraction through vector upsert, large PDFs included
	PipelineRunTimeout = 10 * time.Minute

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//upload limits
	MaxUploadSizeBytes = 32 << 20 //32mb
	UploadDirName      = "document_storage"

	//chunk listing
	ChunkListDefaultLimit = 100

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1 //2-5 is preferred for prod according to documentation
	QdrantKeepAliveTimeout  = 30 * time.Second

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisDocumentStore = 0
	RedisJobStore      = 1

	//redis timeouts
	RedisDocumentStoreTTL time.Duration = 0 //documents live until deleted
	RedisJobStoreTTL                    = 24 * time.Hour
)
