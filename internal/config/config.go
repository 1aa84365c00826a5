package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Postgres  DBConfig
	Redis     RedisConfig
	S3        S3Config
	Queue     QueueConfig
	Worker    WorkerConfig
	Search    SearchConfig
	Embedding EmbeddingConfig
	Upload    UploadConfig
	Logger    Logger
	Metrics   MetricsConfig
	Tracing   TracingConfig
}

type ServerConfig struct {
	AppVersion   string
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	PgDriver string
	// MaxOpenConns 0 falls back to the package default.
	MaxOpenConns int
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	UseTLS        bool
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// QueueConfig selects the work queue transport. Backend is "redis" or "sqs".
type QueueConfig struct {
	Backend string
	Name    string
	SQSURL  string
	// Redis transport only: messages received more often than this go to the
	// dead-letter list. 0 disables dead-lettering.
	MaxReceiveCount int
}

type WorkerConfig struct {
	MaxMessages              int
	WaitTimeSeconds          int
	VisibilityTimeoutSeconds int
	PollIntervalSeconds      int
	SampleStride             int
	EmbeddingBatchSize       int
	IndexBatchSize           int
	MaxConsecutiveErrors     int
	TempDir                  string
	MaxCPUUsage              float64
}

type SearchConfig struct {
	Oversample         int
	MinPool            int
	MaxPool            int
	DefaultThreshold   float64
	DefaultMaxPerVideo int
	DefaultMaxVideos   int
}

type EmbeddingConfig struct {
	URL            string
	Dimension      int
	TimeoutSeconds int
	FrameMaxSide   int
}

type UploadConfig struct {
	MaxVideoSizeMB   int64
	MaxVideosLimit   int
	SupportedFormats []string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

type MetricsConfig struct {
	Port int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetDefaults registers every tunable so that environment overrides work
// even when the key is absent from the config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.appVersion", "1.0.0")
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.readTimeout", 10)
	v.SetDefault("server.writeTimeout", 60)
	v.SetDefault("server.idleTimeout", 120)

	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslMode", "disable")
	v.SetDefault("postgres.pgDriver", "pgx")
	v.SetDefault("postgres.maxOpenConns", 0)

	v.SetDefault("redis.redisAddr", ":6379")
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.poolTimeout", 30)

	v.SetDefault("s3.region", "us-west-2")

	v.SetDefault("queue.backend", "redis")
	v.SetDefault("queue.name", "video_jobs")
	v.SetDefault("queue.maxReceiveCount", 5)

	v.SetDefault("worker.maxMessages", 1)
	v.SetDefault("worker.waitTimeSeconds", 20)
	v.SetDefault("worker.visibilityTimeoutSeconds", 900)
	v.SetDefault("worker.pollIntervalSeconds", 10)
	v.SetDefault("worker.sampleStride", 30)
	v.SetDefault("worker.embeddingBatchSize", 8)
	v.SetDefault("worker.indexBatchSize", 100)
	v.SetDefault("worker.maxConsecutiveErrors", 10)
	v.SetDefault("worker.tempDir", "")
	v.SetDefault("worker.maxCPUUsage", 0)

	v.SetDefault("search.oversample", 5)
	v.SetDefault("search.minPool", 50)
	v.SetDefault("search.maxPool", 500)
	v.SetDefault("search.defaultThreshold", 0.25)
	v.SetDefault("search.defaultMaxPerVideo", 5)
	v.SetDefault("search.defaultMaxVideos", 10)

	v.SetDefault("embedding.dimension", 512)
	v.SetDefault("embedding.timeoutSeconds", 60)
	v.SetDefault("embedding.frameMaxSide", 336)

	v.SetDefault("upload.maxVideoSizeMB", 500)
	v.SetDefault("upload.maxVideosLimit", 10)
	v.SetDefault("upload.supportedFormats", []string{"mp4", "avi", "mov", "mkv"})

	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.level", "info")

	v.SetDefault("metrics.port", 9100)

	v.SetDefault("tracing.serviceName", "frame-search")
}
