package configuration

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"reelshare/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Logger      Logger      `json:"logger"`
	Resolver    Resolver    `json:"resolver"`
	Worker      Worker      `json:"worker"`
	Reels       Reels       `json:"reels"`
	Push        Push        `json:"push"`
	Events      Events      `json:"events"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
}

type App struct {
	Port         int      `json:"port"`
	SecretKey    string   `json:"secretKey"`
	TokenTTLHour int      `json:"tokenTTLHour"`
	AllowOrigins []string `json:"allowOrigins"`
	TLSEnabled   bool     `json:"tlsEnabled"`
	TLSCertFile  string   `json:"tlsCertFile"`
	TLSKeyFile   string   `json:"tlsKeyFile"`
}

type Database struct {
	Mongo Db `json:"mongo"`
}

type Db struct {
	URI      string `json:"uri"`
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

type Logger struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

// Resolver configures the reel resolution sources.
type Resolver struct {
	Order           []string `json:"order"`
	DirectEndpoint  string   `json:"directEndpoint"`
	JSONBaseURL     string   `json:"jsonBaseURL"`
	OEmbedURL       string   `json:"oembedURL"`
	PageBaseURL     string   `json:"pageBaseURL"`
	TimeoutSeconds  int      `json:"timeoutSeconds"`
	CacheTTLSeconds int      `json:"cacheTTLSeconds"`
}

type Worker struct {
	QueueSize   int `json:"queueSize"`
	Concurrency int `json:"concurrency"`
}

type Reels struct {
	// DuplicatePolicy is "global" or "submitter".
	DuplicatePolicy      string `json:"duplicatePolicy"`
	BulkLimit            int    `json:"bulkLimit"`
	PageSize             int64  `json:"pageSize"`
	SweepIntervalSeconds int    `json:"sweepIntervalSeconds"`
	StaleAfterSeconds    int    `json:"staleAfterSeconds"`
	SweepBatch           int64  `json:"sweepBatch"`
	SubmitLimit          int    `json:"submitLimit"`
	SubmitWindowSeconds  int    `json:"submitWindowSeconds"`
}

type Push struct {
	VAPIDPublicKey  string `json:"vapidPublicKey"`
	VAPIDPrivateKey string `json:"vapidPrivateKey"`
	Subject         string `json:"subject"`
	Icon            string `json:"icon"`
	Badge           string `json:"badge"`
	TTL             int    `json:"ttl"`
}

type Events struct {
	// Provider is "pubsub", "servicebus" or empty for none.
	Provider string `json:"provider"`
	Topic    string `json:"topic"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
}

type ServiceBus struct {
	Namespace        string `json:"namespace"`
	ConnectionString string `json:"connectionString"`
}

const (
	DuplicatePolicyGlobal    = "global"
	DuplicatePolicySubmitter = "submitter"
)

var C Config

func init() {
	Load()
}

// Load reads env files (without overriding the process environment), then
// the viper config, then applies env overrides and defaults to C.
func Load(envFiles ...string) {
	loadEnvFiles(envFiles...)
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initResolver(&C)
	initReels(&C)
	initPush(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	logger.Configure(C.Logger.Level, C.Logger.Format)
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if v := os.Getenv("MONGO_URI"); v != "" {
		C.Database.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DB_NAME"); v != "" {
		C.Database.Mongo.Name = v
	}
	if C.Database.Mongo.Name == "" {
		C.Database.Mongo.Name = "reelshare"
	}
	if C.Database.Mongo.URI == "" {
		C.Database.Mongo.URI = C.Database.Mongo.BuildURI()
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, found := strings.Cut(v, ":")
		C.RedisClient.Host = host
		if found {
			C.RedisClient.Port = port
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		C.RedisClient.Password = v
	}
}

// BuildURI assembles a connection string from the discrete fields, defaulting to a local server.
func (d Db) BuildURI() string {
	host := d.Host
	if host == "" {
		host = "localhost"
	}
	port := d.Port
	if port == "" {
		port = "27017"
	}
	if d.User != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s", d.User, d.Password, host, port)
	}
	return fmt.Sprintf("mongodb://%s:%s", host, port)
}

// Addr returns host:port, or empty when Redis is not configured.
func (r RedisClient) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return r.Host + ":" + port
}

func (r RedisClient) DB() int {
	n, err := strconv.Atoi(r.DatabaseName)
	if err != nil {
		return 0
	}
	return n
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if C.App.TokenTTLHour <= 0 {
		C.App.TokenTTLHour = 24 * 7
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Error("App.SecretKey not set; provide SECRET_KEY via environment")
	}
}

// Validate reports settings the service refuses to start without.
func (a App) Validate() error {
	if a.SecretKey == "" {
		return errors.New("app.secretKey is empty, set SECRET_KEY")
	}
	return nil
}

func initResolver(C *Config) {
	if len(C.Resolver.Order) == 0 {
		C.Resolver.Order = []string{"direct", "json", "oembed", "html"}
	}
	if v := os.Getenv("DIRECT_RESOLVER_URL"); v != "" {
		C.Resolver.DirectEndpoint = v
	}
	if C.Resolver.TimeoutSeconds <= 0 {
		C.Resolver.TimeoutSeconds = 15
	}
	if C.Resolver.CacheTTLSeconds <= 0 {
		C.Resolver.CacheTTLSeconds = 300
	}
	if C.Worker.QueueSize <= 0 {
		C.Worker.QueueSize = 256
	}
	if C.Worker.Concurrency <= 0 {
		C.Worker.Concurrency = 4
	}
}

func initReels(C *Config) {
	if C.Reels.DuplicatePolicy != DuplicatePolicySubmitter {
		C.Reels.DuplicatePolicy = DuplicatePolicyGlobal
	}
	if C.Reels.BulkLimit <= 0 {
		C.Reels.BulkLimit = 50
	}
	if C.Reels.PageSize <= 0 {
		C.Reels.PageSize = 50
	}
	if C.Reels.SweepIntervalSeconds <= 0 {
		C.Reels.SweepIntervalSeconds = 300
	}
	if C.Reels.StaleAfterSeconds <= 0 {
		C.Reels.StaleAfterSeconds = 600
	}
	if C.Reels.SweepBatch <= 0 {
		C.Reels.SweepBatch = 50
	}
	if C.Reels.SubmitWindowSeconds <= 0 {
		C.Reels.SubmitWindowSeconds = 60
	}
}

func initPush(C *Config) {
	if v := os.Getenv("VAPID_PUBLIC_KEY"); v != "" {
		C.Push.VAPIDPublicKey = v
	}
	if v := os.Getenv("VAPID_PRIVATE_KEY"); v != "" {
		C.Push.VAPIDPrivateKey = v
	}
	if v := os.Getenv("VAPID_SUBJECT"); v != "" {
		C.Push.Subject = v
	}
	if C.Push.Subject == "" {
		C.Push.Subject = "mailto:admin@reelshare.local"
	}
	if C.Push.Icon == "" {
		C.Push.Icon = "/icon-192x192.png"
	}
	if C.Push.Badge == "" {
		C.Push.Badge = "/badge-72x72.png"
	}
	if C.Push.TTL <= 0 {
		C.Push.TTL = 60 * 60 * 24
	}
	if C.Push.VAPIDPublicKey == "" || C.Push.VAPIDPrivateKey == "" {
		logger.GetLogger().Warn("VAPID keys not set; push notifications are disabled")
	}
}

func (r Resolver) Timeout() time.Duration  { return time.Duration(r.TimeoutSeconds) * time.Second }
func (r Resolver) CacheTTL() time.Duration { return time.Duration(r.CacheTTLSeconds) * time.Second }

func (r Reels) SweepInterval() time.Duration {
	return time.Duration(r.SweepIntervalSeconds) * time.Second
}

func (r Reels) StaleAfter() time.Duration { return time.Duration(r.StaleAfterSeconds) * time.Second }

func (r Reels) SubmitWindow() time.Duration {
	return time.Duration(r.SubmitWindowSeconds) * time.Second
}

func (p Push) Enabled() bool { return p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != "" }
