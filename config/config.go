package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/andrewbenington/group-mix/dialect"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Base64Bytes decodes a standard base64 environment value.
type Base64Bytes []byte

func (b *Base64Bytes) Decode(value string) error {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return fmt.Errorf("decode base64: %w", err)
	}
	*b = decoded
	return nil
}

type Config struct {
	PostgresHost    string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort    string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser    string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPass    string `envconfig:"POSTGRES_PASS"`
	PostgresDB      string `envconfig:"POSTGRES_DB" default:"group_mix"`
	StoreDriver     string `envconfig:"STORE_DRIVER" default:"sqlite"`
	StorePath       string `envconfig:"STORE_PATH" default:"./data/group-mix.db"`
	SpotifyClientID string `envconfig:"SPOTIFY_ID"`
	SpotifySecret   string `envconfig:"SPOTIFY_SECRET"`
	SpotifyRedirect string `envconfig:"SPOTIFY_REDIRECT" default:"http://localhost:8080/callback"`

	EncryptionKey string      `envconfig:"ENCRYPTION_KEY"`
	SigningSecret Base64Bytes `envconfig:"SIGNING_SECRET"`

	AllowRemerge     bool          `envconfig:"ALLOW_REMERGE" default:"false"`
	RoomTTL          time.Duration `envconfig:"ROOM_TTL" default:"24h"`
	CookieTTL        time.Duration `envconfig:"COOKIE_TTL" default:"24h"`
	RemoteTimeout    time.Duration `envconfig:"REMOTE_TIMEOUT" default:"10s"`
	RemoteRate       float64       `envconfig:"REMOTE_RATE" default:"10"`
	RemoteBurst      int           `envconfig:"REMOTE_BURST" default:"10"`
	TopTrackLimit    int           `envconfig:"TOP_TRACK_LIMIT" default:"20"`
	DefaultTimeRange string        `envconfig:"DEFAULT_TIME_RANGE" default:"medium_term"`

	LockType      string `envconfig:"LOCK_TYPE" default:"memory"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	PublicURL string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
	Env       string `envconfig:"ENV" default:"LOCAL"`
}

var (
	config Config
)

func init() {
	// .env is optional
	_ = godotenv.Load()
	if err := Load(); err != nil {
		panic(err)
	}
}

// Load reads the environment into the package config.
func Load() error {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, err := dialect.Parse(c.StoreDriver); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	config = c
	return nil
}

func GetEncryptionKey() string {
	return config.EncryptionKey
}

func GetSigningSecret() []byte {
	return config.SigningSecret
}

// SetSigningSecret replaces a missing secret at startup.
func SetSigningSecret(secret []byte) {
	config.SigningSecret = secret
}

func GetSpotifyClientID() string {
	return config.SpotifyClientID
}

func GetSpotifyClientSecret() string {
	return config.SpotifySecret
}

func GetSpotifyRedirect() string {
	return config.SpotifyRedirect
}

func GetStoreDialect() dialect.Dialect {
	d, _ := dialect.Parse(config.StoreDriver)
	return d
}

// GetStoreDSN returns the file path for sqlite and a connection string for
// postgres.
func GetStoreDSN() string {
	if GetStoreDialect() == dialect.SQLite {
		return config.StorePath
	}
	return GetDBString()
}

func GetDBString() string {
	switch strings.ToUpper(config.Env) {
	case "LOCAL":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s connect_timeout=5 sslmode=disable",
			config.PostgresHost, config.PostgresPort, config.PostgresUser, config.PostgresPass, config.PostgresDB)
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s connect_timeout=5",
			config.PostgresHost, config.PostgresPort, config.PostgresUser, config.PostgresPass, config.PostgresDB)
	}
}

func GetAllowRemerge() bool {
	return config.AllowRemerge
}

func GetRoomTTL() time.Duration {
	return config.RoomTTL
}

func GetCookieTTL() time.Duration {
	return config.CookieTTL
}

func GetRemoteTimeout() time.Duration {
	return config.RemoteTimeout
}

func GetRemoteRate() float64 {
	return config.RemoteRate
}

func GetRemoteBurst() int {
	return config.RemoteBurst
}

func GetTopTrackLimit() int {
	return config.TopTrackLimit
}

func GetDefaultTimeRange() string {
	return config.DefaultTimeRange
}

func GetLockType() string {
	return strings.ToLower(config.LockType)
}

func GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", config.RedisHost, config.RedisPort)
}

func GetRedisPassword() string {
	return config.RedisPassword
}

func GetRedisDB() int {
	return config.RedisDB
}

func GetPublicURL() string {
	return strings.TrimRight(config.PublicURL, "/")
}

func GetIsProd() bool {
	return strings.ToUpper(config.Env) == "PROD"
}
