package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nestor-churin/AlcoMeterBot/internal/catalog"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Log          LogConfig        `yaml:"log"`
	Bot          BotConfig        `yaml:"bot"`
	Database     DatabaseConfig   `yaml:"database"`
	Redis        RedisConfig      `yaml:"redis"`
	S3           S3Config         `yaml:"s3"`
	HTTP         HTTPConfig       `yaml:"http"`
	Timezone     string           `yaml:"timezone"`
	AlcoholTypes *catalog.Catalog `yaml:"alcohol_types"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type BotConfig struct {
	Token              string        `yaml:"token"`
	AdminIDs           []int64       `yaml:"admin_ids"`
	PollTimeoutSeconds int           `yaml:"poll_timeout_seconds"`
	Workers            int           `yaml:"workers"`
	SessionTTL         time.Duration `yaml:"session_ttl"`
	SweepInterval      time.Duration `yaml:"sweep_interval"`
	NotifyRate         float64       `yaml:"notify_rate"`
	NotifyBurst        int           `yaml:"notify_burst"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Bot: BotConfig{
			PollTimeoutSeconds: 30,
			Workers:            4,
			SessionTTL:         5 * time.Minute,
			SweepInterval:      time.Minute,
			NotifyRate:         20,
			NotifyBurst:        5,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "data/alcometer.db",
		},
		HTTP: HTTPConfig{
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Timezone:     "Europe/Kyiv",
		AlcoholTypes: defaultCatalog(),
	}
}

func defaultCatalog() *catalog.Catalog {
	return catalog.MustNew(
		catalog.Category{ID: "beer", Name: "Пиво", Strength: 5, Subtypes: []string{"Світле", "Темне", "Нефільтроване"}, DefaultVolume: 500},
		catalog.Category{ID: "wine", Name: "Вино", Strength: 12, Subtypes: []string{"Червоне", "Біле", "Рожеве", "Ігристе"}, DefaultVolume: 150},
		catalog.Category{ID: "vodka", Name: "Горілка", Strength: 40, Subtypes: []string{"Класична", "Настоянка"}, DefaultVolume: 50},
		catalog.Category{ID: "whiskey", Name: "Віскі", Strength: 40, Subtypes: []string{"Скотч", "Бурбон", "Ірландський"}, DefaultVolume: 50},
		catalog.Category{ID: "cider", Name: "Сидр", Strength: 6, Subtypes: []string{"Яблучний", "Грушевий"}, DefaultVolume: 500},
	)
}

// Load applies the YAML file at path (a missing file is fine) and then
// environment overrides on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database dsn is empty")
	}
	if c.Bot.SessionTTL <= 0 {
		return errors.New("bot.session_ttl must be positive")
	}
	if c.Bot.Workers <= 0 {
		return errors.New("bot.workers must be positive")
	}
	if c.Bot.NotifyRate <= 0 {
		return errors.New("bot.notify_rate must be positive")
	}
	if c.AlcoholTypes.Len() == 0 {
		return errors.New("alcohol_types is empty")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return nil
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) ArchiveEnabled() bool {
	return strings.TrimSpace(c.S3.Endpoint) != "" && strings.TrimSpace(c.S3.Bucket) != ""
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = strings.TrimSpace(v)
	}
	if err := overrideIDs("ADMIN_IDS", &cfg.Bot.AdminIDs); err != nil {
		return err
	}
	if err := overrideInt("POLL_TIMEOUT_SECONDS", &cfg.Bot.PollTimeoutSeconds); err != nil {
		return err
	}
	if err := overrideInt("BOT_WORKERS", &cfg.Bot.Workers); err != nil {
		return err
	}
	if err := overrideDuration("SESSION_TTL", &cfg.Bot.SessionTTL); err != nil {
		return err
	}

	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.S3.SecretKey = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if err := overrideBool("S3_USE_SSL", &cfg.S3.UseSSL); err != nil {
		return err
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}

	return nil
}

func overrideIDs(key string, target *[]int64) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	ids := make([]int64, 0, 4)
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		ids = append(ids, id)
	}
	*target = ids
	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}

func overrideBool(key string, target *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s bool: %w", key, err)
	}
	*target = b
	return nil
}
