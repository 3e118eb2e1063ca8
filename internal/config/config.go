package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int           `mapstructure:"port"`
		ReadTimeout        time.Duration `mapstructure:"read_timeout"`
		WriteTimeout       time.Duration `mapstructure:"write_timeout"`
		CorsAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string      `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string      `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		MaxConns int32  `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	JWT struct {
		Secret string `mapstructure:"secret"`
		Issuer string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Membership struct {
		GraceDays       int      `mapstructure:"grace_days"`
		LapsedAfterDays int      `mapstructure:"lapsed_after_days"`
		Timezone        string   `mapstructure:"timezone"`
		MemberTag       string   `mapstructure:"member_tag"`
		ProspectTag     string   `mapstructure:"prospect_tag"`
		SKUs            []string `mapstructure:"skus"`
		ProductKeyword  string   `mapstructure:"product_keyword"`
	} `mapstructure:"membership"`

	Shopify struct {
		Shop        string        `mapstructure:"shop"`
		AccessToken string        `mapstructure:"access_token"`
		APIVersion  string        `mapstructure:"api_version"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"shopify"`

	Email struct {
		ResendAPIKey string `mapstructure:"resend_api_key"`
		From         string `mapstructure:"from"`
		ReplyTo      string `mapstructure:"reply_to"`
		Concurrency  int    `mapstructure:"concurrency"`
	} `mapstructure:"email"`

	Sync struct {
		Timeout  time.Duration `mapstructure:"timeout"`
		Schedule string        `mapstructure:"schedule"`
		LockTTL  time.Duration `mapstructure:"lock_ttl"`
	} `mapstructure:"sync"`

	Backup struct {
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		Bucket    string `mapstructure:"bucket"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Prefix    string `mapstructure:"prefix"`
		Schedule  string `mapstructure:"schedule"`
	} `mapstructure:"backup"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(configPath())

	// Auto bind environment variables (server.port -> SERVER_PORT)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	applyEnvOverrides(&cfg)
	return &cfg
}

func configPath() string {
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 6*time.Minute)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "cottonwood")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("jwt.issuer", "cottonwood-admin")

	v.SetDefault("membership.grace_days", 30)
	v.SetDefault("membership.lapsed_after_days", 365)
	v.SetDefault("membership.timezone", "America/Denver")
	v.SetDefault("membership.member_tag", "Quack")
	v.SetDefault("membership.prospect_tag", "Quack Prospect")
	v.SetDefault("membership.product_keyword", "Club Cottonwood")

	v.SetDefault("shopify.api_version", "2024-01")
	v.SetDefault("shopify.timeout", 30*time.Second)

	v.SetDefault("email.from", "Club Cottonwood <club@cottonwoodinthepark.com>")
	v.SetDefault("email.concurrency", 5)

	v.SetDefault("sync.timeout", 5*time.Minute)
	v.SetDefault("sync.schedule", "@every 1h")
	v.SetDefault("sync.lock_ttl", 10*time.Minute)

	v.SetDefault("backup.region", "auto")
	v.SetDefault("backup.prefix", "club-cottonwood/")
	v.SetDefault("backup.schedule", "0 3 * * *")
}

// applyEnvOverrides maps the conventional deployment variables onto the config
func applyEnvOverrides(cfg *Config) {
	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	// JWT secret is optional; without it the admin API runs unauthenticated
	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		if cfg.JWT.Secret == "" {
			log.Printf("[Config] JWT_SECRET not set, admin API authentication disabled")
		}
	}

	if shop := os.Getenv("SHOPIFY_SHOP"); shop != "" {
		cfg.Shopify.Shop = shop
	}
	if token := os.Getenv("SHOPIFY_ACCESS_TOKEN"); token != "" {
		cfg.Shopify.AccessToken = token
	}

	if key := os.Getenv("RESEND_API_KEY"); key != "" {
		cfg.Email.ResendAPIKey = key
	}

	// Backup target (Cloudflare R2 or any S3-compatible store)
	if endpoint := os.Getenv("R2_ENDPOINT"); endpoint != "" {
		cfg.Backup.Endpoint = endpoint
	}
	if bucket := os.Getenv("R2_BUCKET"); bucket != "" {
		cfg.Backup.Bucket = bucket
	}
	if key := os.Getenv("R2_ACCESS_KEY"); key != "" {
		cfg.Backup.AccessKey = key
	}
	if secret := os.Getenv("R2_SECRET_KEY"); secret != "" {
		cfg.Backup.SecretKey = secret
	}
}

// ShopifyEnabled reports whether commerce credentials are configured
func (c *Config) ShopifyEnabled() bool {
	return c.Shopify.Shop != "" && c.Shopify.AccessToken != ""
}

// BackupEnabled reports whether a backup bucket is configured
func (c *Config) BackupEnabled() bool {
	return c.Backup.Bucket != "" && c.Backup.AccessKey != "" && c.Backup.SecretKey != ""
}
