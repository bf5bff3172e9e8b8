package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"session-portal/internal/auth"
	"session-portal/internal/repository"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		Issuer          string
		BcryptCost      int
		CredentialMatch string
		FoldCase        bool
	}
	Cookie struct {
		Name     string
		Domain   string
		SameSite string
		Secure   bool
	}
	CORS struct {
		AllowOrigins []string
	}
	Log struct {
		Level  string
		Format string
	}
}

// TokenTTL is the lifetime of session tokens and of the cookie carrying them.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// LookupPolicy is the credential lookup contract configured for the store.
func (c Config) LookupPolicy() (repository.LookupPolicy, error) {
	match, err := repository.ParseCredentialMatch(c.Auth.CredentialMatch)
	if err != nil {
		return repository.LookupPolicy{}, err
	}
	return repository.LookupPolicy{Match: match, FoldCase: c.Auth.FoldCase}, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth jwt secret is required")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth token ttl must be positive")
	}
	if _, err := c.LookupPolicy(); err != nil {
		return err
	}
	if auth.ParseSameSite(c.Cookie.SameSite) == http.SameSiteNoneMode && !c.Cookie.Secure {
		return fmt.Errorf("cookie samesite=none requires cookie secure=true")
	}
	return nil
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.SetEnvPrefix("SESSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// the file is optional, a broken one is not
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORS.AllowOrigins = splitList(cfg.CORS.AllowOrigins)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/session.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 7*24*60)
	v.SetDefault("auth.issuer", "session-portal")
	v.SetDefault("auth.bcryptcost", 12)
	v.SetDefault("auth.credentialmatch", string(repository.MatchEither))
	v.SetDefault("auth.foldcase", true)
	v.SetDefault("cookie.name", "token")
	v.SetDefault("cookie.domain", "")
	v.SetDefault("cookie.samesite", "lax")
	v.SetDefault("cookie.secure", false)
	v.SetDefault("cors.alloworigins", []string{"http://localhost:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// splitList accepts both list values and a single comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
