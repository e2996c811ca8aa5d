package buildCFG

import (
	"fmt"
	"time"

	"entrypass/internal/mailer"
	"entrypass/internal/service"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type AuthConfig struct {
	SessionSecret  string
	AdminEmail     string
	AdminLoginCode string
	SecureCookies  bool
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	return ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("database.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("database.master_dsn is required")
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("database.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: time.Duration(cfg.GetInt("database.conn_max_lifetime_minutes")) * time.Minute,
	}

	log.Info().Msg("database configuration loaded")
	return masterDSN, nil, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Url:      cfg.GetString("rabbit.url"),
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if rc.Url == "" {
		return RabbitConfig{}, fmt.Errorf("rabbit.url is required")
	}
	if rc.Exchange == "" || rc.Queue == "" {
		return RabbitConfig{}, fmt.Errorf("rabbit.exchange and rabbit.queue are required")
	}

	log.Info().Msg("rabbit configuration loaded")
	return rc, nil
}

func BuildSMTPConfig(cfg *config.Config, log *zerolog.Logger) (mailer.Config, error) {
	mc := mailer.Config{
		Host:     cfg.GetString("smtp.host"),
		Port:     cfg.GetInt("smtp.port"),
		From:     cfg.GetString("smtp.from"),
		Password: cfg.GetString("smtp.password"),
	}
	if mc.Host == "" || mc.Port == 0 {
		return mailer.Config{}, fmt.Errorf("smtp.host and smtp.port are required")
	}

	log.Info().Msg("smtp configuration loaded")
	return mc, nil
}

func BuildEventConfig(cfg *config.Config, log *zerolog.Logger) (service.EventConfig, error) {
	ec := service.EventConfig{
		Slug:          cfg.GetString("event.slug"),
		Name:          cfg.GetString("event.name"),
		PhysicalLimit: cfg.GetInt("event.physical_limit"),
	}
	if ec.Slug == "" || ec.Name == "" {
		return service.EventConfig{}, fmt.Errorf("event.slug and event.name are required")
	}
	if ec.PhysicalLimit <= 0 {
		return service.EventConfig{}, fmt.Errorf("event.physical_limit must be positive")
	}

	date, err := time.Parse(time.RFC3339, cfg.GetString("event.date"))
	if err != nil {
		return service.EventConfig{}, fmt.Errorf("event.date must be RFC3339: %w", err)
	}
	ec.Date = date

	log.Info().Str("slug", ec.Slug).Int("physical_limit", ec.PhysicalLimit).Msg("event configuration loaded")
	return ec, nil
}

func BuildAuthConfig(cfg *config.Config, log *zerolog.Logger) (AuthConfig, error) {
	ac := AuthConfig{
		SessionSecret:  cfg.GetString("auth.session_secret"),
		AdminEmail:     cfg.GetString("auth.admin_email"),
		AdminLoginCode: cfg.GetString("auth.admin_login_code"),
		SecureCookies:  cfg.GetBool("auth.secure_cookies"),
	}
	if ac.SessionSecret == "" {
		return AuthConfig{}, fmt.Errorf("auth.session_secret is required")
	}

	log.Info().Bool("secure_cookies", ac.SecureCookies).Msg("auth configuration loaded")
	return ac, nil
}
