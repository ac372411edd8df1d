// Package app opens the backends selected in the configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"controlling_irrigation/internal/config"
	"controlling_irrigation/internal/relay"
	"controlling_irrigation/internal/repository"
)

// OpenStore returns the document store named by store.type. db is only used
// by the sqlite store.
func OpenStore(ctx context.Context, cfg *config.Config, db *sql.DB) (repository.DocumentStore, error) {
	switch cfg.Store.Type {
	case "redis":
		return repository.NewRedisStore(ctx, repository.RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Store.KeyPrefix,
		})
	case "bolt":
		return repository.NewBoltStore(cfg.Bolt.Path, cfg.Store.KeyPrefix)
	case "sqlite":
		return repository.NewSQLiteStore(db, cfg.Store.KeyPrefix), nil
	case "memory":
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

// Board is a relay driver together with its release function.
type Board struct {
	relay.Driver
	Shutdown func() error
}

// OpenDriver returns the relay board named by driver.type.
func OpenDriver(cfg *config.Config) (*Board, error) {
	switch cfg.Driver.Type {
	case "memory":
		return &Board{Driver: relay.NewBank(), Shutdown: func() error { return nil }}, nil
	case "serial":
		b, err := relay.OpenSerialBoard(cfg.Driver.Serial.Port, cfg.Driver.Serial.Baud)
		if err != nil {
			return nil, err
		}
		return &Board{Driver: b, Shutdown: b.Shutdown}, nil
	case "mqtt":
		m := cfg.Driver.MQTT
		b, err := relay.ConnectMQTTBoard(relay.MQTTConfig{
			Broker:      m.Broker,
			ClientID:    m.ClientID,
			Username:    m.Username,
			Password:    m.Password,
			TopicPrefix: m.TopicPrefix,
		})
		if err != nil {
			return nil, err
		}
		return &Board{Driver: b, Shutdown: b.Shutdown}, nil
	default:
		return nil, fmt.Errorf("unknown driver type %q", cfg.Driver.Type)
	}
}
