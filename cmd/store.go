package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/viktsys/tradestore/config"
	"github.com/viktsys/tradestore/database"
	"github.com/viktsys/tradestore/events"
	"github.com/viktsys/tradestore/storage"
)

func openStore(cfg config.Config, log logrus.FieldLogger) (storage.Store, error) {
	log = log.WithField("backend", cfg.StorageBackend)

	switch cfg.StorageBackend {
	case config.BackendFile:
		log.WithField("dir", cfg.TradesDir).Info("Using file storage")
		store, err := storage.NewFileStore(cfg.TradesDir, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendPostgres:
		log.Info("Initializing database...")
		db, err := database.Open(cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return database.NewGormStore(db), nil
	case config.BackendBadger:
		log.WithField("dir", cfg.BadgerDir).Info("Using badger storage")
		store, err := storage.OpenBadgerStore(storage.BadgerOptions{Path: cfg.BadgerDir}, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func openPublisher(cfg config.Config, log logrus.FieldLogger) (events.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Debug("No Kafka brokers configured, trade events are not published")
		return events.NopPublisher{}, nil
	}

	publisher, err := events.NewKafkaPublisher(
		events.WithBrokers(cfg.KafkaBrokers...),
		events.WithTopic(cfg.KafkaTopic),
	)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"brokers": cfg.KafkaBrokers,
		"topic":   cfg.KafkaTopic,
	}).Info("Publishing trade events to Kafka")
	return publisher, nil
}
