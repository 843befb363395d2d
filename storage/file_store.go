package storage

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/viktsys/tradestore/models"
)

const (
	fileExt = ".json"
	tmpExt  = ".tmp"
)

// FileStore keeps one indented JSON document per trade, named <trade_id>.json,
// in a single directory. Several processes may share the directory; each
// write is atomic but there is no locking across writers.
type FileStore struct {
	dir string
	log logrus.FieldLogger
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, log logrus.FieldLogger) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage: trades directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newStorageError("init", "", errors.Wrapf(err, "create trades directory %s", dir))
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Dir returns the directory trades are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

func (s *FileStore) Create(ctx context.Context, fields models.TradeFields) (models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return models.Trade{}, err
	}

	trade := models.NewTrade(NewTradeID(), fields, Now())
	if err := s.write(trade); err != nil {
		return models.Trade{}, newStorageError("create", trade.TradeID, err)
	}

	s.log.WithField("trade_id", trade.TradeID).Debug("trade file written")
	return trade, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return models.Trade{}, err
	}
	if !ValidID(id) {
		return models.Trade{}, ErrNotFound
	}
	return s.read(id)
}

// List scans the directory. Files that fail to decode are logged and skipped;
// files removed between the scan and the read are skipped silently.
func (s *FileStore) List(ctx context.Context) ([]models.Trade, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, newStorageError("list", "", errors.Wrap(err, "read trades directory"))
	}

	trades := make([]models.Trade, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != fileExt {
			continue
		}

		trade, err := s.read(strings.TrimSuffix(name, fileExt))
		switch {
		case err == nil:
			trades = append(trades, trade)
		case errors.Is(err, ErrNotFound):
		case errors.Is(err, ErrCorruptData):
			s.log.WithError(err).WithField("file", name).Warn("skipping corrupt trade file")
		default:
			return nil, err
		}
	}

	return trades, nil
}

func (s *FileStore) Update(ctx context.Context, id string, fields models.TradeFields) (models.Trade, error) {
	if err := ctx.Err(); err != nil {
		return models.Trade{}, err
	}
	if !ValidID(id) {
		return models.Trade{}, ErrNotFound
	}

	existing, err := s.read(id)
	if err != nil {
		return models.Trade{}, err
	}

	updated := existing.WithUpdate(fields, Now())
	if err := s.write(updated); err != nil {
		return models.Trade{}, newStorageError("update", id, err)
	}
	return updated, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidID(id) {
		return ErrNotFound
	}

	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return newStorageError("delete", id, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read(id string) (models.Trade, error) {
	b, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Trade{}, ErrNotFound
		}
		return models.Trade{}, newStorageError("read", id, err)
	}

	var trade models.Trade
	if err := json.Unmarshal(b, &trade); err != nil {
		return models.Trade{}, corrupt(id, err)
	}
	if trade.TradeID != id {
		return models.Trade{}, corrupt(id, errors.Errorf("file holds trade_id %q", trade.TradeID))
	}
	return trade, nil
}

// write replaces the trade's file with a temp-file-then-rename so readers
// never observe a partial document.
func (s *FileStore) write(trade models.Trade) error {
	b, err := json.MarshalIndent(trade, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode trade")
	}

	tmp, err := os.CreateTemp(s.dir, "."+trade.TradeID+"-*"+tmpExt)
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	if err := os.Rename(tmpName, s.path(trade.TradeID)); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
