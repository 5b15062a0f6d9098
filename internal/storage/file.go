package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
)

// FileNames maps record sets to file names inside the data directory.
type FileNames struct {
	AuthorizedSenders string
	Contacts          string
	Consent           string
	Sessions          string
	Orders            string
}

// DefaultFileNames are the names used by the existing deployment, so data
// directories can be reused as-is.
func DefaultFileNames() FileNames {
	return FileNames{
		AuthorizedSenders: "authorized_senders.json",
		Contacts:          "contatos-lanchonete.json",
		Consent:           "consent.json",
		Sessions:          "refazer_sessions.json",
		Orders:            "pedidos_refazer.json",
	}
}

// FileStore keeps each record set in its own JSON file and rewrites the
// whole file on every save. A missing file reads as an empty set; a file
// that cannot be decoded is renamed to *.corrupt and reported as an error.
type FileStore struct {
	dir   string
	names FileNames
}

// NewFileStore creates a file store rooted at dir. Empty names fall back to the defaults.
func NewFileStore(dir string, names FileNames) *FileStore {
	def := DefaultFileNames()
	if names.AuthorizedSenders == "" {
		names.AuthorizedSenders = def.AuthorizedSenders
	}
	if names.Contacts == "" {
		names.Contacts = def.Contacts
	}
	if names.Consent == "" {
		names.Consent = def.Consent
	}
	if names.Sessions == "" {
		names.Sessions = def.Sessions
	}
	if names.Orders == "" {
		names.Orders = def.Orders
	}
	return &FileStore{dir: dir, names: names}
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.dir, name)
}

func (f *FileStore) load(name string, dst any) error {
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return f.quarantine(name, fmt.Errorf("decode %s: %w", name, err))
	}
	return nil
}

// quarantine moves an unreadable file aside so the next save cannot
// overwrite the records it still holds.
func (f *FileStore) quarantine(name string, cause error) error {
	src := f.path(name)
	dst := fmt.Sprintf("%s.%d.corrupt", src, time.Now().UnixNano())
	if err := os.Rename(src, dst); err != nil {
		return errors.Join(cause, fmt.Errorf("quarantine %s: %w", name, err))
	}
	return fmt.Errorf("%w (moved to %s)", cause, filepath.Base(dst))
}

func (f *FileStore) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(f.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (f *FileStore) LoadAuthorizedSenders(_ context.Context) (models.AuthorizedSenders, error) {
	senders := models.AuthorizedSenders{}
	if err := f.load(f.names.AuthorizedSenders, &senders); err != nil {
		return models.AuthorizedSenders{}, err
	}
	return senders, nil
}

func (f *FileStore) LoadContacts(_ context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := f.load(f.names.Contacts, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (f *FileStore) LoadConsent(_ context.Context) (map[string]models.ConsentStatus, error) {
	consent := map[string]models.ConsentStatus{}
	if err := f.load(f.names.Consent, &consent); err != nil {
		return map[string]models.ConsentStatus{}, err
	}
	return consent, nil
}

func (f *FileStore) SaveConsent(_ context.Context, consent map[string]models.ConsentStatus) error {
	return f.save(f.names.Consent, consent)
}

func (f *FileStore) LoadSessions(_ context.Context) (map[string]models.Session, error) {
	sessions := map[string]models.Session{}
	if err := f.load(f.names.Sessions, &sessions); err != nil {
		return map[string]models.Session{}, err
	}
	return withContactIDs(sessions), nil
}

func (f *FileStore) SaveSessions(_ context.Context, sessions map[string]models.Session) error {
	return f.save(f.names.Sessions, sessions)
}

func (f *FileStore) LoadOrders(_ context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := f.load(f.names.Orders, &orders); err != nil {
		return []models.Order{}, err
	}
	return orders, nil
}

func (f *FileStore) SaveOrders(_ context.Context, orders []models.Order) error {
	if orders == nil {
		orders = []models.Order{}
	}
	return f.save(f.names.Orders, orders)
}

// Ping checks that the data directory exists or can be created.
func (f *FileStore) Ping(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	return nil
}

// withContactIDs fills the key into each session, which is not serialized.
func withContactIDs(sessions map[string]models.Session) map[string]models.Session {
	for id, s := range sessions {
		s.ContactID = id
		sessions[id] = s
	}
	return sessions
}

var _ Store = (*FileStore)(nil)
