package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
)

// DatabaseStore keeps each record set as one JSON row in store_snapshots.
// Saves are upserts, so the table needs no seeding besides the read-only sets.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an open gorm connection.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (d *DatabaseStore) load(ctx context.Context, name string, dst any) error {
	var snap models.Snapshot
	err := d.db.WithContext(ctx).Where("name = ?", name).Take(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if snap.Payload == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(snap.Payload), dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (d *DatabaseStore) save(ctx context.Context, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	snap := models.Snapshot{Name: name, Payload: string(payload)}
	err = d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&snap).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

func (d *DatabaseStore) LoadAuthorizedSenders(ctx context.Context) (models.AuthorizedSenders, error) {
	senders := models.AuthorizedSenders{}
	if err := d.load(ctx, SetAuthorizedSenders, &senders); err != nil {
		return models.AuthorizedSenders{}, err
	}
	return senders, nil
}

func (d *DatabaseStore) LoadContacts(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := d.load(ctx, SetContacts, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (d *DatabaseStore) LoadConsent(ctx context.Context) (map[string]models.ConsentStatus, error) {
	consent := map[string]models.ConsentStatus{}
	if err := d.load(ctx, SetConsent, &consent); err != nil {
		return map[string]models.ConsentStatus{}, err
	}
	return consent, nil
}

func (d *DatabaseStore) SaveConsent(ctx context.Context, consent map[string]models.ConsentStatus) error {
	return d.save(ctx, SetConsent, consent)
}

func (d *DatabaseStore) LoadSessions(ctx context.Context) (map[string]models.Session, error) {
	sessions := map[string]models.Session{}
	if err := d.load(ctx, SetSessions, &sessions); err != nil {
		return map[string]models.Session{}, err
	}
	return withContactIDs(sessions), nil
}

func (d *DatabaseStore) SaveSessions(ctx context.Context, sessions map[string]models.Session) error {
	return d.save(ctx, SetSessions, sessions)
}

func (d *DatabaseStore) LoadOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := d.load(ctx, SetOrders, &orders); err != nil {
		return []models.Order{}, err
	}
	return orders, nil
}

func (d *DatabaseStore) SaveOrders(ctx context.Context, orders []models.Order) error {
	if orders == nil {
		orders = []models.Order{}
	}
	return d.save(ctx, SetOrders, orders)
}

// Ping checks the underlying connection.
func (d *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var _ Store = (*DatabaseStore)(nil)
