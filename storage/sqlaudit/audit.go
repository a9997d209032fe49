// Package sqlaudit mirrors every governance event into a durable audit
// table, the nearest Go-idiomatic analogue of the original CasperLabs
// contracts' on-chain event log that a distilled governance core would
// otherwise lose (SPEC_FULL.md §4 "Audit trail"). Grounded on the teacher's
// services/otc-gateway/models (gorm model + AutoMigrate shape) and
// services/otc-gateway/main.go's postgres.Open/gorm.Open bootstrap.
package sqlaudit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"daocore/events"
)

// Record is the durable row mirrored for every emitted event.
type Record struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Sequence   uint64    `gorm:"index"`
	Type       string    `gorm:"index"`
	Attributes string
	CreatedAt  time.Time `gorm:"index"`
}

// TableName pins the table name regardless of gorm's pluralization rules.
func (Record) TableName() string { return "dao_audit_records" }

// AutoMigrate creates or updates the audit table schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Record{})
}

// Open connects to a production Postgres audit database.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// OpenSQLite connects to a local or test SQLite audit database, the
// harness default and the teacher's own test-fixture driver
// (services/otc-gateway/server/server_test.go).
func OpenSQLite(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

// Mirror is an events.Emitter that durably persists every event it
// receives. Events without a Render() method are recorded by type alone.
type Mirror struct {
	db  *gorm.DB
	seq uint64
}

// NewMirror wraps db as an events.Emitter. Callers must have already run
// AutoMigrate against db.
func NewMirror(db *gorm.DB) *Mirror {
	return &Mirror{db: db}
}

// Emit implements events.Emitter.
func (m *Mirror) Emit(e events.Event) {
	if m == nil || m.db == nil {
		return
	}
	m.seq++
	rec := Record{
		ID:        uuid.New(),
		Sequence:  m.seq,
		Type:      e.EventType(),
		CreatedAt: time.Now(),
	}
	if r, ok := e.(events.Renderable); ok {
		if blob, err := json.Marshal(r.Render().Attributes); err == nil {
			rec.Attributes = string(blob)
		}
	}
	m.db.Create(&rec)
}

// Since returns every mirrored record with Sequence strictly greater than
// after, ordered by sequence — the read side an external indexer or the
// rpc facade's audit-replay endpoint would page through.
func Since(db *gorm.DB, after uint64, limit int) ([]Record, error) {
	var out []Record
	err := db.Where("sequence > ?", after).Order("sequence asc").Limit(limit).Find(&out).Error
	return out, err
}
