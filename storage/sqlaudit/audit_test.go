package sqlaudit_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"daocore/events"
	"daocore/storage/sqlaudit"
	"daocore/types"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sqlaudit.OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, sqlaudit.AutoMigrate(db))
	return db
}

func TestMirror_EmitPersistsEveryEventWithAnIncrementingSequence(t *testing.T) {
	db := setupTestDB(t)
	mirror := sqlaudit.NewMirror(db)

	mirror.Emit(events.VoterSlashed{VotingId: types.VotingId(1), Burned: types.NewBalance(5)})
	mirror.Emit(events.CSPRTransfer{Reason: "payout", Amount: types.NewBalance(10)})

	var records []sqlaudit.Record
	require.NoError(t, db.Order("sequence asc").Find(&records).Error)
	require.Len(t, records, 2)
	require.Equal(t, uint64(1), records[0].Sequence)
	require.Equal(t, uint64(2), records[1].Sequence)
	require.Equal(t, events.TypeVoterSlashed, records[0].Type)
}

func TestMirror_EmitRecordsRenderedAttributesWhenAvailable(t *testing.T) {
	db := setupTestDB(t)
	mirror := sqlaudit.NewMirror(db)

	mirror.Emit(events.CSPRTransfer{Reason: "payout", Amount: types.NewBalance(10)})

	var rec sqlaudit.Record
	require.NoError(t, db.First(&rec).Error)
	require.Contains(t, rec.Attributes, "payout")
}

func TestMirror_EmitOnNilReceiverDoesNotPanic(t *testing.T) {
	var mirror *sqlaudit.Mirror
	require.NotPanics(t, func() {
		mirror.Emit(events.VoterSlashed{})
	})
}

func TestSince_ReturnsOnlyRecordsAfterTheGivenSequence(t *testing.T) {
	db := setupTestDB(t)
	mirror := sqlaudit.NewMirror(db)

	for i := 0; i < 5; i++ {
		mirror.Emit(events.VoterSlashed{VotingId: types.VotingId(uint64(i))})
	}

	out, err := sqlaudit.Since(db, 3, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, uint64(4), out[0].Sequence)
	require.Equal(t, uint64(5), out[1].Sequence)
}

func TestSince_RespectsLimit(t *testing.T) {
	db := setupTestDB(t)
	mirror := sqlaudit.NewMirror(db)

	for i := 0; i < 5; i++ {
		mirror.Emit(events.VoterSlashed{})
	}

	out, err := sqlaudit.Since(db, 0, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
}
