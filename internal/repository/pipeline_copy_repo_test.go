package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shareml/shareml_go_server/internal/model"
	"github.com/shareml/shareml_go_server/internal/testutil"
)

func seedCopyRecord(t *testing.T, db *gorm.DB, sourceTrainingID, copiedByID, copyForID int64, status string) *model.PipelineCopy {
	t.Helper()

	repo := NewPipelineCopyRepository(db)
	record := &model.PipelineCopy{
		SourceTrainingID: sourceTrainingID,
		CopiedByID:       copiedByID,
		CopyForID:        copyForID,
		Status:           status,
	}
	require.NoError(t, repo.Create(record))
	return record
}

func TestPipelineCopyRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPipelineCopyRepository(db)
	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))

	record := seedCopyRecord(t, db, 1, alice.ID, bob.ID, model.CopyStatusInProgress)
	require.NotZero(t, record.ID)

	require.NoError(t, repo.AddMapping(&model.PipelineCopyMapping{
		PipelineCopyID: record.ID,
		EntityType:     model.EntityTypeDataset,
		SourceEntityID: 10,
		TargetEntityID: 20,
		Status:         model.MappingStatusCopied,
	}))

	found, err := repo.GetByIDWithMappings(record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	require.NotNil(t, found.CopiedBy)
	assert.Equal(t, "alice", found.CopiedBy.Username)
	require.NotNil(t, found.CopyFor)
	assert.Equal(t, "bob", found.CopyFor.Username)
	require.Len(t, found.Mappings, 1)
	assert.Equal(t, model.EntityTypeDataset, found.Mappings[0].EntityType)
}

func TestPipelineCopyRepository_ExistsCompleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPipelineCopyRepository(db)
	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))

	// IN_PROGRESS 和 ROLLED_BACK 都不算已存在
	seedCopyRecord(t, db, 7, alice.ID, bob.ID, model.CopyStatusInProgress)
	seedCopyRecord(t, db, 7, alice.ID, bob.ID, model.CopyStatusRolledBack)

	exists, err := repo.ExistsCompleted(7, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	seedCopyRecord(t, db, 7, alice.ID, bob.ID, model.CopyStatusCompleted)

	exists, err = repo.ExistsCompleted(7, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// 其他 (训练, 目标) 组合不受影响
	exists, err = repo.ExistsCompleted(8, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = repo.ExistsCompleted(7, alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPipelineCopyRepository_MarkMappingsFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPipelineCopyRepository(db)
	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))

	record := seedCopyRecord(t, db, 1, alice.ID, bob.ID, model.CopyStatusInProgress)
	other := seedCopyRecord(t, db, 2, alice.ID, bob.ID, model.CopyStatusInProgress)

	for _, entityType := range []string{model.EntityTypeDataset, model.EntityTypeTraining} {
		require.NoError(t, repo.AddMapping(&model.PipelineCopyMapping{
			PipelineCopyID: record.ID,
			EntityType:     entityType,
			SourceEntityID: 1,
			TargetEntityID: 2,
			Status:         model.MappingStatusCopied,
		}))
	}
	require.NoError(t, repo.AddMapping(&model.PipelineCopyMapping{
		PipelineCopyID: other.ID,
		EntityType:     model.EntityTypeDataset,
		SourceEntityID: 3,
		TargetEntityID: 4,
		Status:         model.MappingStatusCopied,
	}))

	require.NoError(t, repo.MarkMappingsFailed(record.ID, "oss copy failed"))

	mappings, err := repo.ListMappings(record.ID)
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	for _, m := range mappings {
		assert.Equal(t, model.MappingStatusFailed, m.Status)
		assert.Equal(t, "oss copy failed", m.ErrorMessage)
	}

	// 其他复制的映射不被波及
	otherMappings, err := repo.ListMappings(other.ID)
	require.NoError(t, err)
	require.Len(t, otherMappings, 1)
	assert.Equal(t, model.MappingStatusCopied, otherMappings[0].Status)
}

func TestPipelineCopyRepository_Lists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPipelineCopyRepository(db)
	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))
	carol := testutil.TestUser(t, db, testutil.WithUsername("carol"))

	seedCopyRecord(t, db, 1, alice.ID, bob.ID, model.CopyStatusCompleted)
	seedCopyRecord(t, db, 2, alice.ID, carol.ID, model.CopyStatusCompleted)
	seedCopyRecord(t, db, 3, bob.ID, alice.ID, model.CopyStatusCompleted)

	initiated, err := repo.ListInitiatedBy(alice.ID)
	require.NoError(t, err)
	assert.Len(t, initiated, 2)
	for _, r := range initiated {
		require.NotNil(t, r.CopiedBy)
		assert.Equal(t, "alice", r.CopiedBy.Username)
	}

	received, err := repo.ListReceivedBy(bob.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, int64(1), received[0].SourceTrainingID)
}

func TestPipelineCopyRepository_History(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPipelineCopyRepository(db)
	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))

	record := seedCopyRecord(t, db, 1, alice.ID, bob.ID, model.CopyStatusInProgress)

	require.NoError(t, repo.AddHistory(&model.PipelineCopyHistory{
		PipelineCopyID: record.ID,
		Action:         model.CopyActionInitiated,
		UserID:         alice.ID,
	}))
	require.NoError(t, repo.AddHistory(&model.PipelineCopyHistory{
		PipelineCopyID: record.ID,
		Action:         model.CopyActionCompleted,
		UserID:         alice.ID,
	}))

	history, err := repo.ListHistory(record.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.CopyActionInitiated, history[0].Action)
	assert.Equal(t, model.CopyActionCompleted, history[1].Action)
}
