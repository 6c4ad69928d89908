package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareml/shareml_go_server/internal/model"
	"github.com/shareml/shareml_go_server/internal/testutil"
)

func TestTrainingRepository_GetByIDFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTrainingRepository(db)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	dataset := testutil.TestDataset(t, db, alice.ID)
	datasetConfig := testutil.TestDatasetConfig(t, db, dataset.ID)
	algorithm := testutil.TestAlgorithm(t, db)
	algoConfig := testutil.TestAlgorithmConfig(t, db, algorithm.ID, alice.ID)
	training := testutil.TestTraining(t, db, alice.ID, datasetConfig.ID,
		testutil.WithAlgorithmConfig(algoConfig.ID))
	trainedModel := testutil.TestModel(t, db, training.ID)

	found, err := repo.GetByIDFull(training.ID)
	require.NoError(t, err)

	require.NotNil(t, found.User)
	assert.Equal(t, "alice", found.User.Username)
	require.NotNil(t, found.DatasetConfiguration)
	require.NotNil(t, found.DatasetConfiguration.Dataset)
	assert.Equal(t, dataset.ID, found.DatasetConfiguration.Dataset.ID)
	require.NotNil(t, found.AlgorithmConfiguration)
	assert.Equal(t, algoConfig.ID, found.AlgorithmConfiguration.ID)
	assert.Nil(t, found.CustomAlgorithmConfiguration)
	require.NotNil(t, found.Model)
	assert.Equal(t, trainedModel.ID, found.Model.ID)
}

func TestTrainingRepository_ConfigChoiceEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTrainingRepository(db)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	dataset := testutil.TestDataset(t, db, alice.ID)
	datasetConfig := testutil.TestDatasetConfig(t, db, dataset.ID)
	algorithm := testutil.TestAlgorithm(t, db)
	algoConfig := testutil.TestAlgorithmConfig(t, db, algorithm.ID, alice.ID)
	customConfig := testutil.TestCustomAlgorithmConfig(t, db, algorithm.ID, alice.ID)

	// 两种都设：拒绝
	both := &model.Training{
		UserID:                         alice.ID,
		DatasetConfigurationID:         datasetConfig.ID,
		AlgorithmConfigurationID:       &algoConfig.ID,
		CustomAlgorithmConfigurationID: &customConfig.ID,
	}
	err := repo.Create(both)
	assert.ErrorIs(t, err, model.ErrTrainingConfigChoice)

	// 一种都不设：拒绝
	neither := &model.Training{
		UserID:                 alice.ID,
		DatasetConfigurationID: datasetConfig.ID,
	}
	err = repo.Create(neither)
	assert.ErrorIs(t, err, model.ErrTrainingConfigChoice)

	// 恰好一种：通过
	one := &model.Training{
		UserID:                   alice.ID,
		DatasetConfigurationID:   datasetConfig.ID,
		AlgorithmConfigurationID: &algoConfig.ID,
	}
	require.NoError(t, repo.Create(one))
	assert.NotZero(t, one.ID)
}

func TestTrainingRepository_ListByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewTrainingRepository(db)

	alice := testutil.TestUser(t, db, testutil.WithUsername("alice"))
	bob := testutil.TestUser(t, db, testutil.WithUsername("bob"))
	dataset := testutil.TestDataset(t, db, alice.ID)
	datasetConfig := testutil.TestDatasetConfig(t, db, dataset.ID)
	algorithm := testutil.TestAlgorithm(t, db)
	algoConfig := testutil.TestAlgorithmConfig(t, db, algorithm.ID, alice.ID)

	for i := 0; i < 3; i++ {
		testutil.TestTraining(t, db, alice.ID, datasetConfig.ID,
			testutil.WithAlgorithmConfig(algoConfig.ID))
	}

	trainings, total, err := repo.ListByUserID(alice.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, trainings, 2)

	trainings, total, err = repo.ListByUserID(bob.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, trainings)
}
