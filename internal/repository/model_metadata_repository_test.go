package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okihome/rentwatch-backend-go/internal/database"
	"github.com/okihome/rentwatch-backend-go/internal/models"
)

func testModel(modelType, version string) *models.ModelMetadata {
	return &models.ModelMetadata{
		ModelType:       modelType,
		Version:         version,
		TrainingSamples: 80,
		R2Score:         0.87,
		MAE:             4200,
		RMSE:            6100,
		ModelPath:       "/models/rent_model_" + version + ".json",
		IsActive:        true,
	}
}

func TestModelMetadataInsertAndGetActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewModelMetadataRepository(db)

	m := testModel("random_forest", "20250901_040000")
	require.NoError(t, repo.Insert(db, m))
	require.Greater(t, m.ID, int64(0))

	active, err := repo.GetActive("random_forest")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "20250901_040000", active.Version)
	assert.Equal(t, 80, active.TrainingSamples)
	assert.InDelta(t, 0.87, active.R2Score, 1e-9)
	assert.True(t, active.IsActive)

	none, err := repo.GetActive("ridge")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestModelMetadataDemoteThenInsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewModelMetadataRepository(db)

	require.NoError(t, repo.Insert(db, testModel("ridge", "v1")))

	// Demote and insert atomically, the way the training pipeline does.
	err := database.Transaction(db, func(tx *sql.Tx) error {
		if err := repo.DemoteActive(tx, "ridge"); err != nil {
			return err
		}
		return repo.Insert(tx, testModel("ridge", "v2"))
	})
	require.NoError(t, err)

	active, err := repo.GetActive("ridge")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "v2", active.Version)

	records, err := repo.List(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestModelMetadataTransactionRollback(t *testing.T) {
	db := setupTestDB(t)
	repo := NewModelMetadataRepository(db)

	require.NoError(t, repo.Insert(db, testModel("ridge", "v1")))

	boom := errors.New("boom")
	err := database.Transaction(db, func(tx *sql.Tx) error {
		if err := repo.DemoteActive(tx, "ridge"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The demote was rolled back with the failed transaction.
	active, err := repo.GetActive("ridge")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "v1", active.Version)
}
