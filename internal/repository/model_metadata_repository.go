package repository

import (
	"database/sql"
	"fmt"

	"github.com/okihome/rentwatch-backend-go/internal/models"
)

// ModelMetadataRepository handles database operations for trained model records
type ModelMetadataRepository struct {
	db *sql.DB
}

// NewModelMetadataRepository creates a new model metadata repository
func NewModelMetadataRepository(db *sql.DB) *ModelMetadataRepository {
	return &ModelMetadataRepository{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx so writes can run inside
// a transaction when the caller needs demote and insert to be atomic.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// DemoteActive clears the active flag on every model of the given type
func (r *ModelMetadataRepository) DemoteActive(ex execer, modelType string) error {
	if _, err := ex.Exec(
		"UPDATE model_metadata SET is_active = 0 WHERE model_type = ? AND is_active = 1",
		modelType,
	); err != nil {
		return fmt.Errorf("failed to demote active models: %w", err)
	}
	return nil
}

// Insert stores one model record
func (r *ModelMetadataRepository) Insert(ex execer, m *models.ModelMetadata) error {
	result, err := ex.Exec(`
		INSERT INTO model_metadata (
			model_type, version, training_samples, r2_score, mae, rmse,
			feature_importances_json, model_path, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ModelType, m.Version, m.TrainingSamples, m.R2Score, m.MAE, m.RMSE,
		nullStr(m.FeatureImportances), m.ModelPath, boolInt(m.IsActive),
	)
	if err != nil {
		return fmt.Errorf("failed to insert model metadata: %w", err)
	}
	m.ID, _ = result.LastInsertId()
	return nil
}

// GetActive returns the active model record for one model type,
// or nil when no model has been activated yet
func (r *ModelMetadataRepository) GetActive(modelType string) (*models.ModelMetadata, error) {
	row := r.db.QueryRow(`
		SELECT id, model_type, version, training_samples, r2_score, mae, rmse,
			feature_importances_json, model_path, trained_at, is_active
		FROM model_metadata
		WHERE model_type = ? AND is_active = 1
		ORDER BY trained_at DESC
		LIMIT 1`, modelType)

	m, err := scanModelMetadata(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active model: %w", err)
	}
	return m, nil
}

// List returns model records newest first
func (r *ModelMetadataRepository) List(limit int) ([]models.ModelMetadata, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT id, model_type, version, training_samples, r2_score, mae, rmse,
			feature_importances_json, model_path, trained_at, is_active
		FROM model_metadata
		ORDER BY trained_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var records []models.ModelMetadata
	for rows.Next() {
		m, err := scanModelMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model metadata: %w", err)
		}
		records = append(records, *m)
	}
	return records, rows.Err()
}

func scanModelMetadata(row rowScanner) (*models.ModelMetadata, error) {
	var m models.ModelMetadata
	var samples sql.NullInt64
	var r2, mae, rmse sql.NullFloat64
	var importances, trainedAt sql.NullString
	var active int

	if err := row.Scan(
		&m.ID, &m.ModelType, &m.Version, &samples, &r2, &mae, &rmse,
		&importances, &m.ModelPath, &trainedAt, &active,
	); err != nil {
		return nil, err
	}

	m.TrainingSamples = int(samples.Int64)
	m.R2Score = r2.Float64
	m.MAE = mae.Float64
	m.RMSE = rmse.Float64
	m.FeatureImportances = importances.String
	m.TrainedAt = trainedAt.String
	m.IsActive = active == 1
	return &m, nil
}
