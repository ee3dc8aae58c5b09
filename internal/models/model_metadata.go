package models

// ModelMetadata is one persisted record per trained model version.
// At most one row per model type is active in normal operation.
type ModelMetadata struct {
	ID                 int64   `json:"id" db:"id"`
	ModelType          string  `json:"modelType" db:"model_type"` // ridge/random_forest
	Version            string  `json:"version" db:"version"`
	TrainingSamples    int     `json:"trainingSamples" db:"training_samples"`
	R2Score            float64 `json:"r2Score" db:"r2_score"`
	MAE                float64 `json:"mae" db:"mae"`
	RMSE               float64 `json:"rmse" db:"rmse"`
	FeatureImportances string  `json:"featureImportances,omitempty" db:"feature_importances_json"`
	ModelPath          string  `json:"modelPath" db:"model_path"`
	TrainedAt          string  `json:"trainedAt,omitempty" db:"trained_at"`
	IsActive           bool    `json:"isActive" db:"is_active"`
}
