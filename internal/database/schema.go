package database

import (
	"database/sql"
	"fmt"
)

// schemaSQL defines the full schema. Every statement is idempotent, so the
// initializer can run on every startup.
const schemaSQL = `
-- Rental listings (main table)
CREATE TABLE IF NOT EXISTS properties (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL,
    source_id TEXT NOT NULL,
    source_url TEXT,
    name TEXT,
    address TEXT,
    municipality TEXT,
    municipality_code TEXT,
    latitude REAL,
    longitude REAL,

    rent INTEGER NOT NULL,
    management_fee INTEGER DEFAULT 0,

    property_type TEXT,
    structure TEXT,
    floor_plan TEXT,
    room_count INTEGER,
    area_sqm REAL,
    building_age INTEGER,
    floor_number INTEGER,
    total_floors INTEGER,

    nearest_station TEXT,
    station_walk_minutes INTEGER,
    transport_type TEXT,
    parking_available INTEGER DEFAULT 0,

    has_aircon INTEGER DEFAULT 0,
    has_auto_lock INTEGER DEFAULT 0,
    has_delivery_box INTEGER DEFAULT 0,
    has_bath_dryer INTEGER DEFAULT 0,
    has_reheating INTEGER DEFAULT 0,
    has_washstand INTEGER DEFAULT 0,
    has_indoor_laundry INTEGER DEFAULT 0,
    has_internet INTEGER DEFAULT 0,
    has_fiber INTEGER DEFAULT 0,
    has_bath_toilet_separate INTEGER DEFAULT 0,
    has_flooring INTEGER DEFAULT 0,
    has_pet_ok INTEGER DEFAULT 0,

    estimated_rent INTEGER,
    affordability_score REAL,
    estimated_at TEXT,

    scraped_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
    is_active INTEGER DEFAULT 1,
    notified INTEGER DEFAULT 0,

    UNIQUE(source, source_id)
);

-- Official land-price observations
CREATE TABLE IF NOT EXISTS land_prices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    data_source TEXT NOT NULL,
    year INTEGER NOT NULL,
    municipality TEXT,
    municipality_code TEXT,
    address TEXT,
    latitude REAL,
    longitude REAL,
    price_per_sqm INTEGER,
    land_use TEXT,
    zoning TEXT,
    nearest_station TEXT,
    station_distance_m INTEGER,
    fetched_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),

    UNIQUE(data_source, year, address)
);

-- One row per trained model version
CREATE TABLE IF NOT EXISTS model_metadata (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_type TEXT NOT NULL,
    version TEXT NOT NULL,
    training_samples INTEGER,
    r2_score REAL,
    mae REAL,
    rmse REAL,
    feature_importances_json TEXT,
    model_path TEXT NOT NULL,
    trained_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
    is_active INTEGER DEFAULT 0
);

-- Notification delivery log
CREATE TABLE IF NOT EXISTS notification_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    property_id INTEGER,
    sent_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
    status TEXT DEFAULT 'sent',
    FOREIGN KEY (property_id) REFERENCES properties(id)
);

-- LINE follower user ids registered via webhook
CREATE TABLE IF NOT EXISTS line_users (
    user_id TEXT PRIMARY KEY,
    registered_at TEXT NOT NULL DEFAULT (datetime('now', 'localtime'))
);

CREATE INDEX IF NOT EXISTS idx_properties_municipality ON properties(municipality_code);
CREATE INDEX IF NOT EXISTS idx_properties_rent ON properties(rent);
CREATE INDEX IF NOT EXISTS idx_properties_active ON properties(is_active);
CREATE INDEX IF NOT EXISTS idx_properties_source ON properties(source, source_id);
CREATE INDEX IF NOT EXISTS idx_properties_notified ON properties(notified, is_active);
CREATE INDEX IF NOT EXISTS idx_properties_score ON properties(affordability_score);
CREATE INDEX IF NOT EXISTS idx_land_prices_municipality ON land_prices(municipality_code, year);
CREATE INDEX IF NOT EXISTS idx_land_prices_location ON land_prices(latitude, longitude);
`

// InitSchema creates all tables and indexes if they do not exist
func InitSchema(conn *sql.DB) error {
	if _, err := conn.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
