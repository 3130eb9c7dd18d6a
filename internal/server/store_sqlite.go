package server

import (
	"database/sql"

	"sensewire/internal/shared"
)

// SQLiteStore implements Store on database/sql. Insertion order is the
// rowid, which gives the same first-seen and append ordering guarantees
// as MemoryStore.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

func (s *SQLiteStore) AppendReading(rec shared.StoredReading) error {
	_, err := s.DB.Exec(
		`INSERT INTO readings (id, device_id, timestamp_ms, temperature_c, temperature_f, humidity_pct, pressure_hpa, altitude_m)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DeviceID, rec.TimestampMS,
		rec.TemperatureC, rec.TemperatureF, rec.HumidityPct, rec.PressureHPa, rec.AltitudeM,
	)
	return err
}

func (s *SQLiteStore) ListDevices() ([]string, error) {
	rows, err := s.DB.Query(
		`SELECT device_id FROM readings GROUP BY device_id ORDER BY MIN(rowid)`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		devices = append(devices, id)
	}
	return devices, rows.Err()
}

func (s *SQLiteStore) DeviceReadings(deviceID string) ([]shared.StoredReading, error) {
	rows, err := s.DB.Query(
		`SELECT id, device_id, timestamp_ms, temperature_c, temperature_f, humidity_pct, pressure_hpa, altitude_m
		 FROM readings WHERE device_id = ? ORDER BY rowid`, deviceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []shared.StoredReading
	for rows.Next() {
		var r shared.StoredReading
		if err := rows.Scan(&r.ID, &r.DeviceID, &r.TimestampMS,
			&r.TemperatureC, &r.TemperatureF, &r.HumidityPct, &r.PressureHPa, &r.AltitudeM); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// nil (unknown device) vs non-nil mirrors MemoryStore.
	return recs, nil
}

func (s *SQLiteStore) Reset() error {
	_, err := s.DB.Exec(`DELETE FROM readings`)
	return err
}
