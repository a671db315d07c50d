package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// Store reads devices and readings from the local Postgres mirror. Like
// APIClient it serves as both DeviceRegistry and ReadingSource, for
// deployments where the ingestion service writes into Postgres instead
// of exposing the remote API.
type Store struct {
	*sql.DB
}

// Open establishes a connection to the database
func Open(connectionString string) (*Store, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &Store{db}, nil
}

// RunMigrations executes all SQL migration files in order
func (s *Store) RunMigrations(migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		fmt.Printf("Running migration: %s\n", filename)

		filePath := filepath.Join(migrationsDir, filename)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := s.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	fmt.Println("All migrations completed successfully")
	return nil
}

// Devices lists the registered devices with derived fleet counters
func (s *Store) Devices(ctx context.Context) (telemetry.DeviceList, error) {
	query := `
		SELECT id, code, name, connected, last_seen
		FROM devices
		ORDER BY name, id
	`

	rows, err := s.QueryContext(ctx, query)
	if err != nil {
		return telemetry.DeviceList{}, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := make([]telemetry.Device, 0)
	for rows.Next() {
		var d telemetry.Device
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.Connected, &d.LastSeen); err != nil {
			return telemetry.DeviceList{}, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return telemetry.DeviceList{}, err
	}

	return telemetry.DeviceList{Devices: devices}.Normalize(), nil
}

// Readings returns a device's readings newest-first, capped by limit.
// The identifier matches either the device code or its ID.
func (s *Store) Readings(ctx context.Context, deviceIdentifier string, limit int) ([]telemetry.Reading, error) {
	query := `
		SELECT r.id, r.value, r.observed_at, r.temperature, r.pressure, r.altitude, r.device_id
		FROM readings r
		JOIN devices d ON d.id = r.device_id
		WHERE d.id = $1 OR d.code = $1
		ORDER BY r.observed_at DESC
		LIMIT $2
	`

	rows, err := s.QueryContext(ctx, query, deviceIdentifier, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	readings := make([]telemetry.Reading, 0, limit)
	for rows.Next() {
		var (
			id         int64
			observedAt time.Time
			r          telemetry.Reading
		)
		if err := rows.Scan(&id, &r.Value, &observedAt, &r.Temperature, &r.Pressure, &r.Altitude, &r.DeviceID); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		r.ID = strconv.FormatInt(id, 10)
		r.Timestamp = observedAt.UTC().Format(time.RFC3339Nano)
		readings = append(readings, r)
	}

	return readings, rows.Err()
}

// NewReading is a reading to be stored, before it has an ID
type NewReading struct {
	DeviceID    string
	Value       float64
	ObservedAt  time.Time
	Temperature *float64
	Pressure    *float64
	Altitude    *float64
}

// UpsertDevice inserts or updates a device registration
func (s *Store) UpsertDevice(ctx context.Context, d telemetry.Device) error {
	query := `
		INSERT INTO devices (id, code, name, connected, last_seen)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET code = EXCLUDED.code,
		    name = EXCLUDED.name,
		    connected = EXCLUDED.connected,
		    last_seen = EXCLUDED.last_seen
	`
	_, err := s.ExecContext(ctx, query, d.ID, d.Code, d.Name, d.Connected, d.LastSeen)
	return err
}

// InsertReading stores a reading and returns its assigned ID
func (s *Store) InsertReading(ctx context.Context, nr *NewReading) (int64, error) {
	query := `
		INSERT INTO readings (device_id, value, observed_at, temperature, pressure, altitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := s.QueryRowContext(
		ctx,
		query,
		nr.DeviceID,
		nr.Value,
		nr.ObservedAt,
		nr.Temperature,
		nr.Pressure,
		nr.Altitude,
	).Scan(&id)
	return id, err
}
