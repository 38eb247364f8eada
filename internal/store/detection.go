package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Source is where a detection's evidence came from.
type Source string

const (
	SourceImage       Source = "image"
	SourceWindowTitle Source = "window_title"
)

// Detection is one recorded detection result.
type Detection struct {
	ID         string    `json:"id"`
	Game       string    `json:"game"`
	Confidence float64   `json:"confidence"`
	Method     string    `json:"method"`
	Keyword    string    `json:"match,omitempty"`
	Template   string    `json:"template,omitempty"`
	Error      string    `json:"error,omitempty"`
	Source     Source    `json:"source"`
	Notified   bool      `json:"notified"`
	CreatedAt  time.Time `json:"created_at"`
}

// DetectionRepository records and lists detections.
type DetectionRepository struct {
	db *sql.DB
}

// Detections returns the detection repository for this store.
func (s *Store) Detections() *DetectionRepository {
	return &DetectionRepository{db: s.db}
}

const detectionColumns = `id, game, confidence, method, keyword, template, error, source, notified, created_at`

// Create inserts d, assigning an ID and CreatedAt when they are unset.
func (r *DetectionRepository) Create(d *Detection) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	d.CreatedAt = d.CreatedAt.UTC()

	notified := 0
	if d.Notified {
		notified = 1
	}

	_, err := r.db.Exec(
		`INSERT INTO detections (`+detectionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Game, d.Confidence, d.Method, d.Keyword, d.Template, d.Error,
		string(d.Source), notified, d.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert detection: %w", err)
	}
	return nil
}

// GetByID retrieves a detection by its ID.
func (r *DetectionRepository) GetByID(id string) (*Detection, error) {
	row := r.db.QueryRow(`SELECT `+detectionColumns+` FROM detections WHERE id = ?`, id)
	d, err := scanDetection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListRecent returns up to limit detections, newest first.
func (r *DetectionRepository) ListRecent(limit int) ([]*Detection, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT `+detectionColumns+` FROM detections
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []*Detection
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detections, nil
}

// Count returns the number of recorded detections.
func (r *DetectionRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM detections`).Scan(&n)
	return n, err
}

// Prune deletes all but the newest keep detections and returns how many
// rows were removed.
func (r *DetectionRepository) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := r.db.Exec(
		`DELETE FROM detections WHERE id NOT IN (
			SELECT id FROM detections ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDetection(row scanner) (*Detection, error) {
	d := &Detection{}
	var (
		source    string
		notified  int
		createdAt string
	)

	err := row.Scan(&d.ID, &d.Game, &d.Confidence, &d.Method, &d.Keyword, &d.Template, &d.Error,
		&source, &notified, &createdAt)
	if err != nil {
		return nil, err
	}

	d.Source = Source(source)
	d.Notified = notified != 0
	if d.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return d, nil
}
