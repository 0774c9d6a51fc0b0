package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/streamcatch/internal/models"
	"github.com/desertthunder/streamcatch/internal/shared"
)

const captureColumns = `id, sequence, host, port, status, message, version, url, mime_type, header_params, raw_body,
		created_at, updated_at, deleted_at`

var _ models.Repository[*models.Capture] = (*CaptureRepository)(nil)

// CaptureRepository implements models.Repository[*models.Capture] for capture history.
type CaptureRepository struct {
	db *sql.DB
}

// NewCaptureRepository creates a new CaptureRepository with the given database connection
func NewCaptureRepository(db *sql.DB) *CaptureRepository {
	return &CaptureRepository{db: db}
}

// Create inserts a new [models.Capture] into the database with generated ID and sequence
func (r *CaptureRepository) Create(capture *models.Capture) error {
	capture.SetID(shared.GenerateID())
	if err := capture.Validate(); err != nil {
		capture.SetID("")
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "captures")
	if err != nil {
		capture.SetID("")
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	capture.SetSequence(sequence)

	query := `
		INSERT INTO captures (id, sequence, host, port, status, message, version, url, mime_type, header_params, raw_body,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		capture.ID(),
		sequence,
		capture.Host(),
		capture.Port(),
		string(capture.Status()),
		capture.Message(),
		capture.Version(),
		capture.URL(),
		capture.MimeType(),
		capture.HeaderParams(),
		capture.RawBody(),
		capture.CreatedAt(),
		capture.UpdatedAt(),
	)
	if err != nil {
		capture.SetID("")
		return fmt.Errorf("failed to insert capture: %w", err)
	}

	return nil
}

// Get retrieves a capture by ID, excluding soft-deleted captures
func (r *CaptureRepository) Get(id string) (*models.Capture, error) {
	query := `SELECT ` + captureColumns + ` FROM captures WHERE id = ? AND deleted_at IS NULL`

	capture, err := scanCapture(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCaptureNotFound, id)
	}
	return capture, err
}

// Find resolves a full ID, an ID prefix of at least four characters, or a sequence number written as "#n".
//
// A prefix matching more than one capture is rejected.
func (r *CaptureRepository) Find(ref string) (*models.Capture, error) {
	if capture, err := r.Get(ref); err == nil {
		return capture, nil
	}

	if len(ref) > 1 && ref[0] == '#' {
		var sequence int
		if _, err := fmt.Sscanf(ref[1:], "%d", &sequence); err != nil {
			return nil, fmt.Errorf("%w: bad sequence %q", shared.ErrInvalidArgument, ref)
		}
		query := `SELECT ` + captureColumns + ` FROM captures WHERE sequence = ? AND deleted_at IS NULL`
		capture, err := scanCapture(r.db.QueryRow(query, sequence))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", shared.ErrCaptureNotFound, ref)
		}
		return capture, err
	}

	if len(ref) < 4 {
		return nil, fmt.Errorf("%w: %s", shared.ErrCaptureNotFound, ref)
	}

	captures, err := r.query(`SELECT `+captureColumns+` FROM captures WHERE id LIKE ? AND deleted_at IS NULL LIMIT 2`, ref+"%")
	if err != nil {
		return nil, err
	}
	switch len(captures) {
	case 0:
		return nil, fmt.Errorf("%w: %s", shared.ErrCaptureNotFound, ref)
	case 1:
		return captures[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches more than one capture", shared.ErrInvalidArgument, ref)
	}
}

// Update modifies an existing capture in the database
func (r *CaptureRepository) Update(capture *models.Capture) error {
	if err := capture.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	capture.SetUpdatedAt(now)

	query := `
		UPDATE captures
		SET status = ?, message = ?, version = ?, url = ?, mime_type = ?, header_params = ?, raw_body = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(capture.Status()),
		capture.Message(),
		capture.Version(),
		capture.URL(),
		capture.MimeType(),
		capture.HeaderParams(),
		capture.RawBody(),
		now,
		capture.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update capture: %w", err)
	}

	return expectRow(result, capture.ID())
}

// Delete soft-deletes a capture by ID
func (r *CaptureRepository) Delete(id string) error {
	query := `
		UPDATE captures
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete capture: %w", err)
	}

	return expectRow(result, id)
}

// List retrieves all captures matching the given criteria, excluding soft-deleted captures.
//
// Supported criteria: "status" (string or [models.CaptureStatus]), "url" (exact match) and "limit" (int).
// Results are ordered newest first.
func (r *CaptureRepository) List(criteria map[string]any) ([]*models.Capture, error) {
	query := `SELECT ` + captureColumns + ` FROM captures WHERE deleted_at IS NULL`
	args := []any{}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case models.CaptureStatus:
		if status != "" {
			query += " AND status = ?"
			args = append(args, string(status))
		}
	}

	if url, ok := criteria["url"].(string); ok && url != "" {
		query += " AND url = ?"
		args = append(args, url)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return r.query(query, args...)
}

// Recent returns up to limit captures, newest first. A limit of zero or less returns every capture.
func (r *CaptureRepository) Recent(limit int) ([]*models.Capture, error) {
	return r.List(map[string]any{"limit": limit})
}

func (r *CaptureRepository) query(query string, args ...any) ([]*models.Capture, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query captures: %w", err)
	}
	defer rows.Close()

	var captures []*models.Capture
	for rows.Next() {
		capture, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		captures = append(captures, capture)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return captures, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanCapture scans a single row into a [models.Capture]. [sql.ErrNoRows] is returned unwrapped.
func scanCapture(row scanner) (*models.Capture, error) {
	var (
		id           string
		sequence     int
		host         string
		port         int
		status       string
		message      sql.NullString
		version      sql.NullString
		url          sql.NullString
		mimeType     sql.NullString
		headerParams sql.NullString
		rawBody      []byte
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &host, &port, &status, &message, &version, &url, &mimeType, &headerParams, &rawBody,
		&createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan capture: %w", err)
	}

	capture := models.NewCapture(host, port, models.CaptureStatus(status))
	capture.SetID(id)
	capture.SetSequence(sequence)
	capture.SetMessage(message.String)
	capture.SetStream(version.String, url.String, mimeType.String, headerParams.String)
	capture.SetRawBody(rawBody)
	capture.SetCreatedAt(createdAt)
	capture.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		capture.SetDeletedAt(&deletedAt.Time)
	}

	return capture, nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s not found or already deleted", shared.ErrCaptureNotFound, id)
	}
	return nil
}
