package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"autopipe/domain/core"
	"autopipe/domain/dataset"
	"autopipe/internal/errors"
	"autopipe/ports"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

const datasetColumns = `
	id, user_id, original_filename, COALESCE(file_path, '') as file_path,
	COALESCE(file_size, 0) as file_size, COALESCE(row_count, 0) as row_count,
	COALESCE(column_count, 0) as column_count, COALESCE(missing_rate, 0.0) as missing_rate,
	COALESCE(target_column, '') as target_column, status,
	COALESCE(error_message, '') as error_message, created_at, updated_at`

// Create inserts a new dataset record
func (r *datasetRepository) Create(ctx context.Context, rec *dataset.Record) error {
	query := `INSERT INTO datasets (
		id, user_id, original_filename, file_path, file_size,
		row_count, column_count, missing_rate, target_column,
		status, error_message, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.OriginalFilename, rec.FilePath, rec.FileSize,
		rec.RowCount, rec.ColumnCount, rec.MissingRate, rec.TargetColumn,
		rec.Status, rec.ErrorMessage, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to create dataset"))
	}
	return nil
}

// GetByID retrieves a dataset record by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Record, error) {
	query := `SELECT` + datasetColumns + ` FROM datasets WHERE id = $1`

	var rec dataset.Record
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.UserID, &rec.OriginalFilename, &rec.FilePath, &rec.FileSize,
		&rec.RowCount, &rec.ColumnCount, &rec.MissingRate, &rec.TargetColumn,
		&rec.Status, &rec.ErrorMessage, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("dataset")
		}
		return nil, errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to get dataset"))
	}
	return &rec, nil
}

// List retrieves dataset records, newest first
func (r *datasetRepository) List(ctx context.Context, limit, offset int) ([]*dataset.Record, error) {
	query := `SELECT` + datasetColumns + `
	FROM datasets
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to query datasets"))
	}
	defer rows.Close()

	var records []*dataset.Record
	for rows.Next() {
		var rec dataset.Record
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.OriginalFilename, &rec.FilePath, &rec.FileSize,
			&rec.RowCount, &rec.ColumnCount, &rec.MissingRate, &rec.TargetColumn,
			&rec.Status, &rec.ErrorMessage, &rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError,
				errors.Wrap(err, "failed to scan dataset"))
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to iterate datasets"))
	}
	return records, nil
}

// UpdateStatus moves a dataset through its processing lifecycle
func (r *datasetRepository) UpdateStatus(ctx context.Context, id core.DatasetID, status dataset.Status, errorMessage string) error {
	query := `UPDATE datasets SET status = $1, error_message = $2, updated_at = NOW() WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, errorMessage, id)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to update dataset status"))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to check update result"))
	}
	if affected == 0 {
		return errors.NotFound("dataset")
	}
	return nil
}

// Delete removes a dataset record
func (r *datasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to delete dataset"))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to check delete result"))
	}
	if affected == 0 {
		return errors.NotFound("dataset")
	}
	return nil
}
