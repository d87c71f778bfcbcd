package datastore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/color-game/consolidation/models"
)

type RunRepository interface {
	Create(run models.Run, records []models.Classification) (models.Run, error)
	Get(runID string) (models.Run, error)
	GetLatest() (models.Run, error)
	GetByDigest(digest string) (models.Run, error)
	GetAll(limit int) ([]models.Run, error)
	Records(runID string) ([]models.Classification, error)
	Delete(runID string) error
}

type NoRowsError struct {
	NoRows bool
	Err    error
}

func (nr NoRowsError) Error() string {
	return fmt.Sprintf("%v: no rows returned for scan: %v", nr.NoRows, nr.Err)
}

func (nr NoRowsError) Unwrap() error {
	return nr.Err
}

// IsNoRows reports whether err came from a lookup that matched nothing.
func IsNoRows(err error) bool {
	var nr NoRowsError
	return errors.As(err, &nr) && nr.NoRows
}

type RunDatabase struct {
	database *sql.DB
	dbtype   string
}

func NewRunDatabase(db *sql.DB, dbtype string) (RunDatabase, error) {
	if db == nil {
		return RunDatabase{}, errors.New("nil database handle")
	}
	return RunDatabase{database: db, dbtype: dbtype}, nil
}

const runColumns = `
		run_id,
		source,
		digest,
		family_count,
		other_count,
		total,
		classified,
		exact_count,
		merged_count,
		far_count,
		unmatched_count,
		duplicate_count,
		created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (models.Run, error) {
	var run models.Run
	err := row.Scan(
		&run.RunID,
		&run.Source,
		&run.Digest,
		&run.Families,
		&run.Others,
		&run.Total,
		&run.Classified,
		&run.Exact,
		&run.Merged,
		&run.Far,
		&run.Unmatched,
		&run.Duplicates,
		&run.CreatedAt,
	)
	return run, err
}

// Create stores the run and all of its records in one transaction.
func (rdb RunDatabase) Create(run models.Run, records []models.Classification) (models.Run, error) {
	tx, err := rdb.database.Begin()
	if err != nil {
		return run, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(Rebind(rdb.dbtype, `
		INSERT INTO runs (`+runColumns+`
		) VALUES (
			$1,
			$2,
			$3,
			$4,
			$5,
			$6,
			$7,
			$8,
			$9,
			$10,
			$11,
			$12,
			$13
		)`),
		run.RunID,
		run.Source,
		run.Digest,
		run.Families,
		run.Others,
		run.Total,
		run.Classified,
		run.Exact,
		run.Merged,
		run.Far,
		run.Unmatched,
		run.Duplicates,
		run.CreatedAt,
	)
	if err != nil {
		return run, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(Rebind(rdb.dbtype, `
		INSERT INTO run_records (
			run_id, idx, name, hex, note, is_duplicate, bucket_kind,
			bucket_id, ref_hex, distance, step, step_distance
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`))
	if err != nil {
		return run, err
	}
	defer stmt.Close()

	for _, rec := range records {
		var step sql.NullInt64
		var stepDistance sql.NullFloat64
		if rec.Step != nil {
			step = sql.NullInt64{Int64: int64(*rec.Step), Valid: true}
		}
		if rec.StepDistance != nil {
			stepDistance = sql.NullFloat64{Float64: *rec.StepDistance, Valid: true}
		}

		if _, err := stmt.Exec(
			run.RunID,
			rec.Index,
			rec.Name,
			rec.Hex,
			rec.Note,
			rec.IsDuplicate,
			string(rec.BucketKind),
			rec.BucketID,
			rec.RefHex,
			rec.Distance,
			step,
			stepDistance,
		); err != nil {
			return run, fmt.Errorf("failed to insert record %d (%s): %w", rec.Index, rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return run, err
	}
	return run, nil
}

func (rdb RunDatabase) Get(runID string) (models.Run, error) {
	row := rdb.database.QueryRow(Rebind(rdb.dbtype, `
	SELECT`+runColumns+`
	FROM runs
	WHERE run_id=$1;`), runID)

	return noRows(scanRun(row))
}

// GetLatest returns the most recently created run.
func (rdb RunDatabase) GetLatest() (models.Run, error) {
	row := rdb.database.QueryRow(`
	SELECT` + runColumns + `
	FROM runs
	ORDER BY created_at DESC
	LIMIT 1;`)

	return noRows(scanRun(row))
}

// GetByDigest returns the newest run made from input with the given digest.
func (rdb RunDatabase) GetByDigest(digest string) (models.Run, error) {
	row := rdb.database.QueryRow(Rebind(rdb.dbtype, `
	SELECT`+runColumns+`
	FROM runs
	WHERE digest=$1
	ORDER BY created_at DESC
	LIMIT 1;`), digest)

	return noRows(scanRun(row))
}

// GetAll lists runs newest first. A limit of zero or less returns every run.
func (rdb RunDatabase) GetAll(limit int) ([]models.Run, error) {
	query := `
	SELECT` + runColumns + `
	FROM runs
	ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += `
	LIMIT $1`
		args = append(args, limit)
	}

	rows, err := rdb.database.Query(Rebind(rdb.dbtype, query), args...)
	if err != nil {
		return []models.Run{}, err
	}
	defer rows.Close()

	runs := []models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return []models.Run{}, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Records returns the stored classifications of a run in input order.
func (rdb RunDatabase) Records(runID string) ([]models.Classification, error) {
	rows, err := rdb.database.Query(Rebind(rdb.dbtype, `
		SELECT idx, name, hex, note, is_duplicate, bucket_kind, bucket_id,
			ref_hex, distance, step, step_distance
		FROM run_records
		WHERE run_id = $1
		ORDER BY idx`), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.Classification{}
	for rows.Next() {
		var rec models.Classification
		var kind string
		var step sql.NullInt64
		var stepDistance sql.NullFloat64
		err := rows.Scan(
			&rec.Index,
			&rec.Name,
			&rec.Hex,
			&rec.Note,
			&rec.IsDuplicate,
			&kind,
			&rec.BucketID,
			&rec.RefHex,
			&rec.Distance,
			&step,
			&stepDistance,
		)
		if err != nil {
			return nil, err
		}
		rec.BucketKind = models.BucketKind(kind)
		if step.Valid {
			s := models.Step(step.Int64)
			rec.Step = &s
		}
		if stepDistance.Valid {
			d := stepDistance.Float64
			rec.StepDistance = &d
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Delete removes a run together with its records and bucket stats.
func (rdb RunDatabase) Delete(runID string) error {
	tx, err := rdb.database.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"run_records", "bucket_stats"} {
		if _, err := tx.Exec(Rebind(rdb.dbtype, `DELETE FROM `+table+` WHERE run_id = $1`), runID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	res, err := tx.Exec(Rebind(rdb.dbtype, `DELETE FROM runs WHERE run_id = $1`), runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NoRowsError{true, sql.ErrNoRows}
	}

	return tx.Commit()
}

func noRows(run models.Run, err error) (models.Run, error) {
	switch err {
	case sql.ErrNoRows:
		return models.Run{}, NoRowsError{true, err}
	case nil:
		return run, nil
	default:
		return models.Run{}, err
	}
}
