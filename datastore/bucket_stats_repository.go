package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/color-game/consolidation/models"
)

type BucketStatsRepository interface {
	CreateOrUpdate(stat models.BucketStat) (models.BucketStat, error)
	GetByRun(runID string) ([]models.BucketStat, error)
	GetByRunAndBucket(runID, bucketID string) (models.BucketStat, error)
	GetHistory(bucketID string, limit int) ([]models.BucketStat, error)
}

type BucketStatsDatabase struct {
	database *sql.DB
	dbtype   string
}

func NewBucketStatsDatabase(db *sql.DB, dbtype string) (BucketStatsDatabase, error) {
	if db == nil {
		return BucketStatsDatabase{}, errors.New("nil database handle")
	}
	return BucketStatsDatabase{database: db, dbtype: dbtype}, nil
}

// CreateOrUpdate inserts or updates the tally of one bucket in one run
func (bdb BucketStatsDatabase) CreateOrUpdate(stat models.BucketStat) (models.BucketStat, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if stat.ID == "" {
		stat.ID = uuid.New().String()
	}
	if stat.CreatedAt.IsZero() {
		stat.CreatedAt = now
	}
	stat.UpdatedAt = now

	sqlStatement := Rebind(bdb.dbtype, `
		INSERT INTO bucket_stats (
			id, run_id, bucket_kind, bucket_id, member_count, duplicate_count,
			max_distance, mean_distance, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id, bucket_id)
		DO UPDATE SET
			bucket_kind = EXCLUDED.bucket_kind,
			member_count = EXCLUDED.member_count,
			duplicate_count = EXCLUDED.duplicate_count,
			max_distance = EXCLUDED.max_distance,
			mean_distance = EXCLUDED.mean_distance,
			updated_at = EXCLUDED.updated_at`)

	_, err := bdb.database.Exec(
		sqlStatement,
		stat.ID,
		stat.RunID,
		string(stat.BucketKind),
		stat.BucketID,
		stat.Count,
		stat.Duplicates,
		stat.MaxDistance,
		stat.MeanDistance,
		stat.CreatedAt,
		stat.UpdatedAt,
	)
	if err != nil {
		return models.BucketStat{}, fmt.Errorf("failed to create or update bucket stat: %w", err)
	}

	// On conflict the stored id and created_at win.
	return bdb.GetByRunAndBucket(stat.RunID, stat.BucketID)
}

const bucketStatColumns = `id, run_id, bucket_kind, bucket_id, member_count, duplicate_count,
			max_distance, mean_distance, created_at, updated_at`

func scanBucketStat(row rowScanner) (models.BucketStat, error) {
	var stat models.BucketStat
	var kind string
	err := row.Scan(
		&stat.ID,
		&stat.RunID,
		&kind,
		&stat.BucketID,
		&stat.Count,
		&stat.Duplicates,
		&stat.MaxDistance,
		&stat.MeanDistance,
		&stat.CreatedAt,
		&stat.UpdatedAt,
	)
	stat.BucketKind = models.BucketKind(kind)
	return stat, err
}

// GetByRun lists a run's buckets, fullest first
func (bdb BucketStatsDatabase) GetByRun(runID string) ([]models.BucketStat, error) {
	rows, err := bdb.database.Query(Rebind(bdb.dbtype, `
		SELECT `+bucketStatColumns+`
		FROM bucket_stats
		WHERE run_id = $1
		ORDER BY member_count DESC, bucket_id ASC`), runID)
	if err != nil {
		return []models.BucketStat{}, err
	}
	defer rows.Close()

	return collectBucketStats(rows)
}

func (bdb BucketStatsDatabase) GetByRunAndBucket(runID, bucketID string) (models.BucketStat, error) {
	row := bdb.database.QueryRow(Rebind(bdb.dbtype, `
		SELECT `+bucketStatColumns+`
		FROM bucket_stats
		WHERE run_id = $1 AND bucket_id = $2`), runID, bucketID)

	stat, err := scanBucketStat(row)
	switch err {
	case sql.ErrNoRows:
		return models.BucketStat{}, NoRowsError{true, err}
	case nil:
		return stat, nil
	default:
		return models.BucketStat{}, err
	}
}

// GetHistory returns one bucket's tally across runs, newest run first
func (bdb BucketStatsDatabase) GetHistory(bucketID string, limit int) ([]models.BucketStat, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := bdb.database.Query(Rebind(bdb.dbtype, `
		SELECT
			bs.id, bs.run_id, bs.bucket_kind, bs.bucket_id, bs.member_count, bs.duplicate_count,
			bs.max_distance, bs.mean_distance, bs.created_at, bs.updated_at
		FROM bucket_stats bs
		JOIN runs r ON bs.run_id = r.run_id
		WHERE bs.bucket_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2`), bucketID, limit)
	if err != nil {
		return []models.BucketStat{}, err
	}
	defer rows.Close()

	return collectBucketStats(rows)
}

func collectBucketStats(rows *sql.Rows) ([]models.BucketStat, error) {
	stats := []models.BucketStat{}
	for rows.Next() {
		stat, err := scanBucketStat(rows)
		if err != nil {
			return []models.BucketStat{}, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}
