package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"resume-review/api/internal/upload"
)

const Schema = `
create table if not exists upload_reviews (
  id          uuid primary key,
  source      text not null,
  file_name   text not null,
  size_bytes  bigint not null default 0,
  status      int not null default 0,
  review      text not null default '',
  present     boolean not null default false,
  error       text,
  started_at  timestamptz not null,
  duration_ms bigint not null default 0,
  created_at  timestamptz not null default now()
);
create index if not exists upload_reviews_source_created_idx
  on upload_reviews (source, created_at desc);`

type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// Row is one stored upload.
type Row struct {
	ID        uuid.UUID
	Source    string
	FileName  string
	Size      int64
	Status    int
	Review    string
	Present   bool
	Err       string
	StartedAt time.Time
	Duration  time.Duration
	CreatedAt time.Time
}

func (r *ReviewRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, Schema)
	return err
}

// Record implements upload.History.
func (r *ReviewRepo) Record(ctx context.Context, e upload.Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	const q = `
insert into upload_reviews (
  id, source, file_name, size_bytes, status, review, present, error, started_at, duration_ms
) values ($1,$2,$3,$4,$5,$6,$7,nullif($8,''),$9,$10)`
	_, err := r.DB.ExecContext(ctx, q,
		e.ID, e.Source, e.FileName, e.Size, e.Status, e.Review, e.Present, e.Err,
		e.StartedAt, e.Duration.Milliseconds(),
	)
	return err
}

// Recent returns up to limit rows for source, newest first.
func (r *ReviewRepo) Recent(ctx context.Context, source string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
select id, source, file_name, size_bytes, status, review, present,
       coalesce(error,'') as error, started_at, duration_ms, created_at
from upload_reviews
where source = $1
order by created_at desc
limit $2`
	rows, err := r.DB.QueryContext(ctx, q, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			row Row
			ms  int64
		)
		if err := rows.Scan(&row.ID, &row.Source, &row.FileName, &row.Size, &row.Status,
			&row.Review, &row.Present, &row.Err, &row.StartedAt, &ms, &row.CreatedAt); err != nil {
			return nil, err
		}
		row.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, row)
	}
	return out, rows.Err()
}

// PurgeOlderThan удаляет старую историю, чтобы не раздувать БД.
func (r *ReviewRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from upload_reviews where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
