package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/vidtube/internal/models"
	"github.com/romariotrain/vidtube/internal/video/query"
	"github.com/romariotrain/vidtube/internal/video/repository"
)

const uniqueViolation = "23505"

const videoColumns = `
	v.id, v.video_file, v.thumbnail, v.title, v.description, v.duration,
	v.owner_id, v.is_published, v.version, v.created_at, v.updated_at`

const returningColumns = `
	id, video_file, thumbnail, title, description, duration,
	owner_id, is_published, version, created_at, updated_at`

const ownerColumns = `, u.username AS owner_username, u.email AS owner_email`

// withOwner wraps a write ending in RETURNING so the written row comes back
// joined with its owner, in one statement.
func withOwner(write string) string {
	return `WITH v AS (` + write + `)
		SELECT` + videoColumns + ownerColumns + `
		FROM v
		LEFT JOIN users u ON u.id = v.owner_id`
}

// videoRow is a video joined with its owner's display fields.
type videoRow struct {
	models.Video
	OwnerUsername sql.NullString `db:"owner_username"`
	OwnerEmail    sql.NullString `db:"owner_email"`
}

func (r videoRow) toModel() models.Video {
	v := r.Video
	if r.OwnerUsername.Valid {
		v.Owner = &models.Owner{
			ID:       v.OwnerID,
			Username: r.OwnerUsername.String,
			Email:    r.OwnerEmail.String,
		}
	}
	return v
}

type VideoRepo struct {
	db     *sqlx.DB
	outbox *OutboxRepo
}

var _ repository.VideoRepository = (*VideoRepo)(nil)

// NewVideoRepo returns a repository that records a models.VideoEvent in the
// outbox for every write. outbox may be nil to disable events.
func NewVideoRepo(db *sqlx.DB, outbox *OutboxRepo) *VideoRepo {
	return &VideoRepo{db: db, outbox: outbox}
}

func (r *VideoRepo) List(ctx context.Context, q query.VideoQuery) ([]models.Video, error) {
	order, err := orderClause(q.Sort)
	if err != nil {
		return nil, err
	}

	where, args := whereClause(q.Filter)
	n := len(args)
	args = append(args, q.Limit, q.Skip())

	stmt := `SELECT` + videoColumns + ownerColumns + `
		FROM videos v
		LEFT JOIN users u ON u.id = v.owner_id` +
		where + order +
		` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)

	var rows []videoRow
	if err := r.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, fmt.Errorf("video list: %w", err)
	}

	out := make([]models.Video, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *VideoRepo) Count(ctx context.Context, f query.Filter) (int64, error) {
	where, args := whereClause(f)

	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM videos v`+where, args...); err != nil {
		return 0, fmt.Errorf("video count: %w", err)
	}
	return n, nil
}

func (r *VideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	stmt := `SELECT` + videoColumns + ownerColumns + `
		FROM videos v
		LEFT JOIN users u ON u.id = v.owner_id
		WHERE v.id = $1`

	var row videoRow
	if err := r.db.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("video get by id: %w", err)
	}

	v := row.toModel()
	return &v, nil
}

func (r *VideoRepo) Create(ctx context.Context, v *models.Video) error {
	const q = `
		INSERT INTO videos (id, video_file, thumbnail, title, description, duration,
			owner_id, is_published, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			v.ID, v.VideoFile, v.Thumbnail, v.Title, v.Description, v.Duration,
			v.OwnerID, v.IsPublished, v.Version, v.CreatedAt, v.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return models.ErrConflict
			}
			return fmt.Errorf("video create: %w", err)
		}
		return r.record(ctx, tx, models.VideoPublishedEvent, v)
	})
}

func (r *VideoRepo) Update(ctx context.Context, v *models.Video, caller uuid.UUID) (*models.Video, error) {
	q := withOwner(`
		UPDATE videos
		SET title = $1, description = $2, thumbnail = $3,
			version = version + 1, updated_at = NOW()
		WHERE id = $4 AND owner_id = $5 AND version = $6
		RETURNING` + returningColumns)

	var updated models.Video
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var row videoRow
		err := tx.GetContext(ctx, &row, q, v.Title, v.Description, v.Thumbnail, v.ID, caller, v.Version)
		if errors.Is(err, sql.ErrNoRows) {
			return r.classify(ctx, tx, v.ID, caller)
		}
		if err != nil {
			return fmt.Errorf("video update: %w", err)
		}
		updated = row.toModel()
		return r.record(ctx, tx, models.VideoUpdatedEvent, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *VideoRepo) TogglePublished(ctx context.Context, id, caller uuid.UUID) (*models.Video, error) {
	q := withOwner(`
		UPDATE videos
		SET is_published = NOT is_published, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING` + returningColumns)

	var updated models.Video
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var row videoRow
		err := tx.GetContext(ctx, &row, q, id, caller)
		if errors.Is(err, sql.ErrNoRows) {
			return r.classify(ctx, tx, id, caller)
		}
		if err != nil {
			return fmt.Errorf("video toggle published: %w", err)
		}
		updated = row.toModel()
		return r.record(ctx, tx, models.VideoVisibilityChangedEvent, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *VideoRepo) Delete(ctx context.Context, id, caller uuid.UUID) error {
	const q = `
		DELETE FROM videos
		WHERE id = $1 AND owner_id = $2
		RETURNING` + returningColumns

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		var deleted models.Video
		err := tx.GetContext(ctx, &deleted, q, id, caller)
		if errors.Is(err, sql.ErrNoRows) {
			return r.classify(ctx, tx, id, caller)
		}
		if err != nil {
			return fmt.Errorf("video delete: %w", err)
		}
		return r.record(ctx, tx, models.VideoDeletedEvent, &deleted)
	})
}

// classify explains why a conditional write matched no row.
func (r *VideoRepo) classify(ctx context.Context, tx *sqlx.Tx, id, caller uuid.UUID) error {
	var owner uuid.UUID
	err := tx.GetContext(ctx, &owner, `SELECT owner_id FROM videos WHERE id = $1`, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.ErrNotFound
	case err != nil:
		return fmt.Errorf("video classify: %w", err)
	case owner != caller:
		return models.ErrForbidden
	default:
		return models.ErrConflict
	}
}

func (r *VideoRepo) record(ctx context.Context, tx *sqlx.Tx, eventType string, v *models.Video) error {
	if r.outbox == nil {
		return nil
	}
	return r.outbox.Add(ctx, tx, models.NewVideoEvent(eventType, v))
}

func (r *VideoRepo) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// whereClause renders f with positional arguments starting at $1.
func whereClause(f query.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		p := "$" + strconv.Itoa(len(args))
		conds = append(conds, `(v.title ILIKE `+p+` ESCAPE '\' OR v.description ILIKE `+p+` ESCAPE '\')`)
	}
	if f.OwnerID != uuid.Nil {
		args = append(args, f.OwnerID)
		conds = append(conds, `v.owner_id = $`+strconv.Itoa(len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause only emits columns from the sortable allow-list.
func orderClause(s query.Sort) (string, error) {
	col, ok := s.Field.Column()
	if !ok {
		return "", models.ErrInvalidArgument
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return " ORDER BY v." + col + " " + dir + ", v.id " + dir, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
