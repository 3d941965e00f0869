package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type reportRepository struct {
	db  *DB
	log zerolog.Logger
}

var _ ports.ReportRepository = (*reportRepository)(nil) // Ensure compliance

// NewReportRepository creates a new repository for report operations.
func NewReportRepository(db *DB, baseLogger *zerolog.Logger) ports.ReportRepository {
	return &reportRepository{
		db:  db,
		log: baseLogger.With().Str("component", "report_repo").Logger(),
	}
}

var reportCols = []string{"id", "user_id", "text", "status", "link", "created_at"}

// Create inserts a NEW report and fills in the generated id and timestamp.
func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	query, args, err := r.db.sq.Insert("reports").
		Columns("user_id", "text", "status").
		Values(report.UserID, report.Text, domain.ReportNew).
		Suffix("RETURNING id, status, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	err = r.db.withConn(ctx, func(conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, query, args...).Scan(&report.ID, &report.Status, &report.CreatedAt)
	})
	if err != nil {
		r.log.Error().Err(err).Int64("user_id", report.UserID).Msg("Failed to insert report")
		return err
	}
	report.Link = nil
	return nil
}

// GetByID returns nil, nil when the report does not exist.
func (r *reportRepository) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	query, args, err := r.db.sq.Select(reportCols...).
		From("reports").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var report *domain.Report
	err = r.db.withConn(ctx, func(conn *pgxpool.Conn) error {
		var err error
		report, err = scanReport(conn.QueryRow(ctx, query, args...))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error().Err(err).Int64("report_id", id).Msg("Failed to get report")
		return nil, err
	}
	return report, nil
}

// ListByStatus streams the matching reports in id order. The connection is
// held only while the caller ranges over the sequence.
func (r *reportRepository) ListByStatus(ctx context.Context, status domain.ReportStatus) iter.Seq2[*domain.Report, error] {
	return func(yield func(*domain.Report, error) bool) {
		query, args, err := r.db.sq.Select(reportCols...).
			From("reports").
			Where(sq.Eq{"status": status}).
			OrderBy("id").
			ToSql()
		if err != nil {
			yield(nil, fmt.Errorf("build select: %w", err))
			return
		}

		err = r.db.withConn(ctx, func(conn *pgxpool.Conn) error {
			rows, err := conn.Query(ctx, query, args...)
			if err != nil {
				return err
			}
			defer rows.Close()

			for rows.Next() {
				report, err := scanReport(rows)
				if err != nil {
					return err
				}
				if !yield(report, nil) {
					return nil
				}
			}
			return rows.Err()
		})
		if err != nil {
			r.log.Error().Err(err).Str("status", string(status)).Msg("Failed to list reports")
			yield(nil, err)
		}
	}
}

// UpdateStatus moves the report only if it still has status 'from'.
func (r *reportRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.ReportStatus, link *string) error {
	query, args, err := r.db.sq.Update("reports").
		Set("status", to).
		Set("link", link).
		Where(sq.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	var affected int64
	err = r.db.withConn(ctx, func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, query, args...)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		r.log.Error().Err(err).Int64("report_id", id).Msg("Failed to update report status")
		return err
	}
	if affected == 1 {
		return nil
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrReportNotFound
	}
	return domain.ErrStatusConflict
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var report domain.Report
	if err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.Text,
		&report.Status,
		&report.Link,
		&report.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}
