package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"linkscope/go-server/internal/models"
)

var ErrNotFound = errors.New("analysis not found")

func (d *Database) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO analyses (id, target, normalized, target_type, risk_score, risk_level, confidence, summary, evidence, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.Target, a.Normalized, a.TargetType, a.RiskScore, a.RiskLevel,
		a.Confidence, a.Summary, a.Evidence, a.DurationMS, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

func (d *Database) GetAnalysis(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	row := d.Pool.QueryRow(ctx, `
		SELECT id, target, normalized, target_type, risk_score, risk_level, confidence, summary, evidence, duration_ms, created_at
		FROM analyses WHERE id = $1`, id)

	var a models.Analysis
	err := row.Scan(&a.ID, &a.Target, &a.Normalized, &a.TargetType, &a.RiskScore,
		&a.RiskLevel, &a.Confidence, &a.Summary, &a.Evidence, &a.DurationMS, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analysis: %w", err)
	}
	return &a, nil
}

// ListAnalyses returns the newest analyses first. When search is non-empty
// it filters on a substring match against the normalized target.
func (d *Database) ListAnalyses(ctx context.Context, search string, limit, offset int32) ([]models.Analysis, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if search != "" {
		rows, err = d.Pool.Query(ctx, `
			SELECT id, target, normalized, target_type, risk_score, risk_level, confidence, summary, evidence, duration_ms, created_at
			FROM analyses WHERE normalized ILIKE $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			"%"+search+"%", limit, offset)
	} else {
		rows, err = d.Pool.Query(ctx, `
			SELECT id, target, normalized, target_type, risk_score, risk_level, confidence, summary, evidence, duration_ms, created_at
			FROM analyses ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var out []models.Analysis
	for rows.Next() {
		var a models.Analysis
		if err := rows.Scan(&a.ID, &a.Target, &a.Normalized, &a.TargetType, &a.RiskScore,
			&a.RiskLevel, &a.Confidence, &a.Summary, &a.Evidence, &a.DurationMS, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (d *Database) CountAnalyses(ctx context.Context, search string) (int64, error) {
	var count int64
	var err error
	if search != "" {
		err = d.Pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM analyses WHERE normalized ILIKE $1`,
			"%"+search+"%").Scan(&count)
	} else {
		err = d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return count, nil
}

func (d *Database) RecentStats(ctx context.Context, days int32) ([]models.DailyStats, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE risk_level = 'Malicious'),
		       COUNT(*) FILTER (WHERE risk_level = 'Suspicious'),
		       COUNT(*) FILTER (WHERE risk_level = 'Safe'),
		       COALESCE(AVG(risk_score), 0),
		       COALESCE(AVG(duration_ms), 0)
		FROM analyses
		WHERE created_at >= now() - make_interval(days => $1)
		GROUP BY day ORDER BY day DESC`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var out []models.DailyStats
	for rows.Next() {
		var s models.DailyStats
		if err := rows.Scan(&s.Date, &s.TotalAnalyses, &s.Malicious, &s.Suspicious,
			&s.Safe, &s.AvgRiskScore, &s.AvgDurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type TargetCount struct {
	Normalized string
	Count      int64
}

func (d *Database) PopularTargets(ctx context.Context, limit int32) ([]TargetCount, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT normalized, COUNT(*) AS cnt FROM analyses
		GROUP BY normalized ORDER BY cnt DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular targets: %w", err)
	}
	defer rows.Close()

	var out []TargetCount
	for rows.Next() {
		var tc TargetCount
		if err := rows.Scan(&tc.Normalized, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan popular target row: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
