package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"wisefido-stress/internal/monitor"
)

// SessionRepository 监测会话仓库（对应 stress_sessions 表）
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository 创建会话仓库
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// Insert 写入一条已关闭会话的汇总
func (r *SessionRepository) Insert(tenantID, subjectID string, summary *monitor.Summary) error {
	levelCounts := make(map[string]int, len(summary.LevelCounts))
	for level, count := range summary.LevelCounts {
		levelCounts[level.String()] = count
	}
	levelCountsJSON, err := json.Marshal(levelCounts)
	if err != nil {
		return fmt.Errorf("failed to marshal level counts: %w", err)
	}

	query := `
		INSERT INTO stress_sessions (
			tenant_id, subject_id, started_at, ended_at,
			assessment_count, average_score, min_score, max_score,
			level_counts, high_stress_episodes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.Exec(query,
		tenantID,
		subjectID,
		summary.StartTime,
		summary.EndTime,
		summary.AssessmentCount,
		summary.AverageScore,
		summary.MinScore,
		summary.MaxScore,
		levelCountsJSON,
		summary.HighStressEpisodes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stress session: %w", err)
	}

	return nil
}
