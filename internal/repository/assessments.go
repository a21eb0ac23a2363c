package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"wisefido-stress/internal/models"
)

// AssessmentRepository 压力评估仓库（对应 stress_assessments 表）
type AssessmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAssessmentRepository 创建评估仓库
func NewAssessmentRepository(db *sql.DB, logger *zap.Logger) *AssessmentRepository {
	return &AssessmentRepository{
		db:     db,
		logger: logger,
	}
}

// Insert 写入一条评估记录
//
// reasoning 以 JSONB 存储（与 alarm_events.trigger_data 同风格）。
func (r *AssessmentRepository) Insert(tenantID, subjectID string, a *models.StressAssessment) error {
	reasoningJSON, err := json.Marshal(a.Reasoning)
	if err != nil {
		return fmt.Errorf("failed to marshal reasoning: %w", err)
	}

	query := `
		INSERT INTO stress_assessments (
			tenant_id, subject_id, level, score, confidence,
			sdnn, rmssd, pnn50, sample_count, reasoning, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.Exec(query,
		tenantID,
		subjectID,
		int(a.Level),
		a.Score,
		a.Confidence,
		a.Metrics.SDNN,
		a.Metrics.RMSSD,
		a.Metrics.PNN50,
		a.Metrics.SampleCount,
		reasoningJSON,
		a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stress assessment: %w", err)
	}

	return nil
}

// GetRecent 查询某对象最近的评估记录，按时间降序
func (r *AssessmentRepository) GetRecent(tenantID, subjectID string, limit int) ([]models.StressAssessment, error) {
	query := `
		SELECT level, score, confidence, sdnn, rmssd, pnn50, sample_count, reasoning, assessed_at
		FROM stress_assessments
		WHERE tenant_id = $1 AND subject_id = $2
		ORDER BY assessed_at DESC
		LIMIT $3
	`

	rows, err := r.db.Query(query, tenantID, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stress assessments: %w", err)
	}
	defer rows.Close()

	var assessments []models.StressAssessment
	for rows.Next() {
		var a models.StressAssessment
		var level int
		var reasoningJSON []byte

		if err := rows.Scan(
			&level,
			&a.Score,
			&a.Confidence,
			&a.Metrics.SDNN,
			&a.Metrics.RMSSD,
			&a.Metrics.PNN50,
			&a.Metrics.SampleCount,
			&reasoningJSON,
			&a.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stress assessment: %w", err)
		}

		a.Level = models.StressLevel(level)
		a.Metrics.ComputedAt = a.Timestamp
		if len(reasoningJSON) > 0 {
			if err := json.Unmarshal(reasoningJSON, &a.Reasoning); err != nil {
				r.logger.Warn("Failed to unmarshal reasoning",
					zap.String("subject_id", subjectID),
					zap.Error(err),
				)
			}
		}

		assessments = append(assessments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stress assessments: %w", err)
	}

	return assessments, nil
}
