package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// DeviceBinding 可穿戴设备与监测对象的绑定关系
type DeviceBinding struct {
	DeviceID  string
	TenantID  string
	SubjectID string
}

// DeviceRepository 设备绑定仓库（对应 wearable_devices 表）
//
// MQTT 主题里只有设备标识，tenant/subject 归属从绑定表解析。
type DeviceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDeviceRepository 创建设备仓库
func NewDeviceRepository(db *sql.DB, logger *zap.Logger) *DeviceRepository {
	return &DeviceRepository{
		db:     db,
		logger: logger,
	}
}

// GetBindingByDeviceID 按设备ID查询绑定关系
func (r *DeviceRepository) GetBindingByDeviceID(deviceID string) (*DeviceBinding, error) {
	query := `
		SELECT device_id, tenant_id, subject_id
		FROM wearable_devices
		WHERE device_id = $1 AND subject_id IS NOT NULL
	`

	var binding DeviceBinding
	err := r.db.QueryRow(query, deviceID).Scan(
		&binding.DeviceID,
		&binding.TenantID,
		&binding.SubjectID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("device not bound to a subject: %s", deviceID)
		}
		return nil, fmt.Errorf("failed to query device binding: %w", err)
	}

	return &binding, nil
}
