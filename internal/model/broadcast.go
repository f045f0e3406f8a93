package model

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 广播记录状态, pending -> sent -> confirmed / dropped / timeout, 任一阶段出错为 failed
const (
	BroadcastPending   = "pending"
	BroadcastSent      = "sent"
	BroadcastConfirmed = "confirmed"
	BroadcastDropped   = "dropped"
	BroadcastTimeout   = "timeout"
	BroadcastFailed    = "failed"
)

// Broadcast 广播任务记录表
// Fingerprint 是请求载荷的 blake3 指纹, 唯一索引用于去重
type Broadcast struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID     string    `gorm:"type:varchar(64);index" json:"request_id"`
	Fingerprint   string    `gorm:"type:char(64);not null;uniqueIndex" json:"fingerprint"`
	Kind          string    `gorm:"type:varchar(16);not null" json:"kind"` // transaction, staking
	Directive     string    `gorm:"type:varchar(32)" json:"directive,omitempty"`
	Sender        string    `gorm:"type:varchar(64);not null;index" json:"sender"` // one1 地址
	Nonce         *uint64   `json:"nonce,omitempty"`
	TxHash        string    `gorm:"type:varchar(66);index" json:"tx_hash,omitempty"`
	Status        string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	BlockNumber   *uint64   `json:"block_number,omitempty"`
	Confirmations uint64    `gorm:"not null;default:0" json:"confirmations"`
	ErrorCode     int       `gorm:"not null;default:0" json:"error_code"`
	Error         string    `gorm:"type:text" json:"error,omitempty"`
	Payload       []byte    `gorm:"type:bytea;not null" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Broadcast) TableName() string {
	return "broadcasts"
}

// BroadcastRepository 广播记录的 gorm 实现
type BroadcastRepository struct {
	db *gorm.DB
}

func NewBroadcastRepository(db *gorm.DB) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

// Create 插入记录; 指纹已存在时不插入并返回 false
func (r *BroadcastRepository) Create(ctx context.Context, b *Broadcast) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "fingerprint"}}, DoNothing: true}).
		Create(b)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Update 按主键更新部分字段
func (r *BroadcastRepository) Update(ctx context.Context, id uint64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&Broadcast{}).Where("id = ?", id).Updates(fields).Error
}

// FindByFingerprint 按请求指纹查找记录, 重复投递时据此恢复处理
func (r *BroadcastRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*Broadcast, error) {
	var b Broadcast
	if err := r.db.WithContext(ctx).Where("fingerprint = ?", fingerprint).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
