package stock

import "time"

// IssueLog 发放审计流水（领域模型）
//
// 为什么需要发放日志？
//   - 审计需求：每次发放必须可追溯（谁在什么渠道拿到了几号）
//   - 对账需求：MySQL流水与Redis计数核对，定位超发/漏发
//
// 设计原则：
//   - 只增不改（Append-Only）
//   - 记录发放时刻的计数快照
//   - 写入是尽力而为：流水失败不回滚已成功的发放（Redis是权威数据源）
type IssueLog struct {
	// 主键ID
	ID uint `gorm:"primaryKey" json:"id"`

	// 平台
	Platform string `gorm:"index:idx_platform_sku;size:64;not null" json:"platform"`

	// SKU编码
	Sku string `gorm:"index:idx_platform_sku;size:128;not null" json:"sku"`

	// 发放渠道（claim/purchase）
	Channel Channel `gorm:"type:varchar(16);not null" json:"channel"`

	// 发放后的原始计数（Redis issued字段）
	Issued int `gorm:"not null" json:"issued"`

	// 对外发放序号（RANDOM模式下与Issued不同）
	IssueNumber int `gorm:"not null" json:"issue_number"`

	// 创建时间
	CreatedAt time.Time `gorm:"index:idx_created_at" json:"created_at"`
}

// TableName 指定表名
func (IssueLog) TableName() string {
	return "issue_logs"
}
