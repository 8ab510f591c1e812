package stock

import (
	"context"
)

// Repository 库存仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口，infrastructure层（Redis）实现
// 2. 便于Mock测试，应用层不依赖具体存储
// 3. 原子性边界：Exists/Get/GetAll/Save/Set/Delete是复合操作，内部
//    由多个存储调用组成，不要求整体原子（部分完成仍是一致状态）；
//    Issue的容量检查与计数递增必须在存储侧作为单一临界区执行
type Repository interface {
	// Exists 判断(platform, sku)是否存在库存记录
	Exists(ctx context.Context, platform, sku string) (bool, error)

	// Get 读取库存记录及两个渠道的派生可用量
	// 记录不存在时返回(nil, nil)，不报错（存在性由调用方决定语义）
	Get(ctx context.Context, platform, sku string) (*AvailableStock, error)

	// GetAll 枚举平台下所有库存记录（前缀扫描）
	// 个别记录状态不一致或扫描间隙被删除时跳过该条，不中断整体
	GetAll(ctx context.Context, platform string) ([]*AvailableStock, error)

	// Save upsert语义：
	// - 记录不存在：以零发放计数初始化
	// - 记录已存在：maximum/allocation不可变（违反返回ErrImmutableFieldChanged），
	//   渠道上限与过期时间委托引擎update原子写入
	// 成功后返回重新读取的记录
	Save(ctx context.Context, changes *SaveStock) (*AvailableStock, error)

	// Set 无条件覆盖全部字段（含发放计数）
	// 特权操作，仅用于管理端重置；写入前校验载荷一致性，
	// 违反返回ErrInvalidProperties且不写入
	Set(ctx context.Context, record *StockRecord) (*AvailableStock, error)

	// Delete 删除记录的全部字段
	// 记录不存在返回ErrStockNotFound
	Delete(ctx context.Context, platform, sku string) error

	// Issue 通过指定渠道发放一个库存单位
	// 容量检查与计数递增由存储侧原子执行；成功后重新读取记录，
	// 并附上对外发放序号（RANDOM模式经洗牌映射）
	// 失败：ErrStockNotFound / ErrOutOfStock
	Issue(ctx context.Context, platform, sku string, channel Channel) (*IssuedStock, error)
}

// LogRepository 发放审计日志仓储接口
// 日志只增不改（Append-Only），存MySQL，与Redis权威数据互为对账依据
type LogRepository interface {
	// Create 写入一条发放流水
	Create(ctx context.Context, log *IssueLog) error

	// ListBySku 分页查询指定SKU的发放流水（按时间倒序）
	ListBySku(ctx context.Context, platform, sku string, page, pageSize int) ([]*IssueLog, int64, error)
}
