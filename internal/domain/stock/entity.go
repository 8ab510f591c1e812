package stock

import (
	"time"
)

// Channel 发放渠道
// 每个渠道是总库存池下的一个子池，可以有独立上限
type Channel string

const (
	ChannelClaim    Channel = "claim"    // 领取渠道（运营活动赠发）
	ChannelPurchase Channel = "purchase" // 购买渠道
)

// ParseChannel 解析渠道参数
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelClaim, ChannelPurchase:
		return Channel(s), nil
	default:
		return "", ErrInvalidChannel.WithMessagef("无效的发放渠道: '%s'（只允许claim或purchase）", s)
	}
}

// Allocation 发放序号分配模式
type Allocation string

const (
	// AllocationSequential 顺序模式：对外序号 = 原始发放计数
	AllocationSequential Allocation = "SEQUENTIAL"

	// AllocationRandom 随机模式：对外序号经确定性洗牌后分配，
	// 避免向终端用户暴露发放顺序和剩余量信号
	AllocationRandom Allocation = "RANDOM"
)

// ParseAllocation 解析分配模式参数
func ParseAllocation(s string) (Allocation, error) {
	switch Allocation(s) {
	case AllocationSequential, AllocationRandom:
		return Allocation(s), nil
	default:
		return "", ErrInvalidAllocation.WithMessagef("无效的分配模式: '%s'（只允许SEQUENTIAL或RANDOM）", s)
	}
}

// StockRecord 库存记录（聚合根）
// DDD设计说明:
// 1. 以(platform, sku)为业务主键，一个SKU一条记录
// 2. 总池（Maximum/Issued）与渠道子池（*ForClaim/*ForPurchase）并存，
//    渠道上限为nil时表示该渠道不设独立上限，回落到共享总池
// 3. 记录整体存放在Redis hash中，进程内不持有权威副本
//
// 不变式（每次成功变更后必须成立）：
//   - Issued <= Maximum
//   - IssuedForClaim + IssuedForPurchase = Issued
//   - 渠道上限已设置时：IssuedForX <= MaximumForX
//   - 两个渠道上限都设置时：MaximumForClaim + MaximumForPurchase <= Maximum
//   - Maximum与Allocation创建后不可变（由仓储save操作保证）
type StockRecord struct {
	Platform string // 平台（租户命名空间）
	Sku      string // SKU编码

	Maximum            int  // 总发放上限
	MaximumForClaim    *int // claim渠道上限（nil=不设独立上限）
	MaximumForPurchase *int // purchase渠道上限（nil=不设独立上限）

	Issued            int // 已发放总数（两个渠道合计）
	IssuedForClaim    int // claim渠道已发放数
	IssuedForPurchase int // purchase渠道已发放数

	Expires    *time.Time // 过期时间（nil=永不过期），过期后可用量一律为0
	Allocation Allocation // 发放序号分配模式
}

// AvailableStock 带派生可用量的库存记录
// 可用量是读取时刻的快照，不持久化
type AvailableStock struct {
	StockRecord

	AvailableForClaim    int // claim渠道当前可领数量
	AvailableForPurchase int // purchase渠道当前可购数量
}

// IssuedStock 一次成功发放的结果
type IssuedStock struct {
	AvailableStock

	Issue int // 对外发放序号（RANDOM模式下经过洗牌）
}

// IsExpired 判断记录在指定时刻是否已过期
func (r *StockRecord) IsExpired(now time.Time) bool {
	return r.Expires != nil && r.Expires.Before(now)
}

// AvailableFor 计算指定渠道在指定时刻的可用量
//
// 规则（与Redis侧available脚本保持一致）：
// 1. 已过期 → 0
// 2. 总池余量 = Maximum - Issued，<=0 → 0
// 3. 渠道未设独立上限 → 返回总池余量
// 4. 渠道设了上限 → min(总池余量, 渠道上限 - 渠道已发放)
//
// 总池和渠道子池是两个独立约束，对外可见量取收紧的那个。
func (r *StockRecord) AvailableFor(channel Channel, now time.Time) int {
	if r.IsExpired(now) {
		return 0
	}

	overall := r.Maximum - r.Issued
	if overall <= 0 {
		return 0
	}

	var limit *int
	var issued int
	if channel == ChannelClaim {
		limit = r.MaximumForClaim
		issued = r.IssuedForClaim
	} else {
		limit = r.MaximumForPurchase
		issued = r.IssuedForPurchase
	}

	// 渠道不设上限：回落到共享总池
	if limit == nil {
		return overall
	}

	channelAvailable := *limit - issued
	if channelAvailable <= 0 {
		return 0
	}
	if channelAvailable < overall {
		return channelAvailable
	}
	return overall
}

// ValidateForSet 校验覆盖写入（set）载荷的内部一致性
// set是特权操作，允许直接写发放计数，所以必须先验证：
//   - 渠道上限之和不超过总量
//   - 渠道已发放之和不超过已发放总数
//   - 已发放总数不超过总量
//
// 任一违反都返回ErrInvalidProperties，且不落库
func (r *StockRecord) ValidateForSet() error {
	if r.Maximum <= 0 {
		return ErrInvalidProperties.WithMessagef(
			"maximum必须为正整数. platform: %s, sku: %s", r.Platform, r.Sku)
	}

	if r.Issued < 0 || r.IssuedForClaim < 0 || r.IssuedForPurchase < 0 {
		return ErrInvalidProperties.WithMessagef(
			"发放计数不能为负数. platform: %s, sku: %s", r.Platform, r.Sku)
	}

	// 未设置的渠道上限按0参与求和（与引擎update脚本一致）
	if capSum := r.channelCapSum(); capSum > r.Maximum {
		return ErrInvalidProperties.WithMessagef(
			"渠道上限之和(%d)超过maximum(%d). platform: %s, sku: %s",
			capSum, r.Maximum, r.Platform, r.Sku)
	}

	if r.IssuedForClaim+r.IssuedForPurchase > r.Issued {
		return ErrInvalidProperties.WithMessagef(
			"渠道已发放之和(%d)超过issued(%d). platform: %s, sku: %s",
			r.IssuedForClaim+r.IssuedForPurchase, r.Issued, r.Platform, r.Sku)
	}

	if r.Issued > r.Maximum {
		return ErrInvalidProperties.WithMessagef(
			"issued(%d)超过maximum(%d). platform: %s, sku: %s",
			r.Issued, r.Maximum, r.Platform, r.Sku)
	}

	return nil
}

// channelCapSum 返回渠道上限之和，未设置的按0计
func (r *StockRecord) channelCapSum() int {
	sum := 0
	if r.MaximumForClaim != nil {
		sum += *r.MaximumForClaim
	}
	if r.MaximumForPurchase != nil {
		sum += *r.MaximumForPurchase
	}
	return sum
}

// SaveStock 仓储save（upsert）操作的输入
// 记录已存在时Maximum和Allocation必须与存量一致（不可变字段），
// 其余字段按本次请求覆盖
type SaveStock struct {
	Platform string
	Sku      string

	Maximum    int
	Allocation Allocation

	MaximumForClaim    *int
	MaximumForPurchase *int
	Expires            *time.Time
}

// CheckImmutable 校验upsert是否试图修改不可变字段
func (s *SaveStock) CheckImmutable(existing *StockRecord) error {
	if s.Maximum != existing.Maximum {
		return ErrImmutableFieldChanged.WithMessagef(
			"maximum创建后不可修改. platform: %s, sku: %s", s.Platform, s.Sku)
	}
	if s.Allocation != existing.Allocation {
		return ErrImmutableFieldChanged.WithMessagef(
			"allocation创建后不可修改. platform: %s, sku: %s", s.Platform, s.Sku)
	}
	return nil
}
