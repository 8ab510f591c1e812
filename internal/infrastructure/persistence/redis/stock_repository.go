package redis

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/stock-service/internal/domain/stock"
	apperrors "github.com/xiebiao/stock-service/pkg/errors"
)

// 库存记录hash字段名
// 与Lua脚本中的字段名必须保持一致
const (
	fieldMaximum            = "maximum"
	fieldMaximumForClaim    = "maximumForClaim"
	fieldMaximumForPurchase = "maximumForPurchase"
	fieldIssued             = "issued"
	fieldIssuedForClaim     = "issuedForClaim"
	fieldIssuedForPurchase  = "issuedForPurchase"
	fieldExpires            = "expires"
	fieldAllocation         = "allocation"
)

// stockRepository 库存仓储实现（Redis）
//
// 设计说明:
// 1. 实现domain/stock/repository.go定义的接口
// 2. 记录整体存放在hash：{prefix}:{platform}:{sku}，
//    可选字段未设置时存空字符串哨兵（与数值0严格区分）
// 3. 原子操作（available/issue/update）委托AllocationStore的
//    服务端脚本；复合操作（save/set/get/getAll/delete）由多个
//    存储调用组成，部分完成仍是一致状态，可由调用方重试纠正
// 4. 每次读取都重新访问Redis，进程内不持有任何权威副本
type stockRepository struct {
	client *redis.Client
	engine *AllocationStore
	picker *stock.IssuePicker
	prefix string
}

// NewStockRepository 创建库存仓储
func NewStockRepository(client *redis.Client, engine *AllocationStore, picker *stock.IssuePicker, keyPrefix string) stock.Repository {
	return &stockRepository{
		client: client,
		engine: engine,
		picker: picker,
		prefix: keyPrefix,
	}
}

// key 生成库存记录键
// 格式：{prefix}:{platform}:{sku}
func (r *stockRepository) key(platform, sku string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, platform, sku)
}

// Exists 判断库存记录是否存在
func (r *stockRepository) Exists(ctx context.Context, platform, sku string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(platform, sku)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "查询库存记录存在性失败")
	}
	return n > 0, nil
}

// Get 读取库存记录及派生可用量
// 记录不存在返回(nil, nil)
func (r *stockRepository) Get(ctx context.Context, platform, sku string) (*stock.AvailableStock, error) {
	key := r.key(platform, sku)

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "读取库存记录失败")
	}
	if len(fields) == 0 {
		return nil, nil
	}

	record, err := parseRecord(platform, sku, fields)
	if err != nil {
		return nil, err
	}

	// 可用量通过引擎的只读脚本取，与issue看到的是同一套规则
	now := time.Now()
	availableForClaim, err := r.engine.Available(ctx, key, stock.ChannelClaim, now)
	if err != nil {
		if stock.IsNotFound(err) {
			// HGETALL之后、脚本执行前被并发删除：按不存在处理
			return nil, nil
		}
		return nil, err
	}

	availableForPurchase, err := r.engine.Available(ctx, key, stock.ChannelPurchase, now)
	if err != nil {
		if stock.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return &stock.AvailableStock{
		StockRecord:          *record,
		AvailableForClaim:    availableForClaim,
		AvailableForPurchase: availableForPurchase,
	}, nil
}

// GetAll 枚举平台下所有库存记录
// SCAN前缀扫描，单条状态异常（扫描间隙被删、字段损坏）跳过不报错
func (r *stockRepository) GetAll(ctx context.Context, platform string) ([]*stock.AvailableStock, error) {
	pattern := fmt.Sprintf("%s:%s:*", r.prefix, platform)

	entities := make([]*stock.AvailableStock, 0)

	// SCAN游标迭代，避免KEYS阻塞整个实例
	iter := r.client.Scan(ctx, 0, pattern, 1000).Iterator()
	skuPrefix := fmt.Sprintf("%s:%s:", r.prefix, platform)

	for iter.Next(ctx) {
		sku := iter.Val()[len(skuPrefix):]

		entity, err := r.Get(ctx, platform, sku)
		if err != nil {
			// 单条字段损坏跳过；传输层故障上抛，
			// 不能把半个平台的清单当成全量
			if apperrors.IsCode(err, apperrors.ErrCodeCorruptRecord) {
				continue
			}
			return nil, err
		}
		if entity == nil {
			continue
		}

		entities = append(entities, entity)
	}
	if err := iter.Err(); err != nil {
		return nil, apperrors.Wrap(err, "扫描库存记录失败")
	}

	return entities, nil
}

// Save upsert库存记录
// 不存在：零发放计数初始化（走Set路径）
// 已存在：校验不可变字段后，渠道上限/过期时间委托引擎原子更新
func (r *stockRepository) Save(ctx context.Context, changes *stock.SaveStock) (*stock.AvailableStock, error) {
	existing, err := r.Get(ctx, changes.Platform, changes.Sku)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		return r.Set(ctx, &stock.StockRecord{
			Platform:           changes.Platform,
			Sku:                changes.Sku,
			Maximum:            changes.Maximum,
			MaximumForClaim:    changes.MaximumForClaim,
			MaximumForPurchase: changes.MaximumForPurchase,
			Expires:            changes.Expires,
			Allocation:         changes.Allocation,
		})
	}

	if err := changes.CheckImmutable(&existing.StockRecord); err != nil {
		return nil, err
	}

	if err := r.engine.Update(ctx, r.key(changes.Platform, changes.Sku),
		changes.MaximumForClaim, changes.MaximumForPurchase, changes.Expires); err != nil {
		return nil, err
	}

	return r.Get(ctx, changes.Platform, changes.Sku)
}

// Set 无条件覆盖全部字段（含发放计数）
// 特权操作：先校验载荷一致性，违反不写入；写入是单条HSET，原子生效
func (r *stockRepository) Set(ctx context.Context, record *stock.StockRecord) (*stock.AvailableStock, error) {
	if err := record.ValidateForSet(); err != nil {
		return nil, err
	}

	err := r.client.HSet(ctx, r.key(record.Platform, record.Sku),
		fieldMaximum, record.Maximum,
		fieldMaximumForClaim, optionalInt(record.MaximumForClaim),
		fieldMaximumForPurchase, optionalInt(record.MaximumForPurchase),
		fieldIssued, record.Issued,
		fieldIssuedForClaim, record.IssuedForClaim,
		fieldIssuedForPurchase, record.IssuedForPurchase,
		fieldExpires, optionalTime(record.Expires),
		fieldAllocation, string(record.Allocation),
	).Err()
	if err != nil {
		return nil, apperrors.Wrap(err, "写入库存记录失败")
	}

	return r.Get(ctx, record.Platform, record.Sku)
}

// Delete 删除库存记录的全部字段
func (r *stockRepository) Delete(ctx context.Context, platform, sku string) error {
	exists, err := r.Exists(ctx, platform, sku)
	if err != nil {
		return err
	}
	if !exists {
		return stock.ErrStockNotFound.WithMessagef(
			"库存记录不存在. platform: %s, sku: %s", platform, sku)
	}

	if err := r.client.Del(ctx, r.key(platform, sku)).Err(); err != nil {
		return apperrors.Wrap(err, "删除库存记录失败")
	}
	return nil
}

// Issue 发放一个库存单位
// 流程：引擎原子发放 → 重读记录 → 换算对外序号
// 重读不在发放事务内，返回的可用量可能比发放瞬间略新，
// 但发放序号以脚本返回的计数为准，不受影响
func (r *stockRepository) Issue(ctx context.Context, platform, sku string, channel stock.Channel) (*stock.IssuedStock, error) {
	issued, err := r.engine.Issue(ctx, r.key(platform, sku), channel, time.Now())
	if err != nil {
		return nil, err
	}

	entity, err := r.Get(ctx, platform, sku)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		// 发放成功后整条记录被并发删除，极端场景
		return nil, stock.ErrStockNotFound.WithMessagef(
			"库存记录不存在. platform: %s, sku: %s", platform, sku)
	}

	issueNumber := issued
	if entity.Allocation == stock.AllocationRandom {
		issueNumber = r.picker.Issue(entity.Maximum, sku, issued)
	}

	return &stock.IssuedStock{
		AvailableStock: *entity,
		Issue:          issueNumber,
	}, nil
}

// parseRecord 把hash字段解析为领域实体
// 空字符串哨兵解析为nil（未设置）
func parseRecord(platform, sku string, fields map[string]string) (*stock.StockRecord, error) {
	maximum, err := strconv.Atoi(fields[fieldMaximum])
	if err != nil {
		return nil, corruptField(err, "maximum", platform, sku)
	}

	issued, err := parseCount(fields[fieldIssued])
	if err != nil {
		return nil, corruptField(err, "issued", platform, sku)
	}
	issuedForClaim, err := parseCount(fields[fieldIssuedForClaim])
	if err != nil {
		return nil, corruptField(err, "issuedForClaim", platform, sku)
	}
	issuedForPurchase, err := parseCount(fields[fieldIssuedForPurchase])
	if err != nil {
		return nil, corruptField(err, "issuedForPurchase", platform, sku)
	}

	maximumForClaim, err := parseOptionalInt(fields[fieldMaximumForClaim])
	if err != nil {
		return nil, corruptField(err, "maximumForClaim", platform, sku)
	}
	maximumForPurchase, err := parseOptionalInt(fields[fieldMaximumForPurchase])
	if err != nil {
		return nil, corruptField(err, "maximumForPurchase", platform, sku)
	}

	expires, err := parseOptionalTime(fields[fieldExpires])
	if err != nil {
		return nil, corruptField(err, "expires", platform, sku)
	}

	allocation := stock.Allocation(fields[fieldAllocation])
	if allocation == "" {
		// 历史记录缺省按顺序模式处理
		allocation = stock.AllocationSequential
	}

	return &stock.StockRecord{
		Platform:           platform,
		Sku:                sku,
		Maximum:            maximum,
		MaximumForClaim:    maximumForClaim,
		MaximumForPurchase: maximumForPurchase,
		Issued:             issued,
		IssuedForClaim:     issuedForClaim,
		IssuedForPurchase:  issuedForPurchase,
		Expires:            expires,
		Allocation:         allocation,
	}, nil
}

// corruptField 字段损坏错误（GetAll据此跳过单条记录）
func corruptField(err error, field, platform, sku string) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeCorruptRecord,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("库存记录%s字段损坏. platform: %s, sku: %s", field, platform, sku),
		Err:     err,
	}
}

// parseCount 解析计数字段，缺失按0
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// parseOptionalInt 解析可选整数，空字符串哨兵为nil
func parseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseOptionalTime 解析可选时间（unix毫秒），空字符串哨兵为nil
func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	t := time.UnixMilli(ms)
	return &t, nil
}
