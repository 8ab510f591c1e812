package redis

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/stock-service/internal/domain/stock"
	apperrors "github.com/xiebiao/stock-service/pkg/errors"
	"github.com/xiebiao/stock-service/pkg/metrics"
	"github.com/xiebiao/stock-service/pkg/tracing"
)

// Lua脚本嵌入
// go:embed只能引用当前包及子目录的文件，脚本与调用它的代码
// 放在一起也更符合内聚性原则
//
//go:embed available.lua
var availableLua string

//go:embed issue.lua
var issueLua string

//go:embed update.lua
var updateLua string

// 脚本返回的哨兵值
// 引擎内部约定，出了本文件只见领域错误，不见数字
const (
	resultNotFound         = -1 // 记录不存在
	resultOutOfStock       = -2 // 无剩余容量
	resultCapacityExceeded = -2 // update: 渠道上限之和超过总量
	resultClaimBelowIssued = -3 // update: claim上限低于已发放
	resultPurchaseBelow    = -4 // update: purchase上限低于已发放
)

// AllocationStore 库存分配引擎（Redis实现）
//
// 设计说明：
// 1. 三个核心操作（available/issue/update）全部以Lua脚本形式在
//    Redis服务端执行。Redis对脚本的单线程执行就是本系统唯一的
//    串行化点：同一键上的并发issue绝不会交错，容量不变式
//    （issued<=maximum、渠道issued<=渠道上限）在任意并发度下成立
// 2. 脚本失败/超时不会留下半成品状态（脚本要么整体执行要么不执行），
//    调用方可安全重试available；issue重试可能重复发放，本设计
//    不含幂等键，由调用方自行权衡
// 3. SCRIPT LOAD预加载 + EVALSHA调用，避免每次传输脚本体
type AllocationStore struct {
	client *redis.Client

	// Lua脚本SHA1（预加载后填充）
	availableSHA string
	issueSHA     string
	updateSHA    string
}

// NewAllocationStore 创建分配引擎并预加载脚本
func NewAllocationStore(client *redis.Client) (*AllocationStore, error) {
	s := &AllocationStore{client: client}
	if err := s.loadScripts(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// loadScripts 预加载Lua脚本
// EVALSHA只传SHA1，相比EVAL省去每次传输脚本体的开销
func (s *AllocationStore) loadScripts(ctx context.Context) error {
	availableSHA, err := s.client.ScriptLoad(ctx, availableLua).Result()
	if err != nil {
		return apperrors.Wrap(err, "加载available脚本失败")
	}
	s.availableSHA = availableSHA

	issueSHA, err := s.client.ScriptLoad(ctx, issueLua).Result()
	if err != nil {
		return apperrors.Wrap(err, "加载issue脚本失败")
	}
	s.issueSHA = issueSHA

	updateSHA, err := s.client.ScriptLoad(ctx, updateLua).Result()
	if err != nil {
		return apperrors.Wrap(err, "加载update脚本失败")
	}
	s.updateSHA = updateSHA

	return nil
}

// Available 读取指定渠道当前可用量（只读，快照一致）
// 记录不存在返回ErrStockNotFound；已过期或容量耗尽返回0
func (s *AllocationStore) Available(ctx context.Context, key string, channel stock.Channel, now time.Time) (int, error) {
	result, err := s.eval(ctx, "available", s.availableSHA, key, string(channel), now.UnixMilli())
	if err != nil {
		return 0, err
	}

	if result == resultNotFound {
		return 0, stock.ErrStockNotFound
	}
	if result < 0 {
		// 脚本不会返回其他负值，遇到说明脚本与Go侧不同步，直接上抛
		return 0, apperrors.Wrapf(nil, "available脚本返回未知哨兵值: %d", result)
	}

	return int(result), nil
}

// Issue 通过指定渠道原子发放一个单位，返回发放后的issued计数
// 容量检查与递增在同一脚本内完成，两个并发发放者不可能都越过上限
func (s *AllocationStore) Issue(ctx context.Context, key string, channel stock.Channel, now time.Time) (int, error) {
	result, err := s.eval(ctx, "issue", s.issueSHA, key, string(channel), now.UnixMilli())
	if err != nil {
		return 0, err
	}

	switch {
	case result == resultNotFound:
		return 0, stock.ErrStockNotFound
	case result == resultOutOfStock:
		return 0, stock.ErrOutOfStock
	case result <= 0:
		return 0, apperrors.Wrapf(nil, "issue脚本返回未知哨兵值: %d", result)
	}

	return int(result), nil
}

// Update 原子更新渠道上限与过期时间，不动发放计数
// 与同一键上的并发issue串行执行，不会把上限降到已发放数之下
func (s *AllocationStore) Update(ctx context.Context, key string, maximumForClaim, maximumForPurchase *int, expires *time.Time) error {
	result, err := s.eval(ctx, "update", s.updateSHA, key,
		optionalInt(maximumForClaim), optionalInt(maximumForPurchase), optionalTime(expires))
	if err != nil {
		return err
	}

	switch result {
	case 0:
		return nil
	case resultNotFound:
		return stock.ErrStockNotFound
	case resultCapacityExceeded:
		return stock.ErrCapacityExceeded
	case resultClaimBelowIssued:
		return stock.ErrClaimCapBelowIssued
	case resultPurchaseBelow:
		return stock.ErrPurchaseCapBelowIssued
	default:
		return apperrors.Wrapf(nil, "update脚本返回未知哨兵值: %d", result)
	}
}

// eval 执行已预加载的脚本并统计耗时
func (s *AllocationStore) eval(ctx context.Context, script, sha, key string, args ...interface{}) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "persistence/redis", "EvalScript")
	defer span.End()
	span.SetAttributes(
		attribute.String("stock.script", script),
		attribute.String("stock.key", key),
	)

	start := time.Now()

	result, err := s.client.EvalSha(ctx, sha, []string{key}, args...).Result()

	if metrics.EngineDuration != nil {
		metrics.EngineDuration.WithLabelValues(script).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		return 0, &apperrors.AppError{
			Code:    apperrors.ErrCodeRedisError,
			Status:  http.StatusInternalServerError,
			Message: fmt.Sprintf("执行%s脚本失败", script),
			Err:     err,
		}
	}

	code, ok := result.(int64)
	if !ok {
		return 0, apperrors.Wrapf(nil, "%s脚本返回值类型错误: %T", script, result)
	}

	return code, nil
}

// optionalInt 可选整数的落库表示：nil → 空字符串哨兵
func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// optionalTime 可选时间的落库表示：nil → 空字符串哨兵，否则unix毫秒
func optionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}
