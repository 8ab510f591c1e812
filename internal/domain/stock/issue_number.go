package stock

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// IssuePicker 随机发放序号生成器
//
// 职责：allocation=RANDOM时，把原始发放计数(1,2,3...)映射为
// {1..maximum}的一个伪随机排列，且映射必须确定、可重现。
//
// 为什么这样设计？
//  1. 对外序号要看起来随机（不暴露发放顺序和剩余量信号）
//  2. 又不能持久化整个排列——种子完全由SKU字符串导出，
//     同一SKU在任何进程、任何副本上洗出的排列完全一致，
//     多副本之间无需任何协调
//
// 缓存说明：排列按(sku, maximum)缓存在进程内存，生命周期=进程生命周期。
// 缓存纯粹是性能优化，不承载正确性（同种子重算结果相同）。
// maximum创建后不可变，所以同一SKU正常不会出现两个缓存键；
// 按(sku, maximum)组合做键是对缓存污染的防御。
type IssuePicker struct {
	mu       sync.RWMutex
	shuffled map[string][]int
}

// NewIssuePicker 创建序号生成器
func NewIssuePicker() *IssuePicker {
	return &IssuePicker{
		shuffled: make(map[string][]int),
	}
}

// Issue 返回第issued次发放（从1开始计）的对外序号
//
// 契约：issued在[1, maximum]内时，返回值也在[1, maximum]内，
// 且issued遍历[1, maximum]时返回值构成双射（每个序号恰好出现一次）
func (p *IssuePicker) Issue(maximum int, sku string, issued int) int {
	key := fmt.Sprintf("%s:%d", sku, maximum)

	p.mu.RLock()
	issues, ok := p.shuffled[key]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		// 双重检查：拿写锁期间可能已有其他goroutine完成洗牌
		if issues, ok = p.shuffled[key]; !ok {
			issues = shuffle(maximum, sku)
			p.shuffled[key] = issues
		}
		p.mu.Unlock()
	}

	return issues[issued-1]
}

// shuffle 生成{1..maximum}的确定性洗牌
// Fisher-Yates，随机源种子由SKU的SHA-256前8字节导出
func shuffle(maximum int, sku string) []int {
	issues := make([]int, maximum)
	for i := range issues {
		issues[i] = i + 1
	}

	random := rand.New(rand.NewSource(seedFor(sku)))

	for i := len(issues) - 1; i > 0; i-- {
		j := random.Intn(i + 1)
		issues[i], issues[j] = issues[j], issues[i]
	}

	return issues
}

// seedFor 从SKU字符串导出64位种子
// 哈希取前8字节，保证不同长度/内容的SKU分布均匀
func seedFor(sku string) int64 {
	sum := sha256.Sum256([]byte(sku))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
