package integration

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 库存模块集成测试
//
// 覆盖的关键点：
// 1. 库存记录完整生命周期（save → get → issue → delete）
// 2. 不可变字段保护与渠道上限语义
// 3. 并发发放不超卖（Redis脚本串行化）
// 4. 零售端缩减投影与变更拒绝

const testPlatform = "integration-test"

func stockURL(sku string) string {
	return fmt.Sprintf("%s/stock/%s/%s", BaseURL, testPlatform, sku)
}

// TestStockLifecycle 测试库存记录完整生命周期
func TestStockLifecycle(t *testing.T) {
	RequireServer(t)
	sku := UniqueSku("SKU-LIFE")

	t.Run("创建库存记录", func(t *testing.T) {
		resp := PutJSON(t, stockURL(sku), map[string]interface{}{
			"maximum":           100,
			"allocation":        "SEQUENTIAL",
			"maximum_for_claim": 20,
		})
		require.Equal(t, 0, resp.Code, "创建应该成功: %s", resp.Message)

		var data StockData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 100, data.Maximum)
		assert.Equal(t, 0, data.Issued)
		require.NotNil(t, data.MaximumForClaim)
		assert.Equal(t, 20, *data.MaximumForClaim)
		assert.Nil(t, data.MaximumForPurchase, "未设置的上限应为null")
		assert.Equal(t, 20, data.AvailableForClaim)
		assert.Equal(t, 100, data.AvailableForPurchase)

		t.Logf("✓ 库存创建成功: %s", sku)
	})

	t.Run("查询库存记录", func(t *testing.T) {
		resp := GetJSON(t, stockURL(sku))
		require.Equal(t, 0, resp.Code)

		var data StockData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, sku, data.Sku)
		assert.Equal(t, testPlatform, data.Platform)
	})

	t.Run("修改不可变字段被拒绝", func(t *testing.T) {
		resp := PutJSON(t, stockURL(sku), map[string]interface{}{
			"maximum":    200,
			"allocation": "SEQUENTIAL",
		})
		assert.Equal(t, 40002, resp.Code, "应返回不可变字段错误码")
	})

	t.Run("发放一个单位", func(t *testing.T) {
		resp := PostJSON(t, stockURL(sku)+"/issue/purchase", nil)
		require.Equal(t, 0, resp.Code, "发放应该成功: %s", resp.Message)

		var data IssueData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 1, data.Issue, "顺序模式第一次发放序号为1")
		assert.Equal(t, 1, data.Issued)
		assert.Equal(t, 99, data.AvailableForPurchase)

		t.Logf("✓ 发放成功，序号: %d", data.Issue)
	})

	t.Run("删除库存记录", func(t *testing.T) {
		resp := DeleteJSON(t, stockURL(sku))
		require.Equal(t, 0, resp.Code)

		resp = GetJSON(t, stockURL(sku))
		assert.Equal(t, 40401, resp.Code, "删除后查询应返回不存在")
	})
}

// TestStockIssueExhaustion 测试容量耗尽语义
func TestStockIssueExhaustion(t *testing.T) {
	RequireServer(t)
	sku := UniqueSku("SKU-EXHAUST")

	resp := PutJSON(t, stockURL(sku), map[string]interface{}{
		"maximum":           5,
		"allocation":        "SEQUENTIAL",
		"maximum_for_claim": 2,
	})
	require.Equal(t, 0, resp.Code)

	t.Run("claim渠道上限耗尽", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			resp := PostJSON(t, stockURL(sku)+"/issue/claim", nil)
			require.Equal(t, 0, resp.Code)
		}

		resp := PostJSON(t, stockURL(sku)+"/issue/claim", nil)
		assert.Equal(t, 40001, resp.Code, "claim渠道耗尽应返回售罄")
	})

	t.Run("purchase渠道继续可用", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			resp := PostJSON(t, stockURL(sku)+"/issue/purchase", nil)
			require.Equal(t, 0, resp.Code, "总池还有余量")
		}

		resp := PostJSON(t, stockURL(sku)+"/issue/purchase", nil)
		assert.Equal(t, 40001, resp.Code, "总池耗尽应返回售罄")
	})

	t.Run("非法渠道", func(t *testing.T) {
		resp := PostJSON(t, stockURL(sku)+"/issue/gift", nil)
		assert.Equal(t, 40900, resp.Code)
	})

	DeleteJSON(t, stockURL(sku))
}

// TestStockConcurrentIssue 测试并发发放不超卖
func TestStockConcurrentIssue(t *testing.T) {
	RequireServer(t)
	sku := UniqueSku("SKU-RACE")
	maximum := 20

	resp := PutJSON(t, stockURL(sku), map[string]interface{}{
		"maximum":    maximum,
		"allocation": "RANDOM",
	})
	require.Equal(t, 0, resp.Code)

	var mu sync.Mutex
	issues := make(map[int]bool)
	success := 0

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5; i++ { // 共50次尝试，只有20次能成功
				resp := PostJSON(t, stockURL(sku)+"/issue/purchase", nil)

				mu.Lock()
				if resp.Code == 0 {
					var data IssueData
					if err := json.Unmarshal(resp.Data, &data); err == nil {
						assert.False(t, issues[data.Issue], "序号%d重复发放", data.Issue)
						issues[data.Issue] = true
						success++
					}
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, maximum, success, "成功发放数必须恰好等于maximum")
	assert.Len(t, issues, maximum, "序号全部唯一")

	t.Logf("✓ 并发发放50次，成功%d次，无超卖无重号", success)

	DeleteJSON(t, stockURL(sku))
}

// TestStockSetOverride 测试覆盖重置
func TestStockSetOverride(t *testing.T) {
	RequireServer(t)
	sku := UniqueSku("SKU-SET")

	t.Run("覆盖写入发放计数", func(t *testing.T) {
		resp := PutJSON(t, stockURL(sku)+"/all", map[string]interface{}{
			"maximum":             100,
			"allocation":          "SEQUENTIAL",
			"issued":              40,
			"issued_for_claim":    10,
			"issued_for_purchase": 30,
		})
		require.Equal(t, 0, resp.Code, "覆盖重置应该成功: %s", resp.Message)

		var data StockData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 40, data.Issued)
		assert.Equal(t, 60, data.AvailableForPurchase)
	})

	t.Run("不一致载荷被拒绝", func(t *testing.T) {
		resp := PutJSON(t, stockURL(sku)+"/all", map[string]interface{}{
			"maximum":    100,
			"allocation": "SEQUENTIAL",
			"issued":     101,
		})
		assert.Equal(t, 40006, resp.Code)
	})

	DeleteJSON(t, stockURL(sku))
}

// TestRetailerProjection 测试零售端视图与权限
func TestRetailerProjection(t *testing.T) {
	RequireServer(t)
	sku := UniqueSku("SKU-RETAIL")
	retailerURL := fmt.Sprintf("%s/retailer/stock/%s/%s", BaseURL, testPlatform, sku)

	resp := PutJSON(t, stockURL(sku), map[string]interface{}{
		"maximum":              100,
		"allocation":           "SEQUENTIAL",
		"maximum_for_purchase": 80,
	})
	require.Equal(t, 0, resp.Code)

	t.Run("零售端查询返回缩减投影", func(t *testing.T) {
		resp := GetJSON(t, retailerURL)
		require.Equal(t, 0, resp.Code)

		var data RetailerStockData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, sku, data.Sku)
		assert.Equal(t, 80, data.Available, "零售端available取purchase渠道可用量")
		assert.Equal(t, data.Available, data.Stock, "stock是available的兼容别名")

		// 确认内部字段没有泄露
		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Data, &raw))
		assert.NotContains(t, raw, "issued", "零售端不应看到发放计数")
		assert.NotContains(t, raw, "maximum_for_claim", "零售端不应看到渠道拆分")
	})

	t.Run("零售端变更被拒绝", func(t *testing.T) {
		resp := PutJSON(t, retailerURL, map[string]interface{}{
			"maximum":    100,
			"allocation": "SEQUENTIAL",
		})
		assert.Equal(t, 40104, resp.Code, "零售端save应被拒绝")

		resp = PostJSON(t, retailerURL+"/issue/purchase", nil)
		assert.Equal(t, 40104, resp.Code, "零售端issue应被拒绝")

		resp = DeleteJSON(t, retailerURL)
		assert.Equal(t, 40104, resp.Code, "零售端delete应被拒绝")
	})

	DeleteJSON(t, stockURL(sku))
}
