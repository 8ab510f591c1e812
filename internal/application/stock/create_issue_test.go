package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/stock-service/internal/domain/stock"
	apperrors "github.com/xiebiao/stock-service/pkg/errors"
)

// fakeRepository 内存版库存仓储
// 只实现用例测试需要的语义，并发控制不在本层测试范围
type fakeRepository struct {
	records map[string]*stock.StockRecord
	picker  *stock.IssuePicker
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		records: make(map[string]*stock.StockRecord),
		picker:  stock.NewIssuePicker(),
	}
}

func (f *fakeRepository) key(platform, sku string) string {
	return platform + ":" + sku
}

func (f *fakeRepository) put(r *stock.StockRecord) {
	f.records[f.key(r.Platform, r.Sku)] = r
}

func (f *fakeRepository) Exists(_ context.Context, platform, sku string) (bool, error) {
	_, ok := f.records[f.key(platform, sku)]
	return ok, nil
}

func (f *fakeRepository) Get(_ context.Context, platform, sku string) (*stock.AvailableStock, error) {
	r, ok := f.records[f.key(platform, sku)]
	if !ok {
		return nil, nil
	}
	return f.view(r), nil
}

func (f *fakeRepository) GetAll(_ context.Context, platform string) ([]*stock.AvailableStock, error) {
	var out []*stock.AvailableStock
	for _, r := range f.records {
		if r.Platform == platform {
			out = append(out, f.view(r))
		}
	}
	return out, nil
}

func (f *fakeRepository) Save(ctx context.Context, changes *stock.SaveStock) (*stock.AvailableStock, error) {
	existing, ok := f.records[f.key(changes.Platform, changes.Sku)]
	if ok {
		if err := changes.CheckImmutable(existing); err != nil {
			return nil, err
		}
		existing.MaximumForClaim = changes.MaximumForClaim
		existing.MaximumForPurchase = changes.MaximumForPurchase
		existing.Expires = changes.Expires
		return f.view(existing), nil
	}

	record := &stock.StockRecord{
		Platform:           changes.Platform,
		Sku:                changes.Sku,
		Maximum:            changes.Maximum,
		MaximumForClaim:    changes.MaximumForClaim,
		MaximumForPurchase: changes.MaximumForPurchase,
		Expires:            changes.Expires,
		Allocation:         changes.Allocation,
	}
	if err := record.ValidateForSet(); err != nil {
		return nil, err
	}
	f.put(record)
	return f.view(record), nil
}

func (f *fakeRepository) Set(_ context.Context, record *stock.StockRecord) (*stock.AvailableStock, error) {
	if err := record.ValidateForSet(); err != nil {
		return nil, err
	}
	f.put(record)
	return f.view(record), nil
}

func (f *fakeRepository) Delete(_ context.Context, platform, sku string) error {
	if _, ok := f.records[f.key(platform, sku)]; !ok {
		return stock.ErrStockNotFound
	}
	delete(f.records, f.key(platform, sku))
	return nil
}

func (f *fakeRepository) Issue(_ context.Context, platform, sku string, channel stock.Channel) (*stock.IssuedStock, error) {
	r, ok := f.records[f.key(platform, sku)]
	if !ok {
		return nil, stock.ErrStockNotFound
	}
	if r.AvailableFor(channel, time.Now()) <= 0 {
		return nil, stock.ErrOutOfStock
	}

	r.Issued++
	if channel == stock.ChannelClaim {
		r.IssuedForClaim++
	} else {
		r.IssuedForPurchase++
	}

	issue := r.Issued
	if r.Allocation == stock.AllocationRandom {
		issue = f.picker.Issue(r.Maximum, sku, r.Issued)
	}

	return &stock.IssuedStock{
		AvailableStock: *f.view(r),
		Issue:          issue,
	}, nil
}

func (f *fakeRepository) view(r *stock.StockRecord) *stock.AvailableStock {
	now := time.Now()
	return &stock.AvailableStock{
		StockRecord:          *r,
		AvailableForClaim:    r.AvailableFor(stock.ChannelClaim, now),
		AvailableForPurchase: r.AvailableFor(stock.ChannelPurchase, now),
	}
}

// fakeLogRepository 内存版发放流水仓储
type fakeLogRepository struct {
	entries []*stock.IssueLog
}

func (f *fakeLogRepository) Create(_ context.Context, entry *stock.IssueLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogRepository) ListBySku(_ context.Context, platform, sku string, page, pageSize int) ([]*stock.IssueLog, int64, error) {
	var out []*stock.IssueLog
	for _, e := range f.entries {
		if e.Platform == platform && e.Sku == sku {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

// fakePublisher 记录发布过的事件
type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	f.published = append(f.published, routingKey)
	return nil
}

func intPtr(v int) *int {
	return &v
}

// TestCreateIssue 测试库存发放用例
func TestCreateIssue(t *testing.T) {
	ctx := context.Background()

	newUseCase := func(repo *fakeRepository) (*CreateIssueUseCase, *fakeLogRepository, *fakePublisher) {
		logs := &fakeLogRepository{}
		events := &fakePublisher{}
		return NewCreateIssueUseCase(repo, logs, events), logs, events
	}

	t.Run("顺序模式发放", func(t *testing.T) {
		repo := newFakeRepository()
		repo.put(&stock.StockRecord{
			Platform:   "shop-cn",
			Sku:        "SKU-001",
			Maximum:    10,
			Allocation: stock.AllocationSequential,
		})
		uc, logs, events := newUseCase(repo)

		issued, err := uc.Execute(ctx, "shop-cn", "SKU-001", "purchase")
		require.NoError(t, err)

		assert.Equal(t, 1, issued.Issue, "顺序模式第一次发放序号为1")
		assert.Equal(t, 1, issued.Issued)
		assert.Equal(t, 1, issued.IssuedForPurchase)
		assert.Equal(t, 0, issued.IssuedForClaim)
		assert.Equal(t, 9, issued.AvailableForPurchase)

		// 审计流水与事件
		require.Len(t, logs.entries, 1)
		assert.Equal(t, "SKU-001", logs.entries[0].Sku)
		assert.Equal(t, 1, logs.entries[0].IssueNumber)
		assert.Equal(t, []string{RoutingKeyStockIssued}, events.published)
	})

	t.Run("随机模式发放序号在范围内", func(t *testing.T) {
		repo := newFakeRepository()
		repo.put(&stock.StockRecord{
			Platform:   "shop-cn",
			Sku:        "SKU-RANDOM",
			Maximum:    100,
			Allocation: stock.AllocationRandom,
		})
		uc, _, _ := newUseCase(repo)

		seen := make(map[int]bool)
		for i := 0; i < 100; i++ {
			issued, err := uc.Execute(ctx, "shop-cn", "SKU-RANDOM", "claim")
			require.NoError(t, err)
			require.GreaterOrEqual(t, issued.Issue, 1)
			require.LessOrEqual(t, issued.Issue, 100)
			require.False(t, seen[issued.Issue], "序号%d重复", issued.Issue)
			seen[issued.Issue] = true
		}
	})

	t.Run("记录不存在", func(t *testing.T) {
		repo := newFakeRepository()
		uc, logs, events := newUseCase(repo)

		_, err := uc.Execute(ctx, "shop-cn", "SKU-MISSING", "claim")
		assert.True(t, stock.IsNotFound(err))
		assert.Empty(t, logs.entries, "失败的发放不写流水")
		assert.Empty(t, events.published, "失败的发放不发事件")
	})

	t.Run("售罄", func(t *testing.T) {
		repo := newFakeRepository()
		repo.put(&stock.StockRecord{
			Platform:   "shop-cn",
			Sku:        "SKU-EMPTY",
			Maximum:    1,
			Issued:     1,
			Allocation: stock.AllocationSequential,
		})
		uc, _, _ := newUseCase(repo)

		_, err := uc.Execute(ctx, "shop-cn", "SKU-EMPTY", "purchase")
		assert.True(t, stock.IsOutOfStock(err))
	})

	t.Run("渠道池耗尽", func(t *testing.T) {
		repo := newFakeRepository()
		repo.put(&stock.StockRecord{
			Platform:          "shop-cn",
			Sku:               "SKU-CH",
			Maximum:           100,
			MaximumForClaim:   intPtr(2),
			IssuedForClaim:    2,
			Issued:            2,
			Allocation:        stock.AllocationSequential,
			IssuedForPurchase: 0,
		})
		uc, _, _ := newUseCase(repo)

		_, err := uc.Execute(ctx, "shop-cn", "SKU-CH", "claim")
		assert.True(t, stock.IsOutOfStock(err), "claim池耗尽")

		issued, err := uc.Execute(ctx, "shop-cn", "SKU-CH", "purchase")
		require.NoError(t, err, "purchase池不受影响")
		assert.Equal(t, 3, issued.Issued)
	})

	t.Run("非法渠道", func(t *testing.T) {
		repo := newFakeRepository()
		uc, _, _ := newUseCase(repo)

		_, err := uc.Execute(ctx, "shop-cn", "SKU-001", "gift")
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidParams))
	})

	t.Run("流水与事件缺席时发放不受影响", func(t *testing.T) {
		repo := newFakeRepository()
		repo.put(&stock.StockRecord{
			Platform:   "shop-cn",
			Sku:        "SKU-NIL",
			Maximum:    5,
			Allocation: stock.AllocationSequential,
		})
		uc := NewCreateIssueUseCase(repo, nil, nil)

		issued, err := uc.Execute(ctx, "shop-cn", "SKU-NIL", "claim")
		require.NoError(t, err)
		assert.Equal(t, 1, issued.Issue)
	})
}

// TestSaveStock 测试upsert用例
func TestSaveStock(t *testing.T) {
	ctx := context.Background()

	t.Run("创建新记录", func(t *testing.T) {
		repo := newFakeRepository()
		events := &fakePublisher{}
		uc := NewSaveStockUseCase(repo, events)

		entity, err := uc.Execute(ctx, SaveStockRequest{
			Platform:        "shop-cn",
			Sku:             "SKU-NEW",
			Maximum:         100,
			Allocation:      "SEQUENTIAL",
			MaximumForClaim: intPtr(20),
		})
		require.NoError(t, err)

		assert.Equal(t, 100, entity.Maximum)
		assert.Equal(t, 0, entity.Issued, "新记录计数从0开始")
		assert.Equal(t, 20, entity.AvailableForClaim)
		assert.Equal(t, 100, entity.AvailableForPurchase)
		assert.Equal(t, []string{RoutingKeyStockSaved}, events.published)
	})

	t.Run("修改不可变字段被拒绝", func(t *testing.T) {
		repo := newFakeRepository()
		repo.put(&stock.StockRecord{
			Platform:   "shop-cn",
			Sku:        "SKU-LOCKED",
			Maximum:    100,
			Allocation: stock.AllocationSequential,
		})
		uc := NewSaveStockUseCase(repo, nil)

		_, err := uc.Execute(ctx, SaveStockRequest{
			Platform:   "shop-cn",
			Sku:        "SKU-LOCKED",
			Maximum:    200,
			Allocation: "SEQUENTIAL",
		})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeImmutableFieldChanged))
	})

	t.Run("非法分配模式", func(t *testing.T) {
		repo := newFakeRepository()
		uc := NewSaveStockUseCase(repo, nil)

		_, err := uc.Execute(ctx, SaveStockRequest{
			Platform:   "shop-cn",
			Sku:        "SKU-BAD",
			Maximum:    10,
			Allocation: "sequential",
		})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidParams))
	})
}

// TestSetStock 测试覆盖重置用例
func TestSetStock(t *testing.T) {
	ctx := context.Background()

	t.Run("覆盖发放计数", func(t *testing.T) {
		repo := newFakeRepository()
		events := &fakePublisher{}
		uc := NewSetStockUseCase(repo, events)

		entity, err := uc.Execute(ctx, SetStockRequest{
			Platform:          "shop-cn",
			Sku:               "SKU-RESET",
			Maximum:           100,
			Allocation:        "SEQUENTIAL",
			Issued:            40,
			IssuedForClaim:    10,
			IssuedForPurchase: 30,
		})
		require.NoError(t, err)

		assert.Equal(t, 40, entity.Issued)
		assert.Equal(t, 60, entity.AvailableForPurchase)
		assert.Equal(t, []string{RoutingKeyStockReset}, events.published)
	})

	t.Run("载荷内部不一致被拒绝", func(t *testing.T) {
		repo := newFakeRepository()
		uc := NewSetStockUseCase(repo, nil)

		_, err := uc.Execute(ctx, SetStockRequest{
			Platform:   "shop-cn",
			Sku:        "SKU-BAD",
			Maximum:    100,
			Allocation: "SEQUENTIAL",
			Issued:     101,
		})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidProperties))
	})
}

// TestDeleteStock 测试删除用例
func TestDeleteStock(t *testing.T) {
	ctx := context.Background()

	t.Run("删除存在的记录", func(t *testing.T) {
		repo := newFakeRepository()
		repo.put(&stock.StockRecord{
			Platform: "shop-cn", Sku: "SKU-DEL", Maximum: 1,
			Allocation: stock.AllocationSequential,
		})
		uc := NewDeleteStockUseCase(repo)

		require.NoError(t, uc.Execute(ctx, "shop-cn", "SKU-DEL"))

		exists, _ := repo.Exists(ctx, "shop-cn", "SKU-DEL")
		assert.False(t, exists)
	})

	t.Run("删除不存在的记录", func(t *testing.T) {
		uc := NewDeleteStockUseCase(newFakeRepository())
		err := uc.Execute(ctx, "shop-cn", "SKU-MISSING")
		assert.True(t, stock.IsNotFound(err))
	})

	t.Run("清空平台", func(t *testing.T) {
		repo := newFakeRepository()
		for _, sku := range []string{"A", "B", "C"} {
			repo.put(&stock.StockRecord{
				Platform: "shop-cn", Sku: sku, Maximum: 1,
				Allocation: stock.AllocationSequential,
			})
		}
		repo.put(&stock.StockRecord{
			Platform: "shop-jp", Sku: "A", Maximum: 1,
			Allocation: stock.AllocationSequential,
		})
		uc := NewDeleteStockUseCase(repo)

		deleted, err := uc.ExecuteAll(ctx, "shop-cn")
		require.NoError(t, err)
		assert.Equal(t, 3, deleted)

		remaining, _ := repo.GetAll(ctx, "shop-jp")
		assert.Len(t, remaining, 1, "其他平台不受影响")
	})
}

// TestGetStock 测试查询用例
func TestGetStock(t *testing.T) {
	ctx := context.Background()

	t.Run("记录不存在返回NotFound", func(t *testing.T) {
		uc := NewGetStockUseCase(newFakeRepository())
		_, err := uc.Execute(ctx, "shop-cn", "SKU-MISSING")
		assert.True(t, stock.IsNotFound(err))
	})

	t.Run("返回派生可用量", func(t *testing.T) {
		repo := newFakeRepository()
		repo.put(&stock.StockRecord{
			Platform:           "shop-cn",
			Sku:                "SKU-GET",
			Maximum:            100,
			MaximumForClaim:    intPtr(20),
			MaximumForPurchase: intPtr(80),
			Issued:             10,
			IssuedForClaim:     5,
			IssuedForPurchase:  5,
			Allocation:         stock.AllocationSequential,
		})
		uc := NewGetStockUseCase(repo)

		entity, err := uc.Execute(ctx, "shop-cn", "SKU-GET")
		require.NoError(t, err)
		assert.Equal(t, 15, entity.AvailableForClaim)
		assert.Equal(t, 75, entity.AvailableForPurchase)
	})
}
