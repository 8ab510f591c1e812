package stock

import (
	"net/http"

	apperrors "github.com/xiebiao/stock-service/pkg/errors"
)

// 库存领域错误定义
//
// 错误语义（引擎/仓储按码1:1翻译，不做字符串匹配）：
//   - StockNotFound: 操作的(platform, sku)没有库存记录
//   - OutOfStock: 发放时无剩余容量（总池或渠道池耗尽，或记录已过期）
//   - ImmutableFieldChanged: save试图修改已有记录的maximum或allocation
//   - CapacityExceeded: 渠道上限之和超过总量
//   - ClaimCapBelowIssued / PurchaseCapBelowIssued: 渠道上限调低到已发放数之下
//   - InvalidProperties: set载荷内部不一致（发放数超总量等）
//
// OutOfStock返回403而非404/409：与上游约定保持一致，售罄对调用方是
// 禁止继续发放的终态，不是可重试冲突
var (
	ErrStockNotFound = apperrors.New(
		apperrors.ErrCodeStockNotFound, http.StatusNotFound, "库存记录不存在")

	ErrOutOfStock = apperrors.New(
		apperrors.ErrCodeOutOfStock, http.StatusForbidden, "库存已售罄")

	ErrImmutableFieldChanged = apperrors.New(
		apperrors.ErrCodeImmutableFieldChanged, http.StatusBadRequest, "不可变字段禁止修改")

	ErrCapacityExceeded = apperrors.New(
		apperrors.ErrCodeCapacityExceeded, http.StatusBadRequest, "渠道上限之和超过总量")

	ErrClaimCapBelowIssued = apperrors.New(
		apperrors.ErrCodeClaimCapBelowIssued, http.StatusBadRequest, "claim上限低于该渠道已发放数")

	ErrPurchaseCapBelowIssued = apperrors.New(
		apperrors.ErrCodePurchaseCapBelowIssued, http.StatusBadRequest, "purchase上限低于该渠道已发放数")

	ErrInvalidProperties = apperrors.New(
		apperrors.ErrCodeInvalidProperties, http.StatusBadRequest, "库存属性内部不一致")

	// ErrNotAvailableToRetailer 零售端禁止调用内部专用接口
	ErrNotAvailableToRetailer = apperrors.New(
		apperrors.ErrCodeForbidden, http.StatusForbidden, "该接口不对零售端开放")

	// 参数类错误
	ErrInvalidChannel    = apperrors.New(apperrors.ErrCodeInvalidParams, http.StatusBadRequest, "无效的发放渠道")
	ErrInvalidAllocation = apperrors.New(apperrors.ErrCodeInvalidParams, http.StatusBadRequest, "无效的分配模式")
)

// IsNotFound 判断是否为"库存记录不存在"错误
// 预定义错误经WithMessagef派生后指针不同，必须按码匹配
func IsNotFound(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeStockNotFound)
}

// IsOutOfStock 判断是否为"库存已售罄"错误
func IsOutOfStock(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeOutOfStock)
}
