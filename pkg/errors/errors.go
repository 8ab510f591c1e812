package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（稳定的业务错误码，不随HTTP层变化）
// 2. Status是HTTP等价状态码，由接口层映射响应时使用
// 3. Message是用户友好的提示信息
// 4. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Status  int    `json:"-"`       // HTTP等价状态码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的AppError
func New(code, status int, message string) *AppError {
	return &AppError{
		Code:    code,
		Status:  status,
		Message: message,
	}
}

// WithMessagef 基于已有错误生成带上下文消息的副本
// 用途：领域层预定义错误 + 请求级上下文（platform、sku等）
// 注意：返回副本，预定义错误本身不会被修改
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    e.Code,
		Status:  e.Status,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap 包装系统错误（如Redis错误、数据库错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Status:  http.StatusInternalServerError,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（Redis异常、数据库异常）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeCorruptRecord = 50003 // 持久化记录字段损坏

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError          = 40000 // 业务错误(通用)
	ErrCodeOutOfStock             = 40001 // 无剩余库存可发放
	ErrCodeImmutableFieldChanged  = 40002 // 修改了创建后不可变的字段
	ErrCodeCapacityExceeded       = 40003 // 渠道上限之和超过总量
	ErrCodeClaimCapBelowIssued    = 40004 // claim上限低于已发放数
	ErrCodePurchaseCapBelowIssued = 40005 // purchase上限低于已发放数
	ErrCodeInvalidProperties      = 40006 // 覆盖写入的字段内部不一致

	// 权限错误（40100-40199）
	ErrCodeForbidden = 40104 // 无权限访问

	// 资源错误（40400-40499）
	ErrCodeNotFound      = 40400 // 资源不存在(通用)
	ErrCodeStockNotFound = 40401 // 库存记录不存在

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, http.StatusInternalServerError, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, http.StatusInternalServerError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, http.StatusInternalServerError, "缓存服务错误")

	// 权限
	ErrForbidden = New(ErrCodeForbidden, http.StatusForbidden, "无权限访问")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, http.StatusBadRequest, "参数错误")
	ErrBindError     = New(ErrCodeBindError, http.StatusBadRequest, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsCode 判断错误是否携带指定业务错误码
// 用途：调用方按码匹配领域错误，避免检查错误消息字符串
func IsCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
