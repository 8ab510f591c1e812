package stock

import (
	"context"

	"github.com/xiebiao/stock-service/internal/domain/stock"
)

// ListIssueLogsUseCase 发放流水查询用例
// 给管理端对账用：MySQL流水与Redis计数核对
type ListIssueLogsUseCase struct {
	logs stock.LogRepository
}

// NewListIssueLogsUseCase 创建流水查询用例
func NewListIssueLogsUseCase(logs stock.LogRepository) *ListIssueLogsUseCase {
	return &ListIssueLogsUseCase{logs: logs}
}

// ListIssueLogsRequest 流水查询请求DTO
type ListIssueLogsRequest struct {
	Platform string
	Sku      string
	Page     int
	PageSize int
}

// ListIssueLogsResponse 流水查询响应DTO
type ListIssueLogsResponse struct {
	List       []*stock.IssueLog `json:"list"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// Execute 执行流水查询
func (uc *ListIssueLogsUseCase) Execute(ctx context.Context, req ListIssueLogsRequest) (*ListIssueLogsResponse, error) {
	// 参数默认值与范围限制
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	entries, total, err := uc.logs.ListBySku(ctx, req.Platform, req.Sku, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListIssueLogsResponse{
		List:       entries,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}
