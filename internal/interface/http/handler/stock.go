package handler

import (
	"github.com/gin-gonic/gin"

	appstock "github.com/xiebiao/stock-service/internal/application/stock"
	"github.com/xiebiao/stock-service/internal/domain/stock"
	"github.com/xiebiao/stock-service/internal/interface/http/dto"
	"github.com/xiebiao/stock-service/internal/interface/http/middleware"
	"github.com/xiebiao/stock-service/pkg/response"
)

// StockHandler 库存HTTP处理器
// 设计说明:
// 1. handler只做三件事：参数绑定、调用用例、映射响应DTO
// 2. 同一套路由同时挂在内部前缀和零售端前缀下：
//    零售端查询返回缩减投影，零售端变更一律拒绝
type StockHandler struct {
	getStockUseCase      *appstock.GetStockUseCase
	listStockUseCase     *appstock.ListStockUseCase
	saveStockUseCase     *appstock.SaveStockUseCase
	setStockUseCase      *appstock.SetStockUseCase
	deleteStockUseCase   *appstock.DeleteStockUseCase
	createIssueUseCase   *appstock.CreateIssueUseCase
	listIssueLogsUseCase *appstock.ListIssueLogsUseCase
}

// NewStockHandler 创建库存处理器
func NewStockHandler(
	getStockUseCase *appstock.GetStockUseCase,
	listStockUseCase *appstock.ListStockUseCase,
	saveStockUseCase *appstock.SaveStockUseCase,
	setStockUseCase *appstock.SetStockUseCase,
	deleteStockUseCase *appstock.DeleteStockUseCase,
	createIssueUseCase *appstock.CreateIssueUseCase,
	listIssueLogsUseCase *appstock.ListIssueLogsUseCase,
) *StockHandler {
	return &StockHandler{
		getStockUseCase:      getStockUseCase,
		listStockUseCase:     listStockUseCase,
		saveStockUseCase:     saveStockUseCase,
		setStockUseCase:      setStockUseCase,
		deleteStockUseCase:   deleteStockUseCase,
		createIssueUseCase:   createIssueUseCase,
		listIssueLogsUseCase: listIssueLogsUseCase,
	}
}

// RegisterRoutes 注册库存路由
// 内部端与零售端共用同一组handler，差异由DetectRetailer标记驱动
func (h *StockHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/stock/:platform", h.List)
	group.GET("/stock/:platform/:sku", h.Get)
	group.PUT("/stock/:platform/:sku", h.Save)
	group.PUT("/stock/:platform/:sku/all", h.Set)
	group.DELETE("/stock/:platform", h.DeleteAll)
	group.DELETE("/stock/:platform/:sku", h.Delete)
	group.POST("/stock/:platform/:sku/issue/:type", h.Issue)
	group.GET("/stock/:platform/:sku/logs", h.ListLogs)
}

// Get 查询单条库存记录
// @Summary      查询库存
// @Description  查询指定SKU的库存记录及两个渠道的当前可用量
// @Tags         库存
// @Produce      json
// @Param        platform path string true "平台"
// @Param        sku path string true "SKU编码"
// @Success      200 {object} response.Response{data=dto.StockResponse}
// @Failure      404 {object} response.Response "库存记录不存在"
// @Router       /api/v1/stock/{platform}/{sku} [get]
func (h *StockHandler) Get(c *gin.Context) {
	entity, err := h.getStockUseCase.Execute(c.Request.Context(), c.Param("platform"), c.Param("sku"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if middleware.IsRetailer(c) {
		response.Success(c, dto.ToRetailerStockResponse(entity))
		return
	}
	response.Success(c, dto.ToStockResponse(entity))
}

// List 查询平台库存清单
// @Summary      平台库存清单
// @Description  枚举平台下所有库存记录
// @Tags         库存
// @Produce      json
// @Param        platform path string true "平台"
// @Success      200 {object} response.Response{data=[]dto.StockResponse}
// @Router       /api/v1/stock/{platform} [get]
func (h *StockHandler) List(c *gin.Context) {
	entities, err := h.listStockUseCase.Execute(c.Request.Context(), c.Param("platform"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if middleware.IsRetailer(c) {
		list := make([]*dto.RetailerStockResponse, len(entities))
		for i, entity := range entities {
			list[i] = dto.ToRetailerStockResponse(entity)
		}
		response.Success(c, list)
		return
	}

	list := make([]*dto.StockResponse, len(entities))
	for i, entity := range entities {
		list[i] = dto.ToStockResponse(entity)
	}
	response.Success(c, list)
}

// Save upsert库存记录
// @Summary      保存库存
// @Description  不存在则创建（计数从0开始），存在则更新渠道上限与过期时间；maximum/allocation创建后不可变
// @Tags         库存
// @Accept       json
// @Produce      json
// @Param        platform path string true "平台"
// @Param        sku path string true "SKU编码"
// @Param        request body dto.SaveStockRequest true "库存信息"
// @Success      200 {object} response.Response{data=dto.StockResponse}
// @Failure      400 {object} response.Response "参数错误/不可变字段修改/上限冲突"
// @Router       /api/v1/stock/{platform}/{sku} [put]
func (h *StockHandler) Save(c *gin.Context) {
	if h.rejectRetailer(c) {
		return
	}

	var req dto.SaveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	entity, err := h.saveStockUseCase.Execute(c.Request.Context(), appstock.SaveStockRequest{
		Platform:           c.Param("platform"),
		Sku:                c.Param("sku"),
		Maximum:            req.Maximum,
		Allocation:         req.Allocation,
		MaximumForClaim:    req.MaximumForClaim,
		MaximumForPurchase: req.MaximumForPurchase,
		Expires:            dto.MillisToTime(req.Expires),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToStockResponse(entity))
}

// Set 覆盖重置库存记录
// @Summary      重置库存
// @Description  特权操作：无条件覆盖全部字段（含发放计数），用于管理端纠偏
// @Tags         库存
// @Accept       json
// @Produce      json
// @Param        platform path string true "平台"
// @Param        sku path string true "SKU编码"
// @Param        request body dto.SetStockRequest true "完整库存字段"
// @Success      200 {object} response.Response{data=dto.StockResponse}
// @Failure      400 {object} response.Response "载荷内部不一致"
// @Router       /api/v1/stock/{platform}/{sku}/all [put]
func (h *StockHandler) Set(c *gin.Context) {
	if h.rejectRetailer(c) {
		return
	}

	var req dto.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	entity, err := h.setStockUseCase.Execute(c.Request.Context(), appstock.SetStockRequest{
		Platform:           c.Param("platform"),
		Sku:                c.Param("sku"),
		Maximum:            req.Maximum,
		Allocation:         req.Allocation,
		MaximumForClaim:    req.MaximumForClaim,
		MaximumForPurchase: req.MaximumForPurchase,
		Issued:             req.Issued,
		IssuedForClaim:     req.IssuedForClaim,
		IssuedForPurchase:  req.IssuedForPurchase,
		Expires:            dto.MillisToTime(req.Expires),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToStockResponse(entity))
}

// Delete 删除单条库存记录
// @Summary      删除库存
// @Tags         库存
// @Produce      json
// @Param        platform path string true "平台"
// @Param        sku path string true "SKU编码"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "库存记录不存在"
// @Router       /api/v1/stock/{platform}/{sku} [delete]
func (h *StockHandler) Delete(c *gin.Context) {
	if h.rejectRetailer(c) {
		return
	}

	if err := h.deleteStockUseCase.Execute(c.Request.Context(), c.Param("platform"), c.Param("sku")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// DeleteAll 删除平台下全部库存记录
// @Summary      清空平台库存
// @Description  运维/测试支撑接口，逐条删除平台下所有记录
// @Tags         库存
// @Produce      json
// @Param        platform path string true "平台"
// @Success      200 {object} response.Response{data=map[string]int}
// @Router       /api/v1/stock/{platform} [delete]
func (h *StockHandler) DeleteAll(c *gin.Context) {
	if h.rejectRetailer(c) {
		return
	}

	deleted, err := h.deleteStockUseCase.ExecuteAll(c.Request.Context(), c.Param("platform"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": deleted})
}

// Issue 发放一个库存单位
// @Summary      发放库存
// @Description  通过指定渠道（claim/purchase）原子发放一个单位，返回对外发放序号
// @Tags         库存
// @Produce      json
// @Param        platform path string true "平台"
// @Param        sku path string true "SKU编码"
// @Param        type path string true "发放渠道" Enums(claim, purchase)
// @Success      200 {object} response.Response{data=dto.IssueResponse}
// @Failure      403 {object} response.Response "库存已售罄"
// @Failure      404 {object} response.Response "库存记录不存在"
// @Router       /api/v1/stock/{platform}/{sku}/issue/{type} [post]
func (h *StockHandler) Issue(c *gin.Context) {
	if h.rejectRetailer(c) {
		return
	}

	issued, err := h.createIssueUseCase.Execute(c.Request.Context(),
		c.Param("platform"), c.Param("sku"), c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToIssueResponse(issued))
}

// ListLogs 查询发放流水
// @Summary      发放流水
// @Description  分页查询指定SKU的发放审计流水（按时间倒序）
// @Tags         库存
// @Produce      json
// @Param        platform path string true "平台"
// @Param        sku path string true "SKU编码"
// @Param        page query int false "页码（默认1）"
// @Param        page_size query int false "每页数量（默认20，最大100）"
// @Success      200 {object} response.Response{data=dto.ListIssueLogsResponse}
// @Router       /api/v1/stock/{platform}/{sku}/logs [get]
func (h *StockHandler) ListLogs(c *gin.Context) {
	if h.rejectRetailer(c) {
		return
	}

	var query struct {
		Page     int `form:"page" binding:"omitempty,min=1"`
		PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listIssueLogsUseCase.Execute(c.Request.Context(), appstock.ListIssueLogsRequest{
		Platform: c.Param("platform"),
		Sku:      c.Param("sku"),
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.IssueLogItem, len(result.List))
	for i, entry := range result.List {
		list[i] = dto.ToIssueLogItem(entry)
	}

	response.Success(c, &dto.ListIssueLogsResponse{
		List:       list,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// rejectRetailer 变更类接口对零售端一律拒绝
func (h *StockHandler) rejectRetailer(c *gin.Context) bool {
	if middleware.IsRetailer(c) {
		response.Error(c, stock.ErrNotAvailableToRetailer)
		return true
	}
	return false
}
