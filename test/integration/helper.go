package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 这个文件包含集成测试的通用辅助函数，将重复的代码
// （HTTP请求、JSON解析）封装成可复用的函数。
//
// 运行前提：服务已启动（默认http://localhost:8080），
// 可通过环境变量STOCK_TEST_BASE覆盖地址。
// 服务不可达时整个测试包跳过。

const (
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// BaseURL API基础URL
var BaseURL = baseURL() + "/api/v1"

func baseURL() string {
	if base := os.Getenv("STOCK_TEST_BASE"); base != "" {
		return base
	}
	return "http://localhost:8080"
}

// RequireServer 检查服务是否可达，不可达时跳过测试
func RequireServer(t *testing.T) {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL() + "/ping")
	if err != nil {
		t.Skipf("服务不可达(%v)，跳过集成测试", err)
	}
	resp.Body.Close()
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// StockData 库存响应数据（内部视图）
type StockData struct {
	Platform             string `json:"platform"`
	Sku                  string `json:"sku"`
	Maximum              int    `json:"maximum"`
	MaximumForClaim      *int   `json:"maximum_for_claim"`
	MaximumForPurchase   *int   `json:"maximum_for_purchase"`
	Issued               int    `json:"issued"`
	IssuedForClaim       int    `json:"issued_for_claim"`
	IssuedForPurchase    int    `json:"issued_for_purchase"`
	Expires              *int64 `json:"expires"`
	Allocation           string `json:"allocation"`
	AvailableForClaim    int    `json:"available_for_claim"`
	AvailableForPurchase int    `json:"available_for_purchase"`
}

// RetailerStockData 库存响应数据（零售端视图）
type RetailerStockData struct {
	Platform  string `json:"platform"`
	Sku       string `json:"sku"`
	Stock     int    `json:"stock"`
	Available int    `json:"available"`
}

// IssueData 发放响应数据
type IssueData struct {
	StockData
	Issue int `json:"issue"`
}

// DoJSON 发送带JSON body的请求并解析统一响应
func DoJSON(t *testing.T, method, url string, data interface{}) *Response {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	require.NoError(t, json.Unmarshal(raw, &result), "解析响应失败: %s", string(raw))
	return &result
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string) *Response {
	return DoJSON(t, http.MethodGet, url, nil)
}

// PutJSON 发送PUT请求
func PutJSON(t *testing.T, url string, data interface{}) *Response {
	return DoJSON(t, http.MethodPut, url, data)
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, data interface{}) *Response {
	return DoJSON(t, http.MethodPost, url, data)
}

// DeleteJSON 发送DELETE请求
func DeleteJSON(t *testing.T, url string) *Response {
	return DoJSON(t, http.MethodDelete, url, nil)
}

// UniqueSku 生成全局唯一的SKU，避免测试间互相污染
func UniqueSku(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
