package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// 零售端标记的Context键
const retailerContextKey = "is_retailer"

// DetectRetailer 零售端识别中间件
// 设计说明：
// 1. 按请求路径识别调用方身份：路径含"retailer"段即零售端
//    （零售端网关固定转发到/api/v1/retailer/...前缀）
// 2. 只打标记不拦截，由各handler决定：
//    - 查询类接口返回缩减投影（不暴露渠道拆分与发放计数）
//    - 变更类接口直接拒绝
func DetectRetailer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.Contains(c.Request.URL.Path, "retailer") {
			c.Set(retailerContextKey, true)
		}
		c.Next()
	}
}

// IsRetailer 判断当前请求是否来自零售端
func IsRetailer(c *gin.Context) bool {
	return c.GetBool(retailerContextKey)
}
