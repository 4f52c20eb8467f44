package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServiceName はヘルスチェックで返すサービス名
const ServiceName = "Sapper-App"

// NewRouter はAPIのルーティングを設定したエンジンを作成する
// metrics が nil の場合は /metrics を登録しない
func NewRouter(planHandler *PlanHandler, metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/api/health", HealthCheck)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/plans", planHandler.PostPlans)
		v1.POST("/assignments", planHandler.PostAssignments)
	}
	return r
}

// HealthCheck はヘルスチェック用のエンドポイント
// GET /api/health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}
