package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"Sapper-App/internal/domain/model"
	"Sapper-App/internal/usecase"
)

// PlanHandler は経路計算APIのハンドラー
type PlanHandler struct {
	planUseCase usecase.SapperPlanUseCase
}

// NewPlanHandler は新しいPlanHandlerインスタンスを作成
func NewPlanHandler(planUseCase usecase.SapperPlanUseCase) *PlanHandler {
	return &PlanHandler{planUseCase: planUseCase}
}

// PostPlans は割り当て・経路計画・コスト評価を行うエンドポイント
// POST /api/v1/plans
func (h *PlanHandler) PostPlans(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	response, err := h.planUseCase.CalculatePaths(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "経路計算に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// PostAssignments はゾーン割り当てのみを行うエンドポイント
// POST /api/v1/assignments
func (h *PlanHandler) PostAssignments(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	response, err := h.planUseCase.AssignZones(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "ゾーン割り当てに失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PlanHandler) bindRequest(c *gin.Context) (*model.PlanRequest, bool) {
	var req model.PlanRequest

	// リクエストボディのバインド
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return nil, false
	}

	// バリデーション
	if err := h.validateRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "バリデーションエラー",
			"details": err.Error(),
		})
		return nil, false
	}
	return &req, true
}

// validateRequest はリクエストの詳細バリデーションを行う
func (h *PlanHandler) validateRequest(req *model.PlanRequest) error {
	for i, a := range req.Agents {
		if a.Latitude < -90 || a.Latitude > 90 {
			return &ValidationError{Field: fmt.Sprintf("agents[%d].latitude", i), Message: "緯度は-90から90の範囲で指定してください"}
		}
		if a.Longitude < -180 || a.Longitude > 180 {
			return &ValidationError{Field: fmt.Sprintf("agents[%d].longitude", i), Message: "経度は-180から180の範囲で指定してください"}
		}
	}

	for i, z := range req.Zones {
		given := 0
		if z.Centroid != nil {
			given++
		}
		if len(z.Vertices) > 0 {
			given++
		}
		if len(z.Corners) > 0 {
			given++
		}
		if given != 1 {
			return &ValidationError{Field: fmt.Sprintf("zones[%d]", i), Message: "centroid・vertices・cornersのいずれか一つを指定してください"}
		}
		if len(z.Corners) > 0 && len(z.Corners) != 2 {
			return &ValidationError{Field: fmt.Sprintf("zones[%d].corners", i), Message: "cornersには始点と終点の2点を指定してください"}
		}
	}

	if req.ElevationWeightFactor != nil && *req.ElevationWeightFactor < 0 {
		return &ValidationError{Field: "elevation_weight_factor", Message: "標高の重み係数は0以上で指定してください"}
	}

	return nil
}

// respondError はエラーの種類に応じたステータスコードで応答する
func (h *PlanHandler) respondError(c *gin.Context, message string, err error) {
	c.JSON(statusFor(err), gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
