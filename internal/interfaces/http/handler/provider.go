package handler

import (
	"net/http"

	"novelforge-api/internal/domain/entity"
	"novelforge-api/internal/domain/repository"
	"novelforge-api/internal/interfaces/http/dto"
	"novelforge-api/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ProviderHandler 用户提供商配置处理器
type ProviderHandler struct {
	providerRepo repository.ModelProviderRepository
}

// NewProviderHandler 创建提供商配置处理器
func NewProviderHandler(providerRepo repository.ModelProviderRepository) *ProviderHandler {
	return &ProviderHandler{providerRepo: providerRepo}
}

// List 列出当前用户启用的提供商配置
// API 密钥不随响应返回（实体字段 json:"-"）
// @Summary 列出提供商配置
// @Tags Providers
// @Produce json
// @Success 200 {array} entity.ModelProvider
// @Router /v1/providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	providers, err := h.providerRepo.ListEnabledByUser(c.Request.Context(), userID)
	if err != nil {
		dto.Error(c, errors.Wrap(err, errors.CodeInternalError, "加载提供商配置失败"))
		return
	}
	if providers == nil {
		providers = []*entity.ModelProvider{}
	}
	c.JSON(http.StatusOK, providers)
}

// Create 创建提供商配置
// @Summary 创建提供商配置
// @Tags Providers
// @Accept json
// @Produce json
// @Success 201 {object} entity.ModelProvider
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/providers [post]
func (h *ProviderHandler) Create(c *gin.Context) {
	var req dto.ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, errors.Wrap(err, errors.CodeValidationFailed, "请求体格式错误"))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	provider := &entity.ModelProvider{
		UserID:       c.GetString("user_id"),
		Name:         req.Name,
		ProviderType: req.ProviderType,
		APIKey:       req.APIKey,
		APIBaseURL:   req.APIBaseURL,
		DefaultModel: req.DefaultModel,
		IsDefault:    req.IsDefault,
		Enabled:      enabled,
		ConfigJSON:   req.ConfigJSON,
	}

	if err := h.providerRepo.Create(c.Request.Context(), provider); err != nil {
		dto.Error(c, errors.Wrap(err, errors.CodeInternalError, "保存提供商配置失败"))
		return
	}
	c.JSON(http.StatusCreated, provider)
}

// Update 更新提供商配置
// 只允许更新当前用户自己的记录
// @Summary 更新提供商配置
// @Tags Providers
// @Accept json
// @Produce json
// @Param id path string true "配置 ID"
// @Success 200 {object} entity.ModelProvider
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/providers/{id} [put]
func (h *ProviderHandler) Update(c *gin.Context) {
	var req dto.ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, errors.Wrap(err, errors.CodeValidationFailed, "请求体格式错误"))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	provider := &entity.ModelProvider{
		ID:           c.Param("id"),
		UserID:       c.GetString("user_id"),
		Name:         req.Name,
		ProviderType: req.ProviderType,
		APIKey:       req.APIKey,
		APIBaseURL:   req.APIBaseURL,
		DefaultModel: req.DefaultModel,
		IsDefault:    req.IsDefault,
		Enabled:      enabled,
		ConfigJSON:   req.ConfigJSON,
	}

	if err := h.providerRepo.Update(c.Request.Context(), provider); err != nil {
		dto.Error(c, errors.Wrap(err, errors.CodeInternalError, "保存提供商配置失败"))
		return
	}
	c.JSON(http.StatusOK, provider)
}
