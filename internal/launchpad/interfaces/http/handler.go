// Package http 发行平台的 HTTP 接口层
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/launchpad/internal/launchpad/application"
	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
	"github.com/wyfcoding/launchpad/pkg/logger"
)

// callerHeader 调用方身份头。网关完成认证后注入，引擎只信任这个显式参数。
const callerHeader = "X-Account-ID"

// RegistryHandler HTTP 处理器
type RegistryHandler struct {
	service *application.RegistryService
}

// NewRegistryHandler 创建 HTTP 处理器
func NewRegistryHandler(service *application.RegistryService) *RegistryHandler {
	return &RegistryHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *RegistryHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")
	{
		api.GET("/registry", h.GetRegistry)
		api.GET("/cost", h.GetCost)
		api.GET("/sales", h.ListSales)
		api.GET("/sales/:index", h.GetTokenSale)
		api.GET("/tokens/:token_id/sale", h.TokenToSale)
		api.GET("/tokens/:token_id/quote", h.Quote)
		api.GET("/tokens/:token_id/balances/:holder", h.BalanceOf)

		api.POST("/sales", h.CreateSale)
		api.POST("/tokens/:token_id/buy", h.Buy)
		api.POST("/tokens/:token_id/deposit", h.Deposit)
		api.POST("/treasury/withdraw", h.Withdraw)
	}
}

// GetRegistry 注册表概览：owner、fee、关闭条件常量、挂牌总数
func (h *RegistryHandler) GetRegistry(c *gin.Context) {
	registry, err := h.service.Registry(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, registry)
}

// GetCost 任意已售数量下的边际单价
func (h *RegistryHandler) GetCost(c *gin.Context) {
	sold, err := decimal.NewFromString(c.DefaultQuery("sold", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sold value"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sold": sold, "cost": h.service.GetCost(sold)})
}

// ListSales 按创建顺序分页列出发售
func (h *RegistryHandler) ListSales(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	sales, err := h.service.ListSales(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// GetTokenSale 按创建顺序获取发售
func (h *RegistryHandler) GetTokenSale(c *gin.Context) {
	index, err := strconv.ParseInt(c.Param("index"), 10, 64)
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	sale, err := h.service.GetTokenSale(c.Request.Context(), index)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// TokenToSale 按代币标识获取发售
func (h *RegistryHandler) TokenToSale(c *gin.Context) {
	sale, err := h.service.TokenToSale(c.Request.Context(), c.Param("token_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Quote 购买报价
func (h *RegistryHandler) Quote(c *gin.Context) {
	amount, err := decimal.NewFromString(c.DefaultQuery("amount", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	quote, err := h.service.Quote(c.Request.Context(), c.Param("token_id"), amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// BalanceOf 持仓查询
func (h *RegistryHandler) BalanceOf(c *gin.Context) {
	balance, err := h.service.BalanceOf(c.Request.Context(), c.Param("token_id"), c.Param("holder"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token_id": c.Param("token_id"),
		"holder":   c.Param("holder"),
		"balance":  balance,
	})
}

// CreateSaleRequest 挂牌请求
type CreateSaleRequest struct {
	Name    string `json:"name" binding:"required"`
	Symbol  string `json:"symbol" binding:"required"`
	Payment string `json:"payment" binding:"required"`
}

// CreateSale 挂牌新发售
func (h *RegistryHandler) CreateSale(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := decimal.NewFromString(req.Payment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment"})
		return
	}

	sale, err := h.service.CreateSale(c.Request.Context(), application.CreateSaleCommand{
		Caller:  caller,
		Name:    req.Name,
		Symbol:  req.Symbol,
		Payment: payment,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// BuyRequest 购买请求
type BuyRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Payment string `json:"payment" binding:"required"`
}

// Buy 购买代币
func (h *RegistryHandler) Buy(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	payment, err := decimal.NewFromString(req.Payment)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment"})
		return
	}

	sale, err := h.service.Buy(c.Request.Context(), application.BuyCommand{
		Caller:  caller,
		TokenID: c.Param("token_id"),
		Amount:  amount,
		Payment: payment,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Deposit 创建者领取未售余量
func (h *RegistryHandler) Deposit(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	sale, err := h.service.Deposit(c.Request.Context(), application.DepositCommand{
		Caller:  caller,
		TokenID: c.Param("token_id"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// WithdrawRequest 提现请求
type WithdrawRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// Withdraw 平台方提现
func (h *RegistryHandler) Withdraw(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	result, err := h.service.Withdraw(c.Request.Context(), application.WithdrawCommand{
		Caller: caller,
		Amount: amount,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *RegistryHandler) caller(c *gin.Context) (string, bool) {
	caller := c.GetHeader(callerHeader)
	if caller == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + callerHeader + " header"})
		return "", false
	}
	return caller, true
}

// fail 把领域错误映射为 HTTP 状态码
func (h *RegistryHandler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrSaleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrNotCreator):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrSaleClosed),
		errors.Is(err, domain.ErrSaleStillOpen),
		errors.Is(err, domain.ErrAlreadyDeposited):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrWrongFee),
		errors.Is(err, domain.ErrWrongPayment),
		errors.Is(err, domain.ErrExceedsLimit),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidMetadata),
		errors.Is(err, domain.ErrInsufficientTreasury),
		errors.Is(err, domain.ErrInsufficientBalance):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
