package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hmy-wallet/internal/handler/request"
	"hmy-wallet/internal/handler/response"
	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/logger"
	"hmy-wallet/pkg/validator"
	"hmy-wallet/pkg/wallet"
	"hmy-wallet/pkg/wallet/types"
)

// ChainReader 只读的链上查询, provider.Cached 实现它
type ChainReader interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.TransactionReceipt, error)
	CXReceipt(ctx context.Context, hash common.Hash) (*types.CXTransactionReceipt, error)
	BlockByNumber(ctx context.Context, number uint64) (*types.Block, error)
	BlockWithTransactionsByNumber(ctx context.Context, number uint64) (*types.BlockWithTransactions, error)
}

// WalletHandler 交易发送与链上查询
// wallet 为 nil 时服务只读, 发送接口返回 errno.ErrNoSigner
type WalletHandler struct {
	wallet      *wallet.Wallet
	chain       ChainReader
	waitTimeout time.Duration
}

func NewWalletHandler(w *wallet.Wallet, chain ChainReader, waitTimeout time.Duration) *WalletHandler {
	return &WalletHandler{wallet: w, chain: chain, waitTimeout: waitTimeout}
}

// SendTransaction 发送普通交易
// @Summary 发送普通交易
// @Description populate -> check -> sign -> send, confirmations > 0 时等待确认
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body request.SendTransactionRequest true "Transaction"
// @Success 200 {object} response.Response
// @Router /transactions [post]
func (h *WalletHandler) SendTransaction(c *gin.Context) {
	var req request.SendTransactionRequest
	if !bind(c, c.ShouldBindJSON(&req)) {
		return
	}
	if h.wallet == nil {
		response.Error(c, errno.ErrNoSigner)
		return
	}

	ctx := c.Request.Context()
	resp, err := h.wallet.SendTransaction(ctx, req.Transaction)
	if err != nil {
		response.Error(c, err)
		return
	}
	receipt, err := h.wait(ctx, resp.Wait, req.Confirmations)
	data := gin.H{"transaction": resp, "receipt": receipt}
	if err != nil {
		response.ErrorWithData(c, err, data)
		return
	}
	response.Success(c, data)
}

// SendStakingTransaction 发送质押交易
// @Summary 发送质押交易
// @Tags Staking
// @Accept json
// @Produce json
// @Param request body request.SendStakingRequest true "Staking transaction"
// @Success 200 {object} response.Response
// @Router /staking [post]
func (h *WalletHandler) SendStakingTransaction(c *gin.Context) {
	var req request.SendStakingRequest
	if !bind(c, c.ShouldBindJSON(&req)) {
		return
	}
	if h.wallet == nil {
		response.Error(c, errno.ErrNoSigner)
		return
	}

	ctx := c.Request.Context()
	resp, err := h.wallet.SendStakingTransaction(ctx, req.Staking)
	if err != nil {
		response.Error(c, err)
		return
	}
	receipt, err := h.wait(ctx, resp.Wait, req.Confirmations)
	data := gin.H{"transaction": resp, "receipt": receipt}
	if err != nil {
		response.ErrorWithData(c, err, data)
		return
	}
	response.Success(c, data)
}

// DecodeTransaction 解码已签名交易并恢复签名人
// @Summary 解码已签名交易
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body request.DecodeTransactionRequest true "Raw transaction"
// @Success 200 {object} response.Response
// @Router /transactions/decode [post]
func (h *WalletHandler) DecodeTransaction(c *gin.Context) {
	var req request.DecodeTransactionRequest
	if !bind(c, c.ShouldBindJSON(&req)) {
		return
	}
	if req.Staking {
		tx, err := wallet.ParseStakingTransaction(req.Raw)
		if err != nil {
			response.Error(c, errno.Wrap(errno.ErrInvalidTransaction, err))
			return
		}
		response.Success(c, tx)
		return
	}
	tx, err := wallet.ParseTransaction(req.Raw)
	if err != nil {
		response.Error(c, errno.Wrap(errno.ErrInvalidTransaction, err))
		return
	}
	response.Success(c, tx)
}

// GetReceipt 查询交易回执
// @Summary 查询交易回执
// @Tags Transaction
// @Produce json
// @Param hash path string true "Transaction hash"
// @Success 200 {object} response.Response
// @Router /transactions/{hash}/receipt [get]
func (h *WalletHandler) GetReceipt(c *gin.Context) {
	var uri request.TxHashURI
	if !bind(c, c.ShouldBindUri(&uri)) {
		return
	}
	receipt, err := h.chain.TransactionReceipt(c.Request.Context(), common.HexToHash(uri.Hash))
	if err != nil {
		response.Error(c, lookupError("receipt", err))
		return
	}
	response.Success(c, receipt)
}

// GetCXReceipt 查询跨分片交易在目标分片上的回执
// @Summary 查询跨分片回执
// @Tags Transaction
// @Produce json
// @Param hash path string true "Transaction hash"
// @Success 200 {object} response.Response
// @Router /cx-receipts/{hash} [get]
func (h *WalletHandler) GetCXReceipt(c *gin.Context) {
	var uri request.TxHashURI
	if !bind(c, c.ShouldBindUri(&uri)) {
		return
	}
	receipt, err := h.chain.CXReceipt(c.Request.Context(), common.HexToHash(uri.Hash))
	if err != nil {
		response.Error(c, lookupError("cxReceipt", err))
		return
	}
	response.Success(c, receipt)
}

// GetBlock 按高度查询区块
// @Summary 按高度查询区块
// @Tags Block
// @Produce json
// @Param number path int true "Block number"
// @Param full query bool false "返回完整交易"
// @Success 200 {object} response.Response
// @Router /blocks/{number} [get]
func (h *WalletHandler) GetBlock(c *gin.Context) {
	var uri request.BlockNumberURI
	if !bind(c, c.ShouldBindUri(&uri)) {
		return
	}
	var query request.BlockQuery
	if !bind(c, c.ShouldBindQuery(&query)) {
		return
	}
	number, err := strconv.ParseUint(uri.Number, 10, 64)
	if err != nil {
		response.Error(c, errno.New(errno.ErrBind, "number", "%v", err))
		return
	}
	var block interface{}
	if query.Full {
		block, err = h.chain.BlockWithTransactionsByNumber(c.Request.Context(), number)
	} else {
		block, err = h.chain.BlockByNumber(c.Request.Context(), number)
	}
	if err != nil {
		response.Error(c, lookupError("block", err))
		return
	}
	response.Success(c, block)
}

type waitFunc func(ctx context.Context, confirmations uint64, opts ...wallet.WaitOption) (*types.TransactionReceipt, error)

func (h *WalletHandler) wait(ctx context.Context, wait waitFunc, confirmations uint64) (*types.TransactionReceipt, error) {
	if confirmations == 0 {
		return nil, nil
	}
	var opts []wallet.WaitOption
	if h.waitTimeout > 0 {
		opts = append(opts, wallet.WithTimeout(h.waitTimeout))
	}
	return wait(ctx, confirmations, opts...)
}

func bind(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	response.Error(c, errno.New(errno.ErrBind, "", "%s", validator.GetErrorMsg(err)))
	return false
}

func lookupError(op string, err error) error {
	if errors.Is(err, ethereum.NotFound) {
		return errno.New(errno.ErrNotFound, op, "")
	}
	logger.Warn("chain lookup failed", zap.String("op", op), zap.Error(err))
	return errno.New(errno.ErrProviderUnavailable, op, "%w", err)
}
