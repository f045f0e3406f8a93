package wallet

import (
	"math/big"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/wallet/types"
)

// Check 校验已 populate 的普通交易, 返回规范化后的副本。纯函数, 幂等
func (w *Wallet) Check(req *types.TransactionRequest) (*types.TransactionRequest, error) {
	if req == nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "", "请求为空")
	}
	if fields := req.UnsupportedFields(); len(fields) > 0 {
		return nil, errno.New(errno.ErrUnsupportedField, fields[0], "普通交易不支持该字段")
	}

	switch {
	case req.From == nil:
		return nil, missing("from")
	case *req.From != w.address:
		return nil, errno.New(errno.ErrInvalidTransaction, "from", "发送方 %s 与钱包地址不一致", req.From.Hex())
	case req.Nonce == nil:
		return nil, missing("nonce")
	case req.GasPrice == nil:
		return nil, missing("gasPrice")
	case req.GasPrice.Sign() < 0:
		return nil, errno.New(errno.ErrInvalidTransaction, "gasPrice", "不能为负数")
	case req.GasLimit == nil:
		return nil, missing("gasLimit")
	case *req.GasLimit == 0:
		return nil, errno.New(errno.ErrInvalidTransaction, "gasLimit", "必须大于 0")
	case req.ChainID == nil:
		return nil, missing("chainId")
	case req.ChainID.Sign() <= 0:
		return nil, errno.New(errno.ErrInvalidTransaction, "chainId", "必须大于 0")
	case req.ShardID == nil:
		return nil, missing("shardID")
	case req.ToShardID == nil:
		return nil, missing("toShardID")
	case req.Value != nil && req.Value.Sign() < 0:
		return nil, errno.New(errno.ErrInvalidTransaction, "value", "不能为负数")
	case req.To == nil && *req.ShardID != *req.ToShardID:
		return nil, errno.New(errno.ErrInvalidTransaction, "to", "不能跨分片创建合约")
	}

	tx := req.Clone()
	if tx.Value == nil {
		tx.Value = new(big.Int)
	}
	return tx, nil
}

// CheckStaking 校验已 populate 的质押交易: 指令与消息一致、消息合法、签名人是钱包本身
func (w *Wallet) CheckStaking(req *types.StakingTransactionRequest) (*types.StakingTransactionRequest, error) {
	if req == nil {
		return nil, errno.New(errno.ErrInvalidTransaction, "", "请求为空")
	}
	if fields := req.UnsupportedFields(); len(fields) > 0 {
		return nil, errno.New(errno.ErrUnsupportedField, fields[0], "质押交易不支持该字段")
	}

	switch {
	case !req.Type.Valid():
		return nil, errno.New(errno.ErrInvalidTransaction, "type", "未知的质押指令 %d", uint8(req.Type))
	case req.Msg == nil:
		return nil, missing("msg")
	case req.Msg.Directive() != req.Type:
		return nil, errno.New(errno.ErrInvalidTransaction, "msg", "指令 %s 与消息类型 %s 不匹配", req.Type, req.Msg.Directive())
	}
	if err := req.Msg.Validate(); err != nil {
		return nil, err
	}

	switch {
	case req.Msg.Signer() != w.address:
		return nil, errno.New(errno.ErrInvalidTransaction, "msg", "消息签名人 %s 不是钱包地址", req.Msg.Signer().Hex())
	case req.Nonce == nil:
		return nil, missing("nonce")
	case req.GasPrice == nil:
		return nil, missing("gasPrice")
	case req.GasPrice.Sign() < 0:
		return nil, errno.New(errno.ErrInvalidTransaction, "gasPrice", "不能为负数")
	case req.GasLimit == nil:
		return nil, missing("gasLimit")
	case *req.GasLimit == 0:
		return nil, errno.New(errno.ErrInvalidTransaction, "gasLimit", "必须大于 0")
	case req.ChainID == nil:
		return nil, missing("chainId")
	case req.ChainID.Sign() <= 0:
		return nil, errno.New(errno.ErrInvalidTransaction, "chainId", "必须大于 0")
	}

	return req.Clone(), nil
}

func missing(field string) error {
	return errno.New(errno.ErrInvalidTransaction, field, "缺少字段")
}
