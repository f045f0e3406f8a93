package wallet

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/wallet/types"
)

// SignTransaction 签名普通交易, 返回 0x 开头的 RLP 十六进制。
// 签名前重新 Check, 不合法的请求不会产生任何签名
func (w *Wallet) SignTransaction(req *types.TransactionRequest) (string, error) {
	tx, raw, err := w.signTransaction(req)
	if err != nil {
		return "", err
	}
	w.log.Debug("signed transaction", zap.String("hash", tx.Hash.Hex()))
	return hexutil.Encode(raw), nil
}

// SignStakingTransaction 签名质押交易
func (w *Wallet) SignStakingTransaction(req *types.StakingTransactionRequest) (string, error) {
	tx, raw, err := w.signStakingTransaction(req)
	if err != nil {
		return "", err
	}
	w.log.Debug("signed staking transaction",
		zap.Stringer("directive", tx.Directive),
		zap.String("hash", tx.Hash.Hex()))
	return hexutil.Encode(raw), nil
}

func (w *Wallet) signTransaction(req *types.TransactionRequest) (*types.Transaction, []byte, error) {
	checked, err := w.Check(req)
	if err != nil {
		return nil, nil, err
	}
	tx := &types.Transaction{
		Nonce:     *checked.Nonce,
		GasPrice:  checked.GasPrice,
		GasLimit:  *checked.GasLimit,
		ShardID:   *checked.ShardID,
		ToShardID: *checked.ToShardID,
		To:        checked.To,
		Value:     checked.Value,
		Data:      checked.Data,
		ChainID:   checked.ChainID,
		From:      w.address,
	}

	sighash, err := txSigningHash(tx)
	if err != nil {
		return nil, nil, errno.New(errno.ErrInvalidTransaction, "", "编码交易失败: %w", err)
	}
	if tx.V, tx.R, tx.S, err = w.sign(sighash, tx.ChainID); err != nil {
		return nil, nil, err
	}

	raw, err := encodeTransaction(tx)
	if err != nil {
		return nil, nil, errno.New(errno.ErrInvalidTransaction, "", "编码交易失败: %w", err)
	}
	tx.Hash = crypto.Keccak256Hash(raw)
	countSigned("plain")
	return tx, raw, nil
}

func (w *Wallet) signStakingTransaction(req *types.StakingTransactionRequest) (*types.StakingTransaction, []byte, error) {
	checked, err := w.CheckStaking(req)
	if err != nil {
		return nil, nil, err
	}
	tx := &types.StakingTransaction{
		Directive: checked.Type,
		Msg:       checked.Msg,
		Nonce:     *checked.Nonce,
		GasPrice:  checked.GasPrice,
		GasLimit:  *checked.GasLimit,
		ChainID:   checked.ChainID,
		From:      w.address,
	}

	sighash, err := stakingSigningHash(tx)
	if err != nil {
		return nil, nil, errno.New(errno.ErrInvalidTransaction, "msg", "编码质押消息失败: %w", err)
	}
	if tx.V, tx.R, tx.S, err = w.sign(sighash, tx.ChainID); err != nil {
		return nil, nil, err
	}

	raw, err := encodeStakingTransaction(tx)
	if err != nil {
		return nil, nil, errno.New(errno.ErrInvalidTransaction, "msg", "编码质押交易失败: %w", err)
	}
	tx.Hash = crypto.Keccak256Hash(raw)
	countSigned("staking")
	return tx, raw, nil
}

// sign secp256k1 确定性签名 (RFC6979), v = recID + chainId*2 + 35
func (w *Wallet) sign(hash common.Hash, chainID *big.Int) (v, r, s *big.Int, err error) {
	if w.key == nil {
		return nil, nil, nil, ErrWatchOnly
	}
	sig, err := crypto.Sign(hash[:], w.key)
	if err != nil {
		return nil, nil, nil, errno.Wrap(errno.InternalServerError, err)
	}
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).Mul(chainID, big.NewInt(2))
	v.Add(v, big.NewInt(int64(sig[64])+35))
	return v, r, s, nil
}
