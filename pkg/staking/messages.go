package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"hmy-wallet/pkg/errno"
)

// Message 质押消息。只有本包定义的五种类型实现该接口,
// 每种类型与唯一的 Directive 绑定。
type Message interface {
	Directive() Directive
	// Validate 检查消息自身的字段约束, 失败返回 errno.ErrInvalidTransaction
	Validate() error
	// Signer 返回必须签署该消息的账户 (验证人或委托人)
	Signer() common.Address

	isMessage()
}

// CreateValidator 创建验证人
type CreateValidator struct {
	ValidatorAddress   common.Address
	Description        Description
	CommissionRates    CommissionRate
	MinSelfDelegation  *big.Int
	MaxTotalDelegation *big.Int
	SlotPubKeys        []BLSPublicKey
	SlotKeySigs        []BLSSignature // 可选, 存在时必须与 SlotPubKeys 一一对应
	Amount             *big.Int
}

// EditValidator 修改验证人, 除地址外全部可选
type EditValidator struct {
	ValidatorAddress   common.Address
	Description        Description // 空字段表示不修改
	CommissionRate     *decimal.Decimal
	MinSelfDelegation  *big.Int
	MaxTotalDelegation *big.Int
	SlotKeyToRemove    *BLSPublicKey
	SlotKeyToAdd       *BLSPublicKey
	SlotKeyToAddSig    *BLSSignature
	Active             *bool
}

// Delegate 委托
type Delegate struct {
	DelegatorAddress common.Address
	ValidatorAddress common.Address
	Amount           *big.Int
}

// Undelegate 取消委托
type Undelegate struct {
	DelegatorAddress common.Address
	ValidatorAddress common.Address
	Amount           *big.Int
}

// CollectRewards 领取奖励
type CollectRewards struct {
	DelegatorAddress common.Address
}

func (*CreateValidator) Directive() Directive { return DirectiveCreateValidator }
func (*EditValidator) Directive() Directive   { return DirectiveEditValidator }
func (*Delegate) Directive() Directive        { return DirectiveDelegate }
func (*Undelegate) Directive() Directive      { return DirectiveUndelegate }
func (*CollectRewards) Directive() Directive  { return DirectiveCollectRewards }

func (m *CreateValidator) Signer() common.Address { return m.ValidatorAddress }
func (m *EditValidator) Signer() common.Address   { return m.ValidatorAddress }
func (m *Delegate) Signer() common.Address        { return m.DelegatorAddress }
func (m *Undelegate) Signer() common.Address      { return m.DelegatorAddress }
func (m *CollectRewards) Signer() common.Address  { return m.DelegatorAddress }

func (*CreateValidator) isMessage() {}
func (*EditValidator) isMessage()   {}
func (*Delegate) isMessage()        {}
func (*Undelegate) isMessage()      {}
func (*CollectRewards) isMessage()  {}

// NewMessage 返回指定指令对应的空消息, 供解码使用
func NewMessage(d Directive) (Message, error) {
	switch d {
	case DirectiveCreateValidator:
		return &CreateValidator{}, nil
	case DirectiveEditValidator:
		return &EditValidator{}, nil
	case DirectiveDelegate:
		return &Delegate{}, nil
	case DirectiveUndelegate:
		return &Undelegate{}, nil
	case DirectiveCollectRewards:
		return &CollectRewards{}, nil
	}
	return nil, errno.New(errno.ErrInvalidTransaction, "type", "未知的质押指令 %d", uint8(d))
}

func (m *CreateValidator) Validate() error {
	if err := requireAddress("validatorAddress", m.ValidatorAddress); err != nil {
		return err
	}
	if err := m.Description.validate(true); err != nil {
		return err
	}
	if err := m.CommissionRates.validate(); err != nil {
		return err
	}
	if err := requirePositive("minSelfDelegation", m.MinSelfDelegation); err != nil {
		return err
	}
	if err := requireNonNegative("maxTotalDelegation", m.MaxTotalDelegation); err != nil {
		return err
	}
	if m.MaxTotalDelegation.Sign() > 0 && m.MaxTotalDelegation.Cmp(m.MinSelfDelegation) < 0 {
		return errno.New(errno.ErrInvalidTransaction, "maxTotalDelegation", "不能小于 minSelfDelegation")
	}
	if err := requirePositive("amount", m.Amount); err != nil {
		return err
	}
	if m.Amount.Cmp(m.MinSelfDelegation) < 0 {
		return errno.New(errno.ErrInvalidTransaction, "amount", "不能小于 minSelfDelegation")
	}
	if len(m.SlotPubKeys) == 0 {
		return errno.New(errno.ErrInvalidTransaction, "slotPubKeys", "至少需要一个 BLS 公钥")
	}
	seen := make(map[BLSPublicKey]struct{}, len(m.SlotPubKeys))
	for _, k := range m.SlotPubKeys {
		if _, dup := seen[k]; dup {
			return errno.New(errno.ErrInvalidTransaction, "slotPubKeys", "重复的 BLS 公钥 %s", k.Hex())
		}
		seen[k] = struct{}{}
	}
	if len(m.SlotKeySigs) > 0 && len(m.SlotKeySigs) != len(m.SlotPubKeys) {
		return errno.New(errno.ErrInvalidTransaction, "slotKeySigs", "签名数量 %d 与公钥数量 %d 不一致", len(m.SlotKeySigs), len(m.SlotPubKeys))
	}
	return nil
}

func (m *EditValidator) Validate() error {
	if err := requireAddress("validatorAddress", m.ValidatorAddress); err != nil {
		return err
	}
	if err := m.Description.validate(false); err != nil {
		return err
	}
	if m.CommissionRate != nil {
		if err := validateRate("commissionRate", *m.CommissionRate); err != nil {
			return err
		}
	}
	if m.MinSelfDelegation != nil {
		if err := requireNonNegative("minSelfDelegation", m.MinSelfDelegation); err != nil {
			return err
		}
	}
	if m.MaxTotalDelegation != nil {
		if err := requireNonNegative("maxTotalDelegation", m.MaxTotalDelegation); err != nil {
			return err
		}
	}
	if m.SlotKeyToAdd != nil && m.SlotKeyToAddSig == nil {
		return errno.New(errno.ErrInvalidTransaction, "slotKeySig", "添加 BLS 公钥时必须提供签名")
	}
	if m.SlotKeyToAdd == nil && m.SlotKeyToAddSig != nil {
		return errno.New(errno.ErrInvalidTransaction, "slotKeyToAdd", "提供了签名但没有要添加的 BLS 公钥")
	}
	if m.SlotKeyToAdd != nil && m.SlotKeyToRemove != nil && *m.SlotKeyToAdd == *m.SlotKeyToRemove {
		return errno.New(errno.ErrInvalidTransaction, "slotKeyToAdd", "不能添加并同时移除同一个 BLS 公钥")
	}
	return nil
}

func (m *Delegate) Validate() error {
	return validateDelegation(m.DelegatorAddress, m.ValidatorAddress, m.Amount)
}

func (m *Undelegate) Validate() error {
	return validateDelegation(m.DelegatorAddress, m.ValidatorAddress, m.Amount)
}

func (m *CollectRewards) Validate() error {
	return requireAddress("delegatorAddress", m.DelegatorAddress)
}

func validateDelegation(delegator, validator common.Address, amount *big.Int) error {
	if err := requireAddress("delegatorAddress", delegator); err != nil {
		return err
	}
	if err := requireAddress("validatorAddress", validator); err != nil {
		return err
	}
	return requirePositive("amount", amount)
}

func requireAddress(field string, addr common.Address) error {
	if addr == (common.Address{}) {
		return errno.New(errno.ErrInvalidTransaction, field, "地址不能为空")
	}
	return nil
}

func requirePositive(field string, v *big.Int) error {
	if v == nil {
		return errno.New(errno.ErrInvalidTransaction, field, "不能为空")
	}
	if v.Sign() <= 0 {
		return errno.New(errno.ErrInvalidTransaction, field, "必须大于 0")
	}
	return nil
}

func requireNonNegative(field string, v *big.Int) error {
	if v == nil {
		return errno.New(errno.ErrInvalidTransaction, field, "不能为空")
	}
	if v.Sign() < 0 {
		return errno.New(errno.ErrInvalidTransaction, field, "不能为负数")
	}
	return nil
}
