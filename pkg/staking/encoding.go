package staking

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/shopspring/decimal"

	"hmy-wallet/pkg/numeric"
)

// 以下 *Wire 结构体定义了每种指令在链上的 RLP 字段顺序。
// 这个顺序是与节点协议的约定, 与公开类型的字段声明顺序无关, 修改前请对照节点实现。

type descriptionWire struct {
	Name            string
	Identity        string
	Website         string
	SecurityContact string
	Details         string
}

// decWire 节点侧的定点小数是只含一个整数的结构体, 编码为单元素列表
type decWire struct {
	Value *big.Int
}

type commissionWire struct {
	Rate          decWire
	MaxRate       decWire
	MaxChangeRate decWire
}

type createValidatorWire struct {
	ValidatorAddress   common.Address
	Description        descriptionWire
	CommissionRates    commissionWire
	MinSelfDelegation  *big.Int
	MaxTotalDelegation *big.Int
	SlotPubKeys        []BLSPublicKey
	SlotKeySigs        []BLSSignature
	Amount             *big.Int
}

type editValidatorWire struct {
	ValidatorAddress   common.Address
	Description        descriptionWire
	CommissionRate     *decWire `rlp:"nil"`
	MinSelfDelegation  *big.Int
	MaxTotalDelegation *big.Int
	SlotKeyToRemove    *BLSPublicKey `rlp:"nil"`
	SlotKeyToAdd       *BLSPublicKey `rlp:"nil"`
	SlotKeyToAddSig    *BLSSignature `rlp:"nil"`
	EPOSStatus         uint8
}

type delegateWire struct {
	DelegatorAddress common.Address
	ValidatorAddress common.Address
	Amount           *big.Int
}

type collectRewardsWire struct {
	DelegatorAddress common.Address
}

// EditValidator 的 EPOS 状态字段
const (
	eposUnchanged uint8 = 0
	eposActive    uint8 = 1
	eposInactive  uint8 = 2
)

// EncodeMessage 按指令对应的字段顺序对消息进行 RLP 编码
func EncodeMessage(msg Message) ([]byte, error) {
	var wire interface{}

	switch m := msg.(type) {
	case *CreateValidator:
		rates, err := encodeCommission(m.CommissionRates)
		if err != nil {
			return nil, err
		}
		wire = &createValidatorWire{
			ValidatorAddress:   m.ValidatorAddress,
			Description:        descriptionWire(m.Description),
			CommissionRates:    rates,
			MinSelfDelegation:  orZero(m.MinSelfDelegation),
			MaxTotalDelegation: orZero(m.MaxTotalDelegation),
			SlotPubKeys:        m.SlotPubKeys,
			SlotKeySigs:        m.SlotKeySigs,
			Amount:             orZero(m.Amount),
		}
	case *EditValidator:
		w := &editValidatorWire{
			ValidatorAddress:   m.ValidatorAddress,
			Description:        descriptionWire(m.Description),
			MinSelfDelegation:  orZero(m.MinSelfDelegation),
			MaxTotalDelegation: orZero(m.MaxTotalDelegation),
			SlotKeyToRemove:    m.SlotKeyToRemove,
			SlotKeyToAdd:       m.SlotKeyToAdd,
			SlotKeyToAddSig:    m.SlotKeyToAddSig,
			EPOSStatus:         eposUnchanged,
		}
		if m.CommissionRate != nil {
			rate, err := numeric.ToFixed(*m.CommissionRate)
			if err != nil {
				return nil, err
			}
			w.CommissionRate = &decWire{Value: rate}
		}
		if m.Active != nil {
			w.EPOSStatus = eposInactive
			if *m.Active {
				w.EPOSStatus = eposActive
			}
		}
		wire = w
	case *Delegate:
		wire = &delegateWire{m.DelegatorAddress, m.ValidatorAddress, orZero(m.Amount)}
	case *Undelegate:
		wire = &delegateWire{m.DelegatorAddress, m.ValidatorAddress, orZero(m.Amount)}
	case *CollectRewards:
		wire = &collectRewardsWire{m.DelegatorAddress}
	default:
		return nil, fmt.Errorf("不支持的质押消息类型 %T", msg)
	}

	return rlp.EncodeToBytes(wire)
}

// DecodeMessage EncodeMessage 的逆运算
func DecodeMessage(d Directive, data []byte) (Message, error) {
	switch d {
	case DirectiveCreateValidator:
		var w createValidatorWire
		if err := rlp.DecodeBytes(data, &w); err != nil {
			return nil, fmt.Errorf("解码 CreateValidator 失败: %w", err)
		}
		msg := &CreateValidator{
			ValidatorAddress:   w.ValidatorAddress,
			Description:        Description(w.Description),
			CommissionRates:    decodeCommission(w.CommissionRates),
			MinSelfDelegation:  w.MinSelfDelegation,
			MaxTotalDelegation: w.MaxTotalDelegation,
			SlotPubKeys:        w.SlotPubKeys,
			Amount:             w.Amount,
		}
		if len(w.SlotKeySigs) > 0 {
			msg.SlotKeySigs = w.SlotKeySigs
		}
		if len(msg.SlotPubKeys) == 0 {
			msg.SlotPubKeys = nil
		}
		return msg, nil

	case DirectiveEditValidator:
		var w editValidatorWire
		if err := rlp.DecodeBytes(data, &w); err != nil {
			return nil, fmt.Errorf("解码 EditValidator 失败: %w", err)
		}
		msg := &EditValidator{
			ValidatorAddress:   w.ValidatorAddress,
			Description:        Description(w.Description),
			MinSelfDelegation:  nilIfZero(w.MinSelfDelegation),
			MaxTotalDelegation: nilIfZero(w.MaxTotalDelegation),
			SlotKeyToRemove:    w.SlotKeyToRemove,
			SlotKeyToAdd:       w.SlotKeyToAdd,
			SlotKeyToAddSig:    w.SlotKeyToAddSig,
		}
		if w.CommissionRate != nil {
			rate := numeric.FromFixed(w.CommissionRate.Value)
			msg.CommissionRate = &rate
		}
		switch w.EPOSStatus {
		case eposUnchanged:
		case eposActive, eposInactive:
			active := w.EPOSStatus == eposActive
			msg.Active = &active
		default:
			return nil, fmt.Errorf("未知的 EPOS 状态 %d", w.EPOSStatus)
		}
		return msg, nil

	case DirectiveDelegate, DirectiveUndelegate:
		var w delegateWire
		if err := rlp.DecodeBytes(data, &w); err != nil {
			return nil, fmt.Errorf("解码 %s 失败: %w", d, err)
		}
		if d == DirectiveDelegate {
			return &Delegate{w.DelegatorAddress, w.ValidatorAddress, w.Amount}, nil
		}
		return &Undelegate{w.DelegatorAddress, w.ValidatorAddress, w.Amount}, nil

	case DirectiveCollectRewards:
		var w collectRewardsWire
		if err := rlp.DecodeBytes(data, &w); err != nil {
			return nil, fmt.Errorf("解码 CollectRewards 失败: %w", err)
		}
		return &CollectRewards{w.DelegatorAddress}, nil
	}

	return nil, fmt.Errorf("未知的质押指令 %d", uint8(d))
}

func encodeCommission(c CommissionRate) (commissionWire, error) {
	var out commissionWire
	for _, f := range []struct {
		src decimal.Decimal
		dst *decWire
	}{
		{c.Rate, &out.Rate},
		{c.MaxRate, &out.MaxRate},
		{c.MaxChangeRate, &out.MaxChangeRate},
	} {
		v, err := numeric.ToFixed(f.src)
		if err != nil {
			return commissionWire{}, err
		}
		f.dst.Value = v
	}
	return out, nil
}

func decodeCommission(w commissionWire) CommissionRate {
	return CommissionRate{
		Rate:          numeric.FromFixed(w.Rate.Value),
		MaxRate:       numeric.FromFixed(w.MaxRate.Value),
		MaxChangeRate: numeric.FromFixed(w.MaxChangeRate.Value),
	}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// nilIfZero EditValidator 中 0 表示不修改
func nilIfZero(v *big.Int) *big.Int {
	if v == nil || v.Sign() == 0 {
		return nil
	}
	return v
}
