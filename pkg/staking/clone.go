package staking

import "math/big"

// Clone 深拷贝消息, 返回值与原值不共享任何可变状态
func Clone(msg Message) Message {
	switch m := msg.(type) {
	case *CreateValidator:
		cp := *m
		cp.MinSelfDelegation = cloneBig(m.MinSelfDelegation)
		cp.MaxTotalDelegation = cloneBig(m.MaxTotalDelegation)
		cp.Amount = cloneBig(m.Amount)
		if m.SlotPubKeys != nil {
			cp.SlotPubKeys = append([]BLSPublicKey{}, m.SlotPubKeys...)
		}
		if m.SlotKeySigs != nil {
			cp.SlotKeySigs = append([]BLSSignature{}, m.SlotKeySigs...)
		}
		return &cp
	case *EditValidator:
		cp := *m
		if m.CommissionRate != nil {
			rate := *m.CommissionRate
			cp.CommissionRate = &rate
		}
		cp.MinSelfDelegation = cloneBig(m.MinSelfDelegation)
		cp.MaxTotalDelegation = cloneBig(m.MaxTotalDelegation)
		if m.SlotKeyToRemove != nil {
			k := *m.SlotKeyToRemove
			cp.SlotKeyToRemove = &k
		}
		if m.SlotKeyToAdd != nil {
			k := *m.SlotKeyToAdd
			cp.SlotKeyToAdd = &k
		}
		if m.SlotKeyToAddSig != nil {
			s := *m.SlotKeyToAddSig
			cp.SlotKeyToAddSig = &s
		}
		if m.Active != nil {
			a := *m.Active
			cp.Active = &a
		}
		return &cp
	case *Delegate:
		cp := *m
		cp.Amount = cloneBig(m.Amount)
		return &cp
	case *Undelegate:
		cp := *m
		cp.Amount = cloneBig(m.Amount)
		return &cp
	case *CollectRewards:
		cp := *m
		return &cp
	}
	return msg
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
