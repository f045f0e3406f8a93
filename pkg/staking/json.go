package staking

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/numeric"
)

type createValidatorJSON struct {
	ValidatorAddress   address.Text   `json:"validatorAddress"`
	Description        Description    `json:"description"`
	CommissionRates    CommissionRate `json:"commissionRates"`
	MinSelfDelegation  *numeric.Big   `json:"minSelfDelegation"`
	MaxTotalDelegation *numeric.Big   `json:"maxTotalDelegation"`
	SlotPubKeys        []BLSPublicKey `json:"slotPubKeys"`
	SlotKeySigs        []BLSSignature `json:"slotKeySigs,omitempty"`
	Amount             *numeric.Big   `json:"amount"`
}

func (m CreateValidator) MarshalJSON() ([]byte, error) {
	return json.Marshal(createValidatorJSON{
		ValidatorAddress:   address.Text(m.ValidatorAddress),
		Description:        m.Description,
		CommissionRates:    m.CommissionRates,
		MinSelfDelegation:  numeric.NewBig(m.MinSelfDelegation),
		MaxTotalDelegation: numeric.NewBig(m.MaxTotalDelegation),
		SlotPubKeys:        m.SlotPubKeys,
		SlotKeySigs:        m.SlotKeySigs,
		Amount:             numeric.NewBig(m.Amount),
	})
}

func (m *CreateValidator) UnmarshalJSON(data []byte) error {
	var aux createValidatorJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = CreateValidator{
		ValidatorAddress:   common.Address(aux.ValidatorAddress),
		Description:        aux.Description,
		CommissionRates:    aux.CommissionRates,
		MinSelfDelegation:  aux.MinSelfDelegation.Int(),
		MaxTotalDelegation: aux.MaxTotalDelegation.Int(),
		SlotPubKeys:        aux.SlotPubKeys,
		SlotKeySigs:        aux.SlotKeySigs,
		Amount:             aux.Amount.Int(),
	}
	return nil
}

type editValidatorJSON struct {
	ValidatorAddress   address.Text     `json:"validatorAddress"`
	Description        *Description     `json:"description,omitempty"`
	CommissionRate     *decimal.Decimal `json:"commissionRate,omitempty"`
	MinSelfDelegation  *numeric.Big     `json:"minSelfDelegation,omitempty"`
	MaxTotalDelegation *numeric.Big     `json:"maxTotalDelegation,omitempty"`
	SlotKeyToRemove    *BLSPublicKey    `json:"slotKeyToRemove,omitempty"`
	SlotKeyToAdd       *BLSPublicKey    `json:"slotKeyToAdd,omitempty"`
	SlotKeyToAddSig    *BLSSignature    `json:"slotKeySig,omitempty"`
	Active             *bool            `json:"active,omitempty"`
}

func (m EditValidator) MarshalJSON() ([]byte, error) {
	aux := editValidatorJSON{
		ValidatorAddress:   address.Text(m.ValidatorAddress),
		CommissionRate:     m.CommissionRate,
		MinSelfDelegation:  numeric.NewBig(m.MinSelfDelegation),
		MaxTotalDelegation: numeric.NewBig(m.MaxTotalDelegation),
		SlotKeyToRemove:    m.SlotKeyToRemove,
		SlotKeyToAdd:       m.SlotKeyToAdd,
		SlotKeyToAddSig:    m.SlotKeyToAddSig,
		Active:             m.Active,
	}
	if !m.Description.IsEmpty() {
		desc := m.Description
		aux.Description = &desc
	}
	return json.Marshal(aux)
}

func (m *EditValidator) UnmarshalJSON(data []byte) error {
	var aux editValidatorJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = EditValidator{
		ValidatorAddress:   common.Address(aux.ValidatorAddress),
		CommissionRate:     aux.CommissionRate,
		MinSelfDelegation:  aux.MinSelfDelegation.Int(),
		MaxTotalDelegation: aux.MaxTotalDelegation.Int(),
		SlotKeyToRemove:    aux.SlotKeyToRemove,
		SlotKeyToAdd:       aux.SlotKeyToAdd,
		SlotKeyToAddSig:    aux.SlotKeyToAddSig,
		Active:             aux.Active,
	}
	if aux.Description != nil {
		m.Description = *aux.Description
	}
	return nil
}

type delegateJSON struct {
	DelegatorAddress address.Text `json:"delegatorAddress"`
	ValidatorAddress address.Text `json:"validatorAddress"`
	Amount           *numeric.Big `json:"amount"`
}

func (m Delegate) MarshalJSON() ([]byte, error) {
	return json.Marshal(delegateJSON{address.Text(m.DelegatorAddress), address.Text(m.ValidatorAddress), numeric.NewBig(m.Amount)})
}

func (m *Delegate) UnmarshalJSON(data []byte) error {
	var aux delegateJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = Delegate{common.Address(aux.DelegatorAddress), common.Address(aux.ValidatorAddress), aux.Amount.Int()}
	return nil
}

func (m Undelegate) MarshalJSON() ([]byte, error) {
	return json.Marshal(delegateJSON{address.Text(m.DelegatorAddress), address.Text(m.ValidatorAddress), numeric.NewBig(m.Amount)})
}

func (m *Undelegate) UnmarshalJSON(data []byte) error {
	var aux delegateJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = Undelegate{common.Address(aux.DelegatorAddress), common.Address(aux.ValidatorAddress), aux.Amount.Int()}
	return nil
}

type collectRewardsJSON struct {
	DelegatorAddress address.Text `json:"delegatorAddress"`
}

func (m CollectRewards) MarshalJSON() ([]byte, error) {
	return json.Marshal(collectRewardsJSON{address.Text(m.DelegatorAddress)})
}

func (m *CollectRewards) UnmarshalJSON(data []byte) error {
	var aux collectRewardsJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.DelegatorAddress = common.Address(aux.DelegatorAddress)
	return nil
}

// DecodeMessageJSON 根据指令把 JSON 解码为对应的消息类型
func DecodeMessageJSON(d Directive, data []byte) (Message, error) {
	msg, err := NewMessage(d)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("解析 %s 消息失败: %w", d, err)
	}
	return msg, nil
}
