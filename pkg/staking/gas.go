package staking

const (
	TxGas                  uint64 = 21000
	TxGasValidatorCreation uint64 = 5000000
	TxDataZeroGas          uint64 = 4
	TxDataNonZeroGas       uint64 = 16
)

// IntrinsicGas 质押交易的固有 gas: 基础费用 + 消息编码后的 calldata 费用
func IntrinsicGas(msg Message) (uint64, error) {
	data, err := EncodeMessage(msg)
	if err != nil {
		return 0, err
	}

	gas := TxGas
	if msg.Directive() == DirectiveCreateValidator {
		gas = TxGasValidatorCreation
	}

	for _, b := range data {
		if b == 0 {
			gas += TxDataZeroGas
		} else {
			gas += TxDataNonZeroGas
		}
	}
	return gas, nil
}
