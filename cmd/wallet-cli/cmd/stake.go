package cmd

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/numeric"
	"hmy-wallet/pkg/staking"
	"hmy-wallet/pkg/wallet/types"
)

// messageBuilder 以钱包地址作为验证人 / 委托人构造质押消息
type messageBuilder func(cmd *cobra.Command, self common.Address) (staking.Message, error)

var stakeOpts txOptions

var stakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "发送质押交易",
}

func stakingCommand(use, short string, build messageBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, closeFn, err := openWallet(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			req, err := stakingRequest(cmd, w.Address(), build)
			if err != nil {
				return err
			}
			resp, err := w.SendStakingTransaction(ctx, req)
			if err != nil {
				return err
			}
			return waitAndPrint(ctx, resp, resp.Wait, stakeOpts.waitFor(cmd))
		},
	}
}

func stakingRequest(cmd *cobra.Command, self common.Address, build messageBuilder) (*types.StakingTransactionRequest, error) {
	msg, err := build(cmd, self)
	if err != nil {
		return nil, err
	}
	req := types.NewStakingTransactionRequest(msg)
	if req.Nonce, req.GasPrice, req.GasLimit, err = stakeOpts.values(); err != nil {
		return nil, err
	}
	return req, nil
}

type descriptionFlags struct {
	name, identity, website, securityContact, details string
}

func (d *descriptionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&d.name, "name", "", "验证人名称")
	fs.StringVar(&d.identity, "identity", "", "身份标识")
	fs.StringVar(&d.website, "website", "", "网站")
	fs.StringVar(&d.securityContact, "security-contact", "", "安全联系人")
	fs.StringVar(&d.details, "details", "", "详细说明")
}

func (d *descriptionFlags) description() staking.Description {
	return staking.Description{
		Name:            d.name,
		Identity:        d.identity,
		Website:         d.website,
		SecurityContact: d.securityContact,
		Details:         d.details,
	}
}

type createValidatorFlags struct {
	descriptionFlags
	rate, maxRate, maxChangeRate string
	minSelf, maxTotal, amount    string
	blsKeys, blsSigs             []string
}

type editValidatorFlags struct {
	descriptionFlags
	rate              string
	minSelf, maxTotal string
	removeKey, addKey string
	addKeySig         string
	active            bool
}

type delegationFlags struct {
	validator string
	amount    string
}

var (
	createOpts     createValidatorFlags
	editOpts       editValidatorFlags
	delegateOpts   delegationFlags
	undelegateOpts delegationFlags
)

func (f *createValidatorFlags) build(_ *cobra.Command, self common.Address) (staking.Message, error) {
	msg := &staking.CreateValidator{
		ValidatorAddress: self,
		Description:      f.description(),
	}
	var err error
	if msg.CommissionRates.Rate, err = parseRate("commissionRates.rate", f.rate); err != nil {
		return nil, err
	}
	if msg.CommissionRates.MaxRate, err = parseRate("commissionRates.maxRate", f.maxRate); err != nil {
		return nil, err
	}
	if msg.CommissionRates.MaxChangeRate, err = parseRate("commissionRates.maxChangeRate", f.maxChangeRate); err != nil {
		return nil, err
	}
	if msg.MinSelfDelegation, err = parseAmount("minSelfDelegation", f.minSelf); err != nil {
		return nil, err
	}
	if msg.MaxTotalDelegation, err = parseAmount("maxTotalDelegation", f.maxTotal); err != nil {
		return nil, err
	}
	if msg.Amount, err = parseAmount("amount", f.amount); err != nil {
		return nil, err
	}
	for _, s := range f.blsKeys {
		key, err := staking.ParseBLSPublicKey(s)
		if err != nil {
			return nil, errno.New(errno.ErrInvalidTransaction, "slotPubKeys", "%v", err)
		}
		msg.SlotPubKeys = append(msg.SlotPubKeys, key)
	}
	for _, s := range f.blsSigs {
		sig, err := staking.ParseBLSSignature(s)
		if err != nil {
			return nil, errno.New(errno.ErrInvalidTransaction, "slotKeySigs", "%v", err)
		}
		msg.SlotKeySigs = append(msg.SlotKeySigs, sig)
	}
	return msg, nil
}

// build 未指定的参数保持链上原值
func (f *editValidatorFlags) build(cmd *cobra.Command, self common.Address) (staking.Message, error) {
	msg := &staking.EditValidator{
		ValidatorAddress: self,
		Description:      f.description(),
	}
	if f.rate != "" {
		rate, err := parseRate("commissionRate", f.rate)
		if err != nil {
			return nil, err
		}
		msg.CommissionRate = &rate
	}
	var err error
	if f.minSelf != "" {
		if msg.MinSelfDelegation, err = parseAmount("minSelfDelegation", f.minSelf); err != nil {
			return nil, err
		}
	}
	if f.maxTotal != "" {
		if msg.MaxTotalDelegation, err = parseAmount("maxTotalDelegation", f.maxTotal); err != nil {
			return nil, err
		}
	}
	if f.removeKey != "" {
		key, err := staking.ParseBLSPublicKey(f.removeKey)
		if err != nil {
			return nil, errno.New(errno.ErrInvalidTransaction, "slotKeyToRemove", "%v", err)
		}
		msg.SlotKeyToRemove = &key
	}
	if f.addKey != "" {
		key, err := staking.ParseBLSPublicKey(f.addKey)
		if err != nil {
			return nil, errno.New(errno.ErrInvalidTransaction, "slotKeyToAdd", "%v", err)
		}
		msg.SlotKeyToAdd = &key
	}
	if f.addKeySig != "" {
		sig, err := staking.ParseBLSSignature(f.addKeySig)
		if err != nil {
			return nil, errno.New(errno.ErrInvalidTransaction, "slotKeyToAddSig", "%v", err)
		}
		msg.SlotKeyToAddSig = &sig
	}
	if cmd != nil && cmd.Flags().Changed("active") {
		active := f.active
		msg.Active = &active
	}
	return msg, nil
}

func (f *delegationFlags) delegate(_ *cobra.Command, self common.Address) (staking.Message, error) {
	validator, amount, err := f.parse()
	if err != nil {
		return nil, err
	}
	return &staking.Delegate{DelegatorAddress: self, ValidatorAddress: validator, Amount: amount}, nil
}

func (f *delegationFlags) undelegate(_ *cobra.Command, self common.Address) (staking.Message, error) {
	validator, amount, err := f.parse()
	if err != nil {
		return nil, err
	}
	return &staking.Undelegate{DelegatorAddress: self, ValidatorAddress: validator, Amount: amount}, nil
}

func (f *delegationFlags) parse() (common.Address, *big.Int, error) {
	validator, err := parseAddressFlag("validatorAddress", f.validator)
	if err != nil {
		return common.Address{}, nil, err
	}
	amount, err := parseAmount("amount", f.amount)
	if err != nil {
		return common.Address{}, nil, err
	}
	return validator, amount, nil
}

func collectRewards(_ *cobra.Command, self common.Address) (staking.Message, error) {
	return &staking.CollectRewards{DelegatorAddress: self}, nil
}

// parseAmount 金额以 ONE 为单位输入
func parseAmount(field, s string) (*big.Int, error) {
	v, err := numeric.ParseUnits(s)
	if err != nil {
		return nil, errno.New(errno.ErrInvalidTransaction, field, "%v", err)
	}
	return v, nil
}

func parseRate(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errno.New(errno.ErrInvalidTransaction, field, "%v", err)
	}
	return d, nil
}

func init() {
	rootCmd.AddCommand(stakeCmd)
	// gas / nonce 参数对所有子命令生效
	stakeOpts.register(stakeCmd.PersistentFlags())

	createCmd := stakingCommand("create-validator", "创建验证人", createOpts.build)
	createOpts.register(createCmd.Flags())
	createCmd.Flags().StringVar(&createOpts.rate, "rate", "", "佣金率, 例如 0.1")
	createCmd.Flags().StringVar(&createOpts.maxRate, "max-rate", "", "最高佣金率")
	createCmd.Flags().StringVar(&createOpts.maxChangeRate, "max-change-rate", "", "每个 epoch 最大变动")
	createCmd.Flags().StringVar(&createOpts.minSelf, "min-self-delegation", "", "最低自委托 (ONE)")
	createCmd.Flags().StringVar(&createOpts.maxTotal, "max-total-delegation", "", "最高委托总额 (ONE)")
	createCmd.Flags().StringVar(&createOpts.amount, "amount", "", "初始自委托 (ONE)")
	createCmd.Flags().StringSliceVar(&createOpts.blsKeys, "bls-key", nil, "BLS 公钥 (可重复)")
	createCmd.Flags().StringSliceVar(&createOpts.blsSigs, "bls-sig", nil, "BLS 公钥签名, 与 --bls-key 一一对应")
	for _, name := range []string{"name", "rate", "max-rate", "max-change-rate", "min-self-delegation", "max-total-delegation", "amount", "bls-key"} {
		_ = createCmd.MarkFlagRequired(name)
	}

	editCmd := stakingCommand("edit-validator", "修改验证人, 未指定的参数保持不变", editOpts.build)
	editOpts.register(editCmd.Flags())
	editCmd.Flags().StringVar(&editOpts.rate, "rate", "", "新佣金率")
	editCmd.Flags().StringVar(&editOpts.minSelf, "min-self-delegation", "", "最低自委托 (ONE)")
	editCmd.Flags().StringVar(&editOpts.maxTotal, "max-total-delegation", "", "最高委托总额 (ONE)")
	editCmd.Flags().StringVar(&editOpts.removeKey, "remove-key", "", "移除的 BLS 公钥")
	editCmd.Flags().StringVar(&editOpts.addKey, "add-key", "", "新增的 BLS 公钥")
	editCmd.Flags().StringVar(&editOpts.addKeySig, "add-key-sig", "", "新增公钥的 BLS 签名")
	editCmd.Flags().BoolVar(&editOpts.active, "active", false, "设置验证人是否参与选举")

	delegateCmd := stakingCommand("delegate", "委托", delegateOpts.delegate)
	delegateCmd.Flags().StringVar(&delegateOpts.validator, "validator", "", "验证人地址")
	delegateCmd.Flags().StringVar(&delegateOpts.amount, "amount", "", "金额 (ONE)")
	_ = delegateCmd.MarkFlagRequired("validator")
	_ = delegateCmd.MarkFlagRequired("amount")

	undelegateCmd := stakingCommand("undelegate", "取消委托", undelegateOpts.undelegate)
	undelegateCmd.Flags().StringVar(&undelegateOpts.validator, "validator", "", "验证人地址")
	undelegateCmd.Flags().StringVar(&undelegateOpts.amount, "amount", "", "金额 (ONE)")
	_ = undelegateCmd.MarkFlagRequired("validator")
	_ = undelegateCmd.MarkFlagRequired("amount")

	collectCmd := stakingCommand("collect-rewards", "领取委托奖励", collectRewards)

	stakeCmd.AddCommand(createCmd, editCmd, delegateCmd, undelegateCmd, collectCmd)
}
