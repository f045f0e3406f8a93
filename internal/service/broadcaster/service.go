// Package broadcaster 消费广播请求, 串行化同一账户的发送, 等待确认后发布结果
package broadcaster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"hmy-wallet/internal/event"
	"hmy-wallet/internal/model"
	"hmy-wallet/internal/service/mq"
	"hmy-wallet/pkg/address"
	"hmy-wallet/pkg/crypto_util"
	"hmy-wallet/pkg/errno"
	"hmy-wallet/pkg/monitor"
	"hmy-wallet/pkg/utils/lock"
	"hmy-wallet/pkg/wallet"
	"hmy-wallet/pkg/wallet/types"
)

// Store 广播记录存储, 由 model.BroadcastRepository 实现
type Store interface {
	Create(ctx context.Context, b *model.Broadcast) (bool, error)
	Update(ctx context.Context, id uint64, fields map[string]interface{}) error
	FindByFingerprint(ctx context.Context, fingerprint string) (*model.Broadcast, error)
}

type Config struct {
	ResultTopic   string
	Confirmations uint64
	WaitTimeout   time.Duration
	LockTTL       time.Duration
	LockRetry     time.Duration
}

// Service 持有私钥, 是系统中最敏感的组件
type Service struct {
	wallet   *wallet.Wallet
	store    Store
	locker   lock.DistributedLock
	producer mq.Producer
	cfg      Config
	log      *zap.Logger
}

func New(w *wallet.Wallet, store Store, locker lock.DistributedLock, producer mq.Producer, cfg Config, log *zap.Logger) *Service {
	if cfg.ResultTopic == "" {
		cfg.ResultTopic = event.TopicTxResults
	}
	if cfg.LockTTL == 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if cfg.LockRetry == 0 {
		cfg.LockRetry = 100 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		wallet:   w,
		store:    store,
		locker:   locker,
		producer: producer,
		cfg:      cfg,
		log:      log.With(zap.String("sender", address.ToBech32(w.Address()))),
	}
}

// Run 阻塞消费请求主题直到 ctx 取消
func (s *Service) Run(ctx context.Context, consumer mq.Consumer, topic string) error {
	s.log.Info("开始监听广播请求", zap.String("topic", topic))
	return consumer.Subscribe(ctx, topic, s.Handle)
}

// Handle 处理一条广播请求。
// 业务失败 (请求非法、节点拒绝、等待超时) 以结果消息的形式发布, 返回 nil 让消息被确认;
// 只有存储或 MQ 故障才返回 error, 交给 MQ 重新投递。
// 重新投递的消息按已有记录的状态继续: pending 重新发送, sent 按哈希继续等待, 终态补发结果
func (s *Service) Handle(ctx context.Context, msg *mq.Message) error {
	var req event.TxRequestEvent
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		s.log.Warn("解析广播请求失败", zap.String("id", msg.ID), zap.Error(err))
		countJob(event.StatusInvalid)
		return s.publish(ctx, &event.TxResultEvent{
			Status:    event.StatusInvalid,
			ErrorCode: errno.ErrInvalidTransaction.Code,
			Error:     err.Error(),
		})
	}
	if err := validate(&req); err != nil {
		countJob(event.StatusInvalid)
		return s.publish(ctx, failure(&req, event.StatusInvalid, err))
	}

	record := &model.Broadcast{
		RequestID:   req.RequestID,
		Fingerprint: crypto_util.Fingerprint("wallet-tx-request", msg.Payload),
		Kind:        req.Kind,
		Sender:      address.ToBech32(s.wallet.Address()),
		Status:      model.BroadcastPending,
		Payload:     msg.Payload,
	}
	if req.Staking != nil {
		record.Directive = req.Staking.Type.String()
	}
	created, err := s.store.Create(ctx, record)
	if err != nil {
		return fmt.Errorf("保存广播记录失败: %w", err)
	}
	if !created {
		return s.redeliver(ctx, &req, record.Fingerprint)
	}
	return s.finish(ctx, s.broadcast(ctx, &req, record))
}

// redeliver 同一载荷再次到达: 上一次投递可能在发送前中断, 也可能只是结果没有发布出去
func (s *Service) redeliver(ctx context.Context, req *event.TxRequestEvent, fingerprint string) error {
	existing, err := s.store.FindByFingerprint(ctx, fingerprint)
	if err != nil {
		return fmt.Errorf("查询广播记录失败: %w", err)
	}
	s.log.Info("重复投递的广播请求",
		zap.String("request_id", req.RequestID),
		zap.String("fingerprint", fingerprint),
		zap.String("status", existing.Status),
	)
	switch existing.Status {
	case model.BroadcastPending:
		return s.finish(ctx, s.broadcast(ctx, req, existing))
	case model.BroadcastSent:
		return s.finish(ctx, s.resume(ctx, req, existing))
	default:
		countJob("duplicate")
		return s.publish(ctx, recordResult(existing))
	}
}

func (s *Service) finish(ctx context.Context, result *event.TxResultEvent) error {
	countJob(result.Status)
	return s.publish(ctx, result)
}

func validate(req *event.TxRequestEvent) error {
	switch req.Kind {
	case event.KindTransaction:
		if req.Transaction == nil {
			return errno.New(errno.ErrInvalidTransaction, "transaction", "缺少交易内容")
		}
	case event.KindStaking:
		if req.Staking == nil || req.Staking.Msg == nil {
			return errno.New(errno.ErrInvalidTransaction, "staking", "缺少质押交易内容")
		}
	default:
		return errno.New(errno.ErrInvalidTransaction, "kind", "未知的请求类型 %q", req.Kind)
	}
	return nil
}

type waitFunc func(ctx context.Context, confirmations uint64, opts ...wallet.WaitOption) (*types.Response, *types.TransactionReceipt, error)

func withResponse(resp *types.Response, wait func(context.Context, uint64, ...wallet.WaitOption) (*types.TransactionReceipt, error)) waitFunc {
	return func(ctx context.Context, confirmations uint64, opts ...wallet.WaitOption) (*types.Response, *types.TransactionReceipt, error) {
		receipt, err := wait(ctx, confirmations, opts...)
		return resp, receipt, err
	}
}

// sent 已广播交易的公共视图
type sent struct {
	hash  common.Hash
	nonce uint64
	wait  waitFunc
}

func (s *Service) broadcast(ctx context.Context, req *event.TxRequestEvent, record *model.Broadcast) *event.TxResultEvent {
	tx, current, err := s.send(ctx, req, record)
	if err != nil {
		s.log.Warn("广播失败", zap.String("request_id", req.RequestID), zap.Error(err))
		s.update(ctx, record.ID, failedFields(model.BroadcastFailed, err))
		return failure(req, event.StatusFailed, err)
	}
	if current != nil {
		// 并发的另一次投递已经处理了这条请求
		if current.Status == model.BroadcastSent {
			return s.resume(ctx, req, current)
		}
		return recordResult(current)
	}
	nonce := tx.nonce
	return s.await(ctx, req, record.ID, tx.hash, &nonce, tx.wait)
}

// resume 按记录的哈希继续等待已发送的交易, 不会再次发送
func (s *Service) resume(ctx context.Context, req *event.TxRequestEvent, record *model.Broadcast) *event.TxResultEvent {
	hash := common.HexToHash(record.TxHash)
	isStaking := record.Kind == event.KindStaking
	s.log.Info("恢复等待已发送的交易", zap.String("request_id", req.RequestID), zap.String("hash", record.TxHash))
	return s.await(ctx, req, record.ID, hash, record.Nonce,
		func(ctx context.Context, confirmations uint64, opts ...wallet.WaitOption) (*types.Response, *types.TransactionReceipt, error) {
			return s.wallet.WaitForHash(ctx, hash, isStaking, confirmations, opts...)
		})
}

// await 等待确认并把结果写回记录
func (s *Service) await(ctx context.Context, req *event.TxRequestEvent, id uint64, hash common.Hash, nonce *uint64, wait waitFunc) *event.TxResultEvent {
	confirmations := s.cfg.Confirmations
	if req.Confirmations != nil {
		confirmations = *req.Confirmations
	}
	var opts []wallet.WaitOption
	if s.cfg.WaitTimeout > 0 {
		opts = append(opts, wallet.WithTimeout(s.cfg.WaitTimeout))
	}
	resp, receipt, err := wait(ctx, confirmations, opts...)

	result := &event.TxResultEvent{
		RequestID:     req.RequestID,
		Kind:          req.Kind,
		TxHash:        hash.Hex(),
		Nonce:         nonce,
		BlockNumber:   resp.BlockNumber,
		Confirmations: resp.Confirmations,
	}
	fields := map[string]interface{}{
		"block_number":  resp.BlockNumber,
		"confirmations": resp.Confirmations,
	}

	switch {
	case err == nil:
		result.Status = event.StatusConfirmed
		fields["status"] = model.BroadcastConfirmed
		if receipt == nil {
			// confirmations == 0 且尚未打包, 广播成功即结束
			fields["status"] = model.BroadcastSent
		}
	case errors.Is(err, errno.ErrTransactionDropped):
		result.Status = event.StatusDropped
		fields = merge(fields, failedFields(model.BroadcastDropped, err))
	case errors.Is(err, errno.ErrReceiptTimeout):
		result.Status = event.StatusTimeout
		fields = merge(fields, failedFields(model.BroadcastTimeout, err))
	default:
		result.Status = event.StatusFailed
		fields = merge(fields, failedFields(model.BroadcastFailed, err))
	}
	if err != nil {
		result.ErrorCode, result.Error = errno.Decode(err)
	}
	s.update(ctx, id, fields)

	s.log.Info("广播完成",
		zap.String("request_id", req.RequestID),
		zap.String("hash", result.TxHash),
		zap.String("status", result.Status),
		zap.Uint64("confirmations", result.Confirmations),
	)
	return result
}

// send 在账户锁内完成 populate -> sign -> send 并把记录标记为 sent。
// 锁内先复核记录状态: 已不是 pending 说明另一次投递发送过, 返回该记录而不重复发送
func (s *Service) send(ctx context.Context, req *event.TxRequestEvent, record *model.Broadcast) (*sent, *model.Broadcast, error) {
	key := lock.NonceKey(address.ToBech32(s.wallet.Address()))
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockTTL)
	token, err := lock.AcquireWait(lockCtx, s.locker, key, s.cfg.LockTTL, s.cfg.LockRetry)
	cancel()
	if err != nil {
		return nil, nil, fmt.Errorf("获取账户锁失败: %w", err)
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn("释放账户锁失败", zap.Error(err))
		}
	}()

	current, err := s.store.FindByFingerprint(ctx, record.Fingerprint)
	if err != nil {
		return nil, nil, fmt.Errorf("查询广播记录失败: %w", err)
	}
	if current.Status != model.BroadcastPending {
		return nil, current, nil
	}

	var tx *sent
	switch req.Kind {
	case event.KindStaking:
		resp, err := s.wallet.SendStakingTransaction(ctx, req.Staking)
		if err != nil {
			return nil, nil, err
		}
		tx = &sent{hash: resp.Hash, nonce: resp.Nonce, wait: withResponse(&resp.Response, resp.Wait)}
	default:
		resp, err := s.wallet.SendTransaction(ctx, req.Transaction)
		if err != nil {
			return nil, nil, err
		}
		tx = &sent{hash: resp.Hash, nonce: resp.Nonce, wait: withResponse(&resp.Response, resp.Wait)}
	}

	s.update(ctx, record.ID, map[string]interface{}{
		"status":  model.BroadcastSent,
		"tx_hash": tx.hash.Hex(),
		"nonce":   tx.nonce,
	})
	return tx, nil, nil
}

// update 状态更新失败只记日志, 结果消息仍然发布
func (s *Service) update(ctx context.Context, id uint64, fields map[string]interface{}) {
	if err := s.store.Update(context.WithoutCancel(ctx), id, fields); err != nil {
		s.log.Error("更新广播记录失败", zap.Uint64("id", id), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, result *event.TxResultEvent) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := s.producer.Publish(ctx, s.cfg.ResultTopic, result.RequestID, payload); err != nil {
		return fmt.Errorf("发布广播结果失败: %w", err)
	}
	return nil
}

// recordResult 由终态记录重建结果消息, 终态记录的状态值与结果状态一致
func recordResult(b *model.Broadcast) *event.TxResultEvent {
	return &event.TxResultEvent{
		RequestID:     b.RequestID,
		Kind:          b.Kind,
		Status:        b.Status,
		TxHash:        b.TxHash,
		Nonce:         b.Nonce,
		BlockNumber:   b.BlockNumber,
		Confirmations: b.Confirmations,
		ErrorCode:     b.ErrorCode,
		Error:         b.Error,
	}
}

func failure(req *event.TxRequestEvent, status string, err error) *event.TxResultEvent {
	code, msg := errno.Decode(err)
	return &event.TxResultEvent{
		RequestID: req.RequestID,
		Kind:      req.Kind,
		Status:    status,
		ErrorCode: code,
		Error:     msg,
	}
}

func failedFields(status string, err error) map[string]interface{} {
	code, msg := errno.Decode(err)
	return map[string]interface{}{
		"status":     status,
		"error_code": code,
		"error":      msg,
	}
}

func merge(dst, src map[string]interface{}) map[string]interface{} {
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func countJob(status string) {
	if monitor.Business != nil {
		monitor.Business.BroadcastJobs.WithLabelValues(status).Inc()
	}
}
