package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"cita-client/pkg/logger"
	"cita-client/pkg/monitor"
	"cita-client/pkg/rpc"
)

// NodeProbe 探测需要的节点能力
type NodeProbe interface {
	BlockNumber(ctx context.Context) (uint64, error)
	PeerCount(ctx context.Context) (uint64, error)
	GetMetaData(ctx context.Context, height string) (*rpc.MetaData, error)
}

// NodeWatcher 定时探测节点，结果写入 prometheus 指标。
// 顺带刷新链元数据缓存，签名请求不用等 getMetaData
type NodeWatcher struct {
	cron    *cron.Cron
	node    NodeProbe
	timeout time.Duration
	log     *zap.Logger
}

func NewNodeWatcher(node NodeProbe, interval, timeout time.Duration) *NodeWatcher {
	w := &NodeWatcher{
		cron:    cron.New(),
		node:    node,
		timeout: timeout,
		log:     logger.Named("watcher"),
	}
	// 上一次探测未结束时跳过本次
	w.cron.Schedule(cron.Every(interval), cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(w.Probe)))
	return w
}

func (w *NodeWatcher) Start() {
	w.cron.Start()
	w.log.Info("node watcher started")
}

// Stop 等待正在执行的探测结束
func (w *NodeWatcher) Stop() {
	<-w.cron.Stop().Done()
	w.log.Info("node watcher stopped")
}

// Probe 执行一次探测
func (w *NodeWatcher) Probe() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	height, err := w.node.BlockNumber(ctx)
	if err != nil {
		monitor.NodeUp.Set(0)
		w.log.Warn("node probe failed", zap.Error(err))
		return
	}
	monitor.NodeUp.Set(1)
	monitor.NodeBlockHeight.Set(float64(height))

	if peers, err := w.node.PeerCount(ctx); err == nil {
		monitor.NodePeerCount.Set(float64(peers))
	} else {
		w.log.Debug("peer count unavailable", zap.Error(err))
	}
	if _, err := w.node.GetMetaData(ctx, rpc.HeightLatest); err != nil {
		w.log.Debug("metadata refresh failed", zap.Error(err))
	}
}
