package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"cita-client/pkg/monitor"
	"cita-client/pkg/rpc"
)

type probeNode struct {
	height   uint64
	peers    uint64
	err      error
	metaHits int
}

func (p *probeNode) BlockNumber(context.Context) (uint64, error) { return p.height, p.err }

func (p *probeNode) PeerCount(context.Context) (uint64, error) { return p.peers, nil }

func (p *probeNode) GetMetaData(context.Context, string) (*rpc.MetaData, error) {
	p.metaHits++
	return &rpc.MetaData{ChainID: 1}, nil
}

func TestNodeWatcherProbe(t *testing.T) {
	node := &probeNode{height: 1234, peers: 3}
	w := NewNodeWatcher(node, time.Hour, time.Second)

	w.Probe()
	assert.Equal(t, float64(1), testutil.ToFloat64(monitor.NodeUp))
	assert.Equal(t, float64(1234), testutil.ToFloat64(monitor.NodeBlockHeight))
	assert.Equal(t, float64(3), testutil.ToFloat64(monitor.NodePeerCount))
	assert.Equal(t, 1, node.metaHits)

	node.err = errors.New("connection refused")
	w.Probe()
	assert.Equal(t, float64(0), testutil.ToFloat64(monitor.NodeUp))
	// 失败时保留上一次的块高
	assert.Equal(t, float64(1234), testutil.ToFloat64(monitor.NodeBlockHeight))
	assert.Equal(t, 1, node.metaHits)
}

func TestNodeWatcherStartStop(t *testing.T) {
	w := NewNodeWatcher(&probeNode{height: 1}, time.Hour, time.Second)
	assert.NotPanics(t, func() {
		w.Start()
		w.Stop()
	})
}
