package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 交易流水线各阶段，用作 cita_tx_build_failures_total 的 stage 标签
const (
	StageOptions   = "options"
	StageHeight    = "height"
	StageEncode    = "encode"
	StageSign      = "sign"
	StageVerify    = "verify"
	StageSerialize = "serialize"
)

var (
	TxBuiltTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cita_tx_built_total",
		Help: "The total number of signed transactions produced",
	}, []string{"crypto"})

	TxBuildFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cita_tx_build_failures_total",
		Help: "Transaction builds aborted, by pipeline stage",
	}, []string{"stage"})

	TxSignDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cita_tx_sign_duration_seconds",
		Help:    "Time spent hashing and signing a transaction",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	RPCRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cita_rpc_request_duration_seconds",
		Help:    "Duration of JSON-RPC requests to the node",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	RPCErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cita_rpc_errors_total",
		Help: "JSON-RPC failures by method and kind (transport / node)",
	}, []string{"method", "kind"})

	// 节点探测 (signer-server 定时任务)
	NodeUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cita_node_up",
		Help: "1 if the last node probe succeeded",
	})

	NodeBlockHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cita_node_block_height",
		Help: "Latest block height reported by the node",
	})

	NodePeerCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cita_node_peer_count",
		Help: "Peers connected to the node",
	})
)

func pipelineCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		TxBuiltTotal,
		TxBuildFailuresTotal,
		TxSignDuration,
		RPCRequestDuration,
		RPCErrorsTotal,
		NodeUp,
		NodeBlockHeight,
		NodePeerCount,
	}
}
