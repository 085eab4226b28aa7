package cmd

import (
	"context"

	"cita-client/internal/service"
	"cita-client/pkg/cache"
	"cita-client/pkg/keypair"
	"cita-client/pkg/rpc"
	"cita-client/pkg/txbuilder"
)

func (o *rootOptions) dial(ctx context.Context) (*rpc.Client, error) {
	ttl := o.cfg.Node.MetaTTL
	return rpc.Dial(ctx, o.cfg.Node.URL,
		rpc.WithTimeout(o.cfg.Node.Timeout),
		rpc.WithMetaCache(cache.NewMemoryCache(ttl, 2*ttl), ttl),
	)
}

// txService offline 时不连接节点，截止块高与 chain id 必须显式给出
func (o *rootOptions) txService(ctx context.Context, kp *keypair.KeyPair, offline bool) (*service.TxService, func(), error) {
	defaults, err := service.DefaultsFromConfig(o.cfg.Tx)
	if err != nil {
		return nil, nil, err
	}

	var (
		node    service.Node
		heights txbuilder.HeightSource
		closeFn = func() {}
	)
	if !offline {
		client, err := o.dial(ctx)
		if err != nil {
			return nil, nil, err
		}
		node, heights, closeFn = client, client, client.Close
	}

	builder, err := txbuilder.New(heights, txbuilder.WithValidWindow(o.cfg.Tx.ValidWindow))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return service.NewTxService(node, builder, kp, defaults), closeFn, nil
}
