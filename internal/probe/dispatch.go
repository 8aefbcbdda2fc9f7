package probe

import (
	"context"
	"fmt"

	"github.com/hamed0406/netmonitor/internal/domain"
)

// Dispatcher routes a request to the prober registered for its method.
type Dispatcher struct {
	TCP  Prober
	Ping Prober
}

func NewDispatcher(tcp, ping Prober) *Dispatcher {
	return &Dispatcher{TCP: tcp, Ping: ping}
}

func (d *Dispatcher) Probe(ctx context.Context, req Request) Result {
	var p Prober
	switch req.Method {
	case domain.MethodTCP, "":
		p = d.TCP
	case domain.MethodPing:
		p = d.Ping
	}
	if p == nil {
		return Result{
			Method: req.Method,
			Reason: domain.ReasonOther,
			Err:    fmt.Errorf("no prober for method %q", req.Method),
		}
	}
	return p.Probe(ctx, req)
}
