// Package systems reads TAPIS execution and storage systems.
package systems

import (
	"context"
	"fmt"

	apisystems "github.com/designsafe-ci/dapi/api-types/systems"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/tapis"
)

type Systems struct {
	client tapis.Client
}

func New(client tapis.Client) *Systems {
	return &Systems{client: client}
}

func (s *Systems) Get(ctx context.Context, systemId string) (apisystems.System, error) {
	sys, err := s.client.GetSystem(ctx, systemId)
	if err != nil {
		if tapis.IsNotFound(err) {
			return apisystems.System{}, derr.Wrap(derr.ErrSystemInfo, err, "system '%s' is not found", systemId)
		}
		return apisystems.System{}, derr.Wrap(derr.ErrSystemInfo, err, "failed to get system '%s'", systemId)
	}
	return sys, nil
}

// Queues returns batch logical queues of the system.
//
// A system without queues is an ErrSystemInfo.
func (s *Systems) Queues(ctx context.Context, systemId string) ([]apisystems.LogicalQueue, error) {
	sys, err := s.Get(ctx, systemId)
	if err != nil {
		return nil, err
	}
	if len(sys.BatchLogicalQueues) == 0 {
		return nil, fmt.Errorf("%w: system '%s' has no batch logical queues", derr.ErrSystemInfo, systemId)
	}
	return sys.BatchLogicalQueues, nil
}
