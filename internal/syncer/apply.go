package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// applyRemoteChange folds one pulled change into the local store under
// the configured conflict policy. Returns whether anything was written.
//
// server-wins applies unconditionally. client-wins keeps any document
// that exists locally, so only creates of unknown ids land. newest-wins
// compares the local updatedAt against the remote change timestamp and
// keeps the newer side; ties and unparseable remote timestamps keep
// local.
func (m *Manager) applyRemoteChange(ctx context.Context, col string, ch types.RemoteChange) (bool, error) {
	if ch.DocumentID == "" {
		return false, nil
	}
	local, err := m.engine.Get(ctx, col, ch.DocumentID)
	if err != nil {
		return false, err
	}

	keepLocal := false
	switch m.cfg.ConflictPolicy {
	case types.ServerWins:
	case types.ClientWins:
		keepLocal = local != nil
	case types.NewestWins:
		if local != nil {
			remote, perr := time.Parse(types.TimeFormat, ch.Timestamp)
			keepLocal = perr != nil || !remote.After(local.UpdatedAt())
		}
	default:
		return false, fmt.Errorf("%w: %s", types.ErrConflictPolicyUnknown, m.cfg.ConflictPolicy)
	}
	if keepLocal {
		return false, nil
	}

	switch ch.Action {
	case types.ActionDelete:
		if local == nil {
			return false, nil
		}
		removed, err := m.engine.Delete(ctx, col, ch.DocumentID)
		return removed, err
	case types.ActionCreate, types.ActionUpdate:
		if ch.Data == nil {
			return false, nil
		}
		doc := ch.Data.Clone()
		doc.SetID(ch.DocumentID)
		if _, err := m.engine.Upsert(ctx, col, doc); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, fmt.Errorf("unknown change action %q", ch.Action)
	}
}
