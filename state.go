package wiggleroom

import (
	"encoding/json"

	"github.com/timini/wiggleroom/internal/acid9"
	"github.com/timini/wiggleroom/internal/euclogic"
)

// rackState is the persisted shape of a rack: the measured clock
// period and truth-table mapping of the gate module, and the gear
// buffers and phase offset of the melodic sequencer. Playheads and
// undo history are runtime-only.
type rackState struct {
	Euclogic euclogic.State `json:"euclogic"`
	ACID9    acid9.SeqState `json:"acid9"`
}

// MarshalJSON captures the rack's persistent state.
func (r *Rack) MarshalJSON() ([]byte, error) {
	r.mu.Lock()
	st := rackState{
		Euclogic: r.euc.core.State(),
		ACID9:    r.acid.seq.State(),
	}
	r.mu.Unlock()
	return json.Marshal(st)
}

// UnmarshalJSON restores state captured by MarshalJSON into an
// already-constructed rack.
func (r *Rack) UnmarshalJSON(data []byte) error {
	var st rackState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	r.mu.Lock()
	r.euc.core.LoadState(st.Euclogic)
	r.acid.seq.LoadState(st.ACID9)
	r.mu.Unlock()
	return nil
}
