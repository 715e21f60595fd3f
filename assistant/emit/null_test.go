package emit

import "testing"

func TestNullEmitter_Emit(t *testing.T) {
	emitter := NewNullEmitter()

	// Must not panic, with or without meta.
	emitter.Emit(Event{RunID: "run-001", Seq: 1, Msg: MsgRunStart})
	emitter.Emit(Event{
		RunID: "run-001",
		Seq:   2,
		Msg:   MsgLLMCall,
		Meta:  map[string]interface{}{"tokens_in": 10},
	})
	emitter.Emit(Event{})
}

func TestNullEmitter_InterfaceCompliance(t *testing.T) {
	var _ Emitter = (*NullEmitter)(nil)
	var _ Emitter = (*LogEmitter)(nil)
	var _ Emitter = (*BufferedEmitter)(nil)
	var _ Emitter = (*OTelEmitter)(nil)
}
