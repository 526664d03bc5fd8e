package engine

// state tracks a turn's progress through the pipeline. Transitions are
// logged for observability; the values never leave the process.
type state string

const (
	stateReceived      state = "RECEIVED"
	stateScreened      state = "SCREENED"
	stateRejected      state = "REJECTED"
	stateContextLoaded state = "CONTEXT_LOADED"
	stateUnderstood    state = "UNDERSTOOD"
	stateSearched      state = "SEARCHED"
	stateGenerated     state = "GENERATED"
	stateComposed      state = "COMPOSED"
	statePersisted     state = "PERSISTED"
	stateDone          state = "DONE"
)
