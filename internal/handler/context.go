package handler

type ContextKey string

var (
	ShiftDefinitionCtx ContextKey = "shiftDefinition"
	TaskCtx            ContextKey = "task"
	StaffMemberCtx     ContextKey = "staffMember"
	RosterSessionCtx   ContextKey = "rosterSession"
)
