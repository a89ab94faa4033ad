package domain

type Action string

const (
	ActionSubmitFeedback      Action = "submit-feedback"
	ActionAddCategoryFeedback Action = "add-category-feedback"
	ActionVerifyFeedback      Action = "verify-feedback"
	ActionRegisterInspector   Action = "register-inspector"
	ActionScheduleInspection  Action = "schedule-inspection"
	ActionStartInspection     Action = "start-inspection"
	ActionCompleteInspection  Action = "complete-inspection"
	ActionAddInspectionResult Action = "add-inspection-result"
)

type grant int

const (
	grantAnyone grant = iota
	grantOwner
	grantAdmin
)

var policy = map[Action]grant{
	ActionSubmitFeedback:      grantAnyone,
	ActionAddCategoryFeedback: grantOwner,
	ActionVerifyFeedback:      grantAdmin,
	ActionRegisterInspector:   grantAdmin,
	ActionScheduleInspection:  grantAdmin,
	ActionStartInspection:     grantOwner,
	ActionCompleteInspection:  grantOwner,
	ActionAddInspectionResult: grantOwner,
}

// Authorize decides whether caller may perform action. owner is the actor the
// target record belongs to (the feedback's customer or the inspection's
// inspector) and is ignored for actions that are not owner-gated. Unknown
// actions are denied.
func Authorize(action Action, caller Caller, owner ActorID) error {
	g, ok := policy[action]
	if !ok {
		return Reject(ErrNotAuthorized, "unknown action "+string(action))
	}
	if caller.ID == "" {
		return Reject(ErrNotAuthorized, string(action)+" requires an authenticated caller")
	}
	switch g {
	case grantAnyone:
		return nil
	case grantAdmin:
		if caller.Admin {
			return nil
		}
		return Reject(ErrNotAuthorized, string(action)+" requires admin")
	case grantOwner:
		if owner != "" && caller.ID == owner {
			return nil
		}
		return Reject(ErrNotAuthorized, string(action)+" is restricted to the record owner")
	}
	return Reject(ErrNotAuthorized, "unhandled grant for "+string(action))
}
