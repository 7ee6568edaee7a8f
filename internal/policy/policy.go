// Package policy centralizes authorization predicates for the workflow.
// Every hook that needs an "is this actor allowed" answer goes through here
// rather than comparing profile fields ad hoc.
package policy

// Actor is the acting profile, as established by the HTTP identity middleware.
type Actor struct {
	ProfileID    int64
	DepartmentID *int64
}

// CanValidate reports whether the actor may decide a validation level.
// True iff the actor is the named validator, or belongs to the validator
// department (department members act as a group; the first to act resolves
// the level).
func CanValidate(actor Actor, validatorID, validatorDeptID *int64) bool {
	if validatorID != nil && *validatorID == actor.ProfileID {
		return true
	}
	if validatorDeptID != nil && actor.DepartmentID != nil && *validatorDeptID == *actor.DepartmentID {
		return true
	}
	return false
}

// CanManageTemplate reports whether the actor may edit a process template.
// Only the template's creator may manage it.
func CanManageTemplate(actor Actor, creatorID *int64) bool {
	return creatorID != nil && *creatorID == actor.ProfileID
}
