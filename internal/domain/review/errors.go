package review

import "errors"

var (
	ErrReviewNotFound          = errors.New("review not found")
	ErrGoalNotFound            = errors.New("development goal not found")
	ErrReviewAccessDenied      = errors.New("you do not have access to this review")
	ErrReviewAlreadySubmitted  = errors.New("review has already been submitted")
	ErrEmployeeOnly            = errors.New("only the employee can edit this section")
	ErrFormEditDenied          = errors.New("only the employee, their direct supervisor or an hr manager can edit this form")
	ErrNotAllowedToRate        = errors.New("only the direct supervisor or an hr manager can rate this review")
	ErrGoalsLocked             = errors.New("development goals can no longer be edited")
	ErrInvalidAction           = errors.New("invalid action")
	ErrInvalidStatus           = errors.New("invalid review status")
	ErrConcurrentModification  = errors.New("review was modified by someone else, reload and try again")
	ErrNothingSaved            = errors.New("no changes could be saved")
	ErrSupervisorCommentDenied = errors.New("only the direct supervisor or an hr manager can comment as supervisor")
)

var (
	ErrKPINotFound   = errors.New("kpi not found")
	ErrSkillNotFound = errors.New("skill evaluation not found")
)
