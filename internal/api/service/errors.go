package service

import "errors"

// Precondition violations are sentinel errors so handlers can map them to
// precise HTTP statuses and corrective messages. They are raised before any
// write is attempted; state never changes on a rejected mutation.
var (
	ErrJobNotFound        = errors.New("job not found")
	ErrAlreadyAssigned    = errors.New("job is already assigned")
	ErrTechnicianRequired = errors.New("a technician id is required")
	ErrNotAssigned        = errors.New("job has no assigned technician")
	ErrInvalidStatus      = errors.New("unknown job status")
	ErrInvalidPriority    = errors.New("unknown job priority")
	ErrAfterPhotoRequired = errors.New("cannot complete the job: the after photo is missing")
	ErrInvalidPhotoSlot   = errors.New("photo slot must be before or after")
	ErrEmptyPhotoURL      = errors.New("photo url is empty")
	ErrNotHighPriority    = errors.New("only high priority jobs require acceptance")
	ErrNotEligible        = errors.New("only the assigned technician can accept this job")
	ErrEmptyComment       = errors.New("comment text is empty")
)
