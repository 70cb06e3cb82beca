package model

import "fmt"

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// CascadeError reports which step of a multi-step mutation failed. Steps
// already executed stay committed, so PartialSuccess is true whenever the
// failing step was not the first one.
type CascadeError struct {
	Step           string
	PartialSuccess bool
	Err            error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("failed step %q: %s", e.Step, e.Err.Error())
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

// ServerHasClubsError blocks server deletion while clubs still reference it.
type ServerHasClubsError struct {
	ClubsCount int
}

func (e *ServerHasClubsError) Error() string {
	return fmt.Sprintf("server cannot be deleted because it still owns %d club(s)", e.ClubsCount)
}
