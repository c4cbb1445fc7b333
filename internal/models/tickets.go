package models

// LookupStatus is the application-level status carried by lookup envelopes
// returned from the heavy-response endpoint.
type LookupStatus string

const (
	LookupStatusSuccess  LookupStatus = "success"
	LookupStatusNotFound LookupStatus = "not_found"
)

// JobTicket is the handle returned by a job-submitting call. It only lives
// for the duration of one heavy request.
type JobTicket struct {
	ID string `json:"id"`
}

// MessageResponse is the generic acknowledgement body for mutation calls.
type MessageResponse struct {
	Message string `json:"message"`
}
