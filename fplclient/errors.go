package fplclient

import "fmt"

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fplclient: %s returned HTTP %d", e.Endpoint, e.Status)
}

// IsAuthFailure reports whether the response indicates a rejected or
// expired credential.
func (e *HTTPError) IsAuthFailure() bool {
	return e.Status == 401 || e.Status == 403
}
