package crisis

import "errors"

// ErrMissingSubject is returned when an evaluate request carries no
// subject id. The only request shape the engine refuses outright.
var ErrMissingSubject = errors.New("subject id is required")
