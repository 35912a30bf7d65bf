package dispatch

import (
	"errors"

	"github.com/beamtime/remclient/pkg/apierr"
	"github.com/beamtime/remclient/pkg/transport"
)

// Classify maps a raw transport failure to the public error taxonomy. It is
// a pure function of the caught condition; it performs no I/O and behaves
// identically for both transports.
func Classify(err error, req apierr.Request) error {
	var te *transport.TimeoutError
	if errors.As(err, &te) {
		return &apierr.RequestTimeoutError{Msg: te.Err.Error(), Request: req}
	}

	var se *transport.StatusError
	if errors.As(err, &se) {
		return &apierr.ClientError{
			StatusCode: se.StatusCode,
			Detail:     se.Detail,
			URL:        se.URL,
			Request:    req,
		}
	}

	var ce *transport.ConnError
	if errors.As(err, &ce) {
		return &apierr.RequestError{Err: ce.Err, Request: req}
	}

	return &apierr.RequestError{Err: err, Request: req}
}
