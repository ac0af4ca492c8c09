package upstream

import (
	"context"
	"errors"
	"io"

	"github.com/a3tai/w2-intake/internal/fields"
)

// HeaderAPISecret is the request header carrying the pre-shared secret.
const HeaderAPISecret = "X-API-Secret"

// ErrUpstream marks any third-party failure: unreachable endpoint,
// timeout, or a non-200 response. The contract assumes upstream
// reliability, so deviations are exceptional and never retried.
var ErrUpstream = errors.New("upstream failure")

// Result carries the identifiers produced by the third-party services.
// Both values are opaque and returned to the caller verbatim.
type Result struct {
	DataID string `json:"dataId"`
	FileID string `json:"fileId"`
}

// Submitter reports extracted W-2 data and the original document to the
// third-party services. Implementations must behave identically whether
// the callee is a real endpoint or an in-process stand-in; production
// and test wiring differ only in configuration.
type Submitter interface {
	Submit(ctx context.Context, data *fields.W2Data, filename string, file io.Reader) (*Result, error)
}
