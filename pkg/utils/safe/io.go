package safe

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/utils/errors"
)

// Close closes c and logs a failure. Response bodies, log files and cloud
// clients are closed this way on shutdown paths that cannot return an error.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		errors.Handle(ctx, goerr.Wrap(err, "failed to close resource"))
	}
}

// Write writes data to w and logs a failure, e.g. a gateway client that
// hung up before the proxied body was sent
func Write(ctx context.Context, w io.Writer, data []byte) {
	if _, err := w.Write(data); err != nil {
		errors.Handle(ctx, goerr.Wrap(err, "failed to write response", goerr.V("size", len(data))))
	}
}
