package cli

import "errors"

// ErrNoTransactions is reported when the capture files hold no usable entries.
// It is a warning: commands carry on with an empty capture.
var ErrNoTransactions = errors.New("capture contains no transactions")
