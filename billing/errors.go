// SPDX-License-Identifier: GPL-3.0-only

package billing

import "errors"

// Verification failures are sentinel errors so handlers can map them to
// response categories without leaking internals to the caller.
var (
	ErrInvalidRequest   = errors.New("invalid verification request")
	ErrSignatureInvalid = errors.New("payment signature verification failed")
	ErrUnknownPlan      = errors.New("unknown plan name")
	ErrConfiguration    = errors.New("billing configuration incomplete")
	ErrStoreUnavailable = errors.New("billing store unavailable")
)
