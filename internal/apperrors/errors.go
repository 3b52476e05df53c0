package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrNoData indicates that no synced rates exist for the requested date or range.
// This is a routine outcome for dates the providers have not published yet.
var ErrNoData = errors.New("no data available for the requested date")

// ErrUnknownCurrency indicates that a requested base currency is absent from
// the stored currency set for the resolved date.
var ErrUnknownCurrency = errors.New("currency not found")

// ErrSyncInProgress indicates that a sync is already running for the provider.
var ErrSyncInProgress = errors.New("sync already in progress")

// ErrFetch indicates a network or remote failure while fetching provider data.
var ErrFetch = errors.New("provider fetch failed")

// ErrParse indicates a malformed provider payload.
var ErrParse = errors.New("provider payload malformed")

// ErrMissingReferenceRate indicates a snapshot without a rate for the
// reference currency; such a snapshot cannot be normalized.
var ErrMissingReferenceRate = errors.New("snapshot is missing a reference currency rate")
