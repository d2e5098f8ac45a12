package market

import "errors"

// MaxBatchItems bounds every batch-accepting entry point: item counts per
// transaction, per id, per id array, per purchase batch, per collection array
// and per collection sale count.
const MaxBatchItems = 100

var (
	ErrIndexOutOfBounds    = errors.New("market: index out of bounds")
	ErrNonMonotonicIndexes = errors.New("market: indexes are not monotonically decreasing")
	ErrNotFound            = errors.New("market: record not located; check the collection and id values or choose a different starting index")
	ErrArrayLengthMismatch = errors.New("market: all arrays must be the same length")

	ErrTooManyItems              = errors.New("market: a maximum of 100 units per transaction")
	ErrTooManyPerID              = errors.New("market: a maximum of 100 units per id")
	ErrTooManyIDs                = errors.New("market: a maximum of 100 ids per transaction")
	ErrTooManyPurchases          = errors.New("market: a maximum of 100 purchases per transaction")
	ErrTooManyCollections        = errors.New("market: a maximum of 100 collections per transaction")
	ErrTooManySalesPerCollection = errors.New("market: a maximum of 100 sales per collection")

	ErrTooManyQualifyingAssets  = errors.New("market: more than one qualifying asset provided")
	ErrQualifyingAssetNotOwned  = errors.New("market: caller does not own the qualifying asset provided")
	ErrQualifyingAssetNotActive = errors.New("market: qualifying asset provided is not governance tier")
	ErrInsufficientPayment      = errors.New("market: insufficient payment")
	ErrTooEarly                 = errors.New("market: aging delay has not elapsed since deposit of this record")

	errNilStore          = errors.New("market: store not configured")
	errNilLedger         = errors.New("market: ledger not configured")
	errNilAuthority      = errors.New("market: authority not configured")
	errNilResolver       = errors.New("market: token resolver not configured")
	errNilSettings       = errors.New("market: settings source not configured")
	errNilQualifying     = errors.New("market: qualifying collection not configured")
	errNonPositiveAmount = errors.New("market: amount must be positive")
)
