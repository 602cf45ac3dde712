// Package config provides typed access to raw configuration text.
//
// Configuration values are stored as text in a store.Store. A
// Configuration wraps one store (one configuration block) and converts
// values on demand:
//
//	cfg := config.New(section)
//
//	threads, err := config.Get(cfg, "threads", convert.Int[int]())
//	pitch, err := config.GetArray(cfg, "pitch", convert.Float[float64]())
//	orientation, err := config.GetMatrix(cfg, "orientation", convert.Float[float64]())
//
// # Grammar
//
// The same text grammar serves scalars, arrays and matrices (see package
// value). "5" is a scalar, "1, 2, 3" an array and "[1, 2], [3, 4, 5]" a
// matrix with rows of unequal length.
//
// # Defaults
//
// The *Or variants return a caller-supplied default when a key is absent.
// SetDefault, SetDefaultArray and SetDefaultMatrix persist a default into
// the store only when the key is absent, so user-supplied values are never
// overwritten.
//
// # Error Handling
//
// Every accessor failure is one of two kinds:
//
//   - ErrMissingKey (*MissingKeyError): the key has no entry
//   - ErrInvalidKey (*InvalidKeyError): the key exists but its text is
//     malformed, has the wrong shape, or cannot be converted
//
// A default never hides an invalid value. Underlying causes stay reachable
// with errors.Is, for example convert.ErrOverflow or value.ErrMalformed.
//
// # Change Notification
//
// A Configuration created WithNotifier publishes a notify.Change for every
// write that adds a key or alters its text. Writes that leave the text
// unchanged are silent.
package config
