package pointer

// Ref returns a pointer to a copy of t.
//
// It is for optional fields of TAPIS requests, like pointer.Ref(true).
func Ref[T any](t T) *T {
	return &t
}
