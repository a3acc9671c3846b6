package utils

// Map applies mapper to each element.
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for i := range sli {
		ret[i] = mapper(sli[i])
	}
	return ret
}

func Filter[T any](vs []T, predicator func(T) bool) []T {
	ret := make([]T, 0, len(vs))
	for _, v := range vs {
		if predicator(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

// Concat joins slices into a new one.
func Concat[T any](sli ...[]T) []T {
	size := 0
	for _, s := range sli {
		size += len(s)
	}
	ret := make([]T, 0, size)
	for _, s := range sli {
		ret = append(ret, s...)
	}
	return ret
}

// Default returns v, or def if v is the zero value.
func Default[T comparable](v T, def T) T {
	if v == *new(T) {
		return def
	}
	return v
}
