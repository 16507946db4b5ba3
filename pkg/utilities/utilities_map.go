package utilities

// Map applies fn to each element. The result is never nil, so empty input
// still encodes as a JSON array.
func Map[T any, U any](arr []T, fn func(T) U) []U {
	mapped := make([]U, len(arr))
	for i, x := range arr {
		mapped[i] = fn(x)
	}
	return mapped
}
