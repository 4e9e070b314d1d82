package clinic

// Lookup es el resultado de una búsqueda por id: presente o ausente.
// La ausencia no es un error; los errores de storage viajan aparte.
type Lookup[T any] struct {
	value   T
	present bool
}

func Found[T any](v T) Lookup[T] {
	return Lookup[T]{value: v, present: true}
}

func Absent[T any]() Lookup[T] {
	return Lookup[T]{}
}

func (l Lookup[T]) Get() (T, bool) {
	return l.value, l.present
}

func (l Lookup[T]) Present() bool { return l.present }

// OrZero devuelve el valor o el zero value si está ausente.
func (l Lookup[T]) OrZero() T { return l.value }
