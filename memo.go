package failsafe

// Memo runs fn and checkpoints its result under the type name. When a
// previous run left a checkpoint for the same call, the stored result is
// returned and fn is not run. Each call takes the next id of the type, so a
// program that calls Memo in a deterministic order resumes call by call.
func Memo[T any](m *Manager, name string, fn func() (T, error), opts ...TypeOption) (T, error) {
	var zero T
	typ, err := memoType[T](m, name, opts)
	if err != nil {
		return zero, err
	}
	cp, err := typ.Build(fn)
	if err != nil {
		return zero, err
	}
	return cp.Value, nil
}

// ExecuteOnce runs a side-effecting step unless a previous run already
// completed it. It reports whether fn ran.
func ExecuteOnce(m *Manager, name string, fn func() error, opts ...TypeOption) (bool, error) {
	executed := false
	_, err := Memo(m, name, func() (bool, error) {
		if err := fn(); err != nil {
			return false, err
		}
		executed = true
		return true, nil
	}, opts...)
	return executed, err
}

func memoType[T any](m *Manager, name string, opts []TypeOption) (*Type[T], error) {
	if existing, ok := m.types[name]; ok {
		typ, ok := existing.(*Type[T])
		if !ok {
			return nil, configErrorf(name, "registered with a different result type than %s", typeLabel[T]())
		}
		return typ, nil
	}
	return Register[T](m, name, opts...)
}
