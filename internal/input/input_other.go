//go:build !linux && !darwin

package input

func newTyper() (Typer, error) {
	return nil, ErrUnsupported
}
