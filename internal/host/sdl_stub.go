//go:build !sdl

package host

func openSDL(Config) (Host, error) {
	return nil, ErrSDLUnavailable
}

// SupportsSDL reports whether the binary was built with the sdl tag.
func SupportsSDL() bool { return false }
