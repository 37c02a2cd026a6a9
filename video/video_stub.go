//go:build !screen

package video

// ScreenSupported returns whether screen support is compiled in.
func ScreenSupported() bool {
	return false
}

// Video is a stub when screen support is not compiled in.
type Video struct{}

// New returns an error when screen support is not compiled in.
func New(device string) (*Video, error) {
	return nil, ErrScreenNotCompiled
}

func (v *Video) Idle()                {}
func (v *Video) Granted(label string) {}
func (v *Video) Denied(uid string)    {}
func (v *Video) Release() error       { return nil }
