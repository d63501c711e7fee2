package captureregion

// DoubleProvider supplies a scalar parameter that may change between planning calls. Values are
// read once per call.
type DoubleProvider interface {
	Value() float64
}

// ConstantProvider is a DoubleProvider that never changes.
type ConstantProvider float64

// Value returns the constant.
func (c ConstantProvider) Value() float64 {
	return float64(c)
}

// DoubleProviderFunc adapts a function to a DoubleProvider.
type DoubleProviderFunc func() float64

// Value calls f.
func (f DoubleProviderFunc) Value() float64 {
	return f()
}
