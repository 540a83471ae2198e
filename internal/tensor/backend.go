package tensor

// Backend is the compute interface every device implementation provides.
// All operations take and return RawTensors; shape and dtype validation
// happens inside the backend, which panics on violations (programmer
// errors, not runtime conditions).
type Backend interface {
	// Device returns the device this backend computes on.
	Device() Device

	// Name returns a human-readable backend identifier.
	Name() string

	// Element-wise binary ops with NumPy broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar ops.
	AddScalar(t *RawTensor, scalar float64) *RawTensor
	MulScalar(t *RawTensor, scalar float64) *RawTensor

	// MatMul computes batched matrix multiplication over the last two
	// dimensions.
	MatMul(a, b *RawTensor) *RawTensor

	// Shape manipulation.
	Reshape(t *RawTensor, shape Shape) *RawTensor
	Transpose(t *RawTensor) *RawTensor

	// Activations.
	ReLU(t *RawTensor) *RawTensor
	Softmax(t *RawTensor) *RawTensor

	// Reductions.
	Sum(t *RawTensor) *RawTensor
	Mean(t *RawTensor) *RawTensor
	Argmax(t *RawTensor, dim int) *RawTensor

	// CrossEntropy computes mean cross-entropy loss between logits
	// [batch, classes] and one-hot targets of the same shape,
	// returning a scalar.
	CrossEntropy(logits, targets *RawTensor) *RawTensor

	// Convolution and pooling for NCHW inputs.
	Conv2D(input, kernel, bias *RawTensor, stride, padding int) *RawTensor
	Conv2DInputBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor
	Conv2DKernelBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor
	MaxPool2D(input *RawTensor, kernelSize, stride int) (*RawTensor, []int)
	MaxPool2DBackward(input, grad *RawTensor, maxIndices []int, kernelSize, stride int) *RawTensor
}
