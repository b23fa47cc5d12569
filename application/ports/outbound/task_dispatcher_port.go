package outbound

// TaskDispatcher offloads a blocking task onto a background worker.
// Satisfied by *ants.Pool.
type TaskDispatcher interface {
	Submit(task func()) error
}
