package ws

type IHub interface {
	Run()
	RegisterClient(client *UserClient)
	UnregisterClient(client *UserClient)
	// Send queues payload for the connection holding handle. It reports
	// false when the handle is unknown or the connection's buffer is
	// full, which callers treat as "receiver effectively absent".
	Send(handle string, payload []byte) bool
	Broadcast(payload []byte)
	ClientCount() int
	SetOnClientUnregister(callback func(client *UserClient) error)
}
