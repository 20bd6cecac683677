// Package kaproxy is a client for the kaproxy HTTP message-queue proxy.
//
// A Client publishes messages to a topic and consumes the next pending
// message for a consumer group:
//
//	client, err := kaproxy.New("http://127.0.0.1:8080", token)
//	if err != nil { ... }
//	defer client.Close()
//
//	res, err := client.Produce(ctx, "orders", "order-42", payload)
//	msg, err := client.Consume(ctx, "billing", "orders",
//		kaproxy.WithBlockingTimeout(5*time.Second))
//	if msg == nil {
//		// no message available
//	}
//
// Every call performs exactly one HTTP exchange. Nothing is retried: a
// repeated Produce may publish the message twice. Consume long-polls on the
// proxy for up to the blocking timeout and its own deadline is half as long
// again, so an empty topic is reported by the proxy before the client gives
// up.
//
// Failures are *errors.AppError values. Use errors.Is(err, code) with
// ErrCodeInvalidArgument, ErrCodeTransport, ErrCodeTimeout,
// ErrCodeProduceFailed, ErrCodeConsumeFailed or ErrCodeInvalidResponse.
//
// Close releases the connection. The client stays usable and reconnects on
// the next call.
package kaproxy
