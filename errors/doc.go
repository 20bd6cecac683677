// Package errors provides the typed error taxonomy shared by the kaproxy
// client, its transport and its tooling.
//
// Every failure surfaced to callers is an *AppError carrying a
// machine-readable ErrorCode. Callers branch on the code rather than on
// message text:
//
//	msg, err := client.Consume(ctx, "group", "topic")
//	switch {
//	case errors.Is(err, errors.ErrCodeTransport):
//	    // the exchange itself failed; the connection was reset
//	case errors.Is(err, errors.ErrCodeConsumeFailed):
//	    // the proxy answered with an error text
//	}
package errors
