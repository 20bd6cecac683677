// Package transport performs single HTTP exchanges against a message-queue
// proxy.
//
// An Adapter owns one reusable connection handle (an *http.Client with its
// pooled connections). The handle is created on first use, torn down after a
// failed exchange or an explicit Close, and recreated transparently by the
// next call. Connection establishment is bounded by a short fixed ceiling
// independently of the per-request deadline, so an unreachable proxy fails
// fast even for long-poll requests.
//
// # Basic Usage
//
//	a, err := transport.New(transport.Config{
//	    BaseURL: "http://127.0.0.1:8080",
//	    Auth:    transport.TokenAuth("secret"),
//	})
//
//	resp, err := a.Execute(ctx, transport.Request{
//	    Method:  http.MethodGet,
//	    Path:    "group/g1/topic/orders",
//	    Query:   map[string]string{"timeout": "3000"},
//	    Timeout: 4500 * time.Millisecond,
//	})
//
// No retries are performed. Which outcomes count as failures is decided by a
// FailurePolicy; the default lets every HTTP status through and only fails on
// exchange errors.
package transport
