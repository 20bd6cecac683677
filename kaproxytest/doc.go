// Package kaproxytest provides an in-memory fake of the kaproxy HTTP
// contract for tests and local development.
//
// The fake keeps messages in memory, partitions them by key hash or at
// random, tracks one cursor per consumer group and topic, and long-polls
// consume requests up to the requested timeout. Behaviors older proxies
// exhibit (capitalized produce fields, a JSON "no message" error instead of
// 204, base64 values) can be switched on per instance.
//
//	p := kaproxytest.NewTestProxy(t, kaproxytest.WithTokens("secret"))
//	client, _ := kaproxy.New(p.URL(), "secret")
package kaproxytest
