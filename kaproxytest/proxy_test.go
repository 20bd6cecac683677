package kaproxytest_test

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/kaproxy-go/component"
	"github.com/kbukum/kaproxy-go/errors"
	"github.com/kbukum/kaproxy-go/kaproxy"
	"github.com/kbukum/kaproxy-go/kaproxytest"
	"github.com/kbukum/kaproxy-go/logger"
)

const token = "secret"

func newClient(t *testing.T, p *kaproxytest.Proxy) *kaproxy.Client {
	t.Helper()
	c, err := kaproxy.New(p.URL(), token, kaproxy.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestProxy_ProduceThenConsume(t *testing.T) {
	p := kaproxytest.NewTestProxy(t, kaproxytest.WithTokens(token), kaproxytest.WithPartitions(1))
	c := newClient(t, p)
	ctx := context.Background()

	res, err := c.Produce(ctx, "test topic", "test_key", "test_value")
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if res.Topic() != "test topic" {
		t.Errorf("unexpected topic %q", res.Topic())
	}
	if off, ok := res.Offset(); !ok || off != 0 {
		t.Errorf("expected offset 0, got %d", off)
	}

	msg, err := c.Consume(ctx, "test_group", "test topic", kaproxy.WithBlockingTimeout(time.Second))
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if msg == nil || string(msg.Value) != "test_value" || msg.Key() != "test_key" {
		t.Fatalf("unexpected message %+v", msg)
	}

	msg, err = c.Consume(ctx, "test_group", "test topic", kaproxy.WithBlockingTimeout(time.Second))
	if err != nil || msg != nil {
		t.Errorf("expected absent after the only message was read, got %+v, %v", msg, err)
	}
}

func TestProxy_RandomPartitionerWithoutKey(t *testing.T) {
	p := kaproxytest.NewTestProxy(t)
	c := newClient(t, p)

	_, err := c.Produce(context.Background(), "t", "", "v", kaproxy.WithPartitioner(kaproxy.PartitionerRandom))
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if len(p.Broker().Records("t")) != 1 {
		t.Error("expected the message to be stored")
	}
}

func TestProxy_LongPollDeliversLateMessage(t *testing.T) {
	p := kaproxytest.NewTestProxy(t)
	c := newClient(t, p)

	go func() {
		time.Sleep(200 * time.Millisecond)
		p.Broker().Produce("t", "k", "late", false)
	}()

	msg, err := c.Consume(context.Background(), "g", "t", kaproxy.WithBlockingTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if msg == nil || string(msg.Value) != "late" {
		t.Errorf("expected the late message, got %+v", msg)
	}
}

func TestProxy_EmptyAsError(t *testing.T) {
	p := kaproxytest.NewTestProxy(t, kaproxytest.WithEmptyAsError())
	c := newClient(t, p)

	msg, err := c.Consume(context.Background(), "g", "t", kaproxy.WithBlockingTimeout(time.Second))
	if err != nil || msg != nil {
		t.Errorf("expected absent, got %+v, %v", msg, err)
	}
}

func TestProxy_LegacyFieldsAreNormalized(t *testing.T) {
	p := kaproxytest.NewTestProxy(t, kaproxytest.WithLegacyFields(), kaproxytest.WithPartitions(1))
	c := newClient(t, p)

	res, err := c.Produce(context.Background(), "t", "k", "v")
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if _, ok := res["partition"]; !ok {
		t.Errorf("expected lower-cased keys, got %v", res)
	}
	if _, ok := res["Partition"]; ok {
		t.Errorf("unexpected capitalized key in %v", res)
	}
}

func TestProxy_Base64Values(t *testing.T) {
	p := kaproxytest.NewTestProxy(t, kaproxytest.WithBase64Values())
	c := newClient(t, p)
	ctx := context.Background()

	if _, err := c.Produce(ctx, "t", "k", "binary\x00payload"); err != nil {
		t.Fatalf("produce: %v", err)
	}
	msg, err := c.Consume(ctx, "g", "t", kaproxy.WithBlockingTimeout(time.Second))
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if msg == nil || msg.Encoding != kaproxy.EncodingBase64 || string(msg.Value) != "binary\x00payload" {
		t.Errorf("expected decoded value, got %+v", msg)
	}
}

func TestProxy_ErrorsReachTheClient(t *testing.T) {
	p := kaproxytest.NewTestProxy(t, kaproxytest.WithTokens(token), kaproxytest.WithTopics("orders"))
	c := newClient(t, p)
	ctx := context.Background()

	_, err := c.Produce(ctx, "unknown", "k", "v")
	if !errors.Is(err, errors.ErrCodeProduceFailed) || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected PRODUCE_FAILED for unknown topic, got %v", err)
	}

	p.FailNext(http.StatusServiceUnavailable, "broker down")
	_, err = c.Consume(ctx, "g", "orders", kaproxy.WithBlockingTimeout(time.Second))
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeConsumeFailed || appErr.Message != "broker down" {
		t.Errorf("expected injected CONSUME_FAILED, got %v", err)
	}

	// The failure is one-shot.
	if _, err := c.Produce(ctx, "orders", "k", "v"); err != nil {
		t.Errorf("expected success after the injected failure, got %v", err)
	}

	bad, _ := kaproxy.New(p.URL(), "wrong", kaproxy.WithLogger(logger.Nop()))
	_, err = bad.Produce(ctx, "orders", "k", "v")
	if !errors.Is(err, errors.ErrCodeProduceFailed) {
		t.Errorf("expected the 401 error body to surface as PRODUCE_FAILED, got %v", err)
	}
}

func TestProxy_TokenFromQuery(t *testing.T) {
	p := kaproxytest.NewTestProxy(t, kaproxytest.WithTokens(token), kaproxytest.WithPartitions(1))

	form := url.Values{"key": {"k"}, "value": {"v"}}
	resp, err := http.PostForm(p.URL()+"/topic/t?token="+token, form)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"offset":0`) {
		t.Errorf("unexpected response %d %s", resp.StatusCode, body)
	}
}

func TestProxy_EscapedPathSegments(t *testing.T) {
	p := kaproxytest.NewTestProxy(t)
	c := newClient(t, p)

	if _, err := c.Produce(context.Background(), "a/b", "k", "v"); err != nil {
		t.Fatalf("produce: %v", err)
	}
	if len(p.Broker().Records("a/b")) != 1 {
		t.Error("expected the escaped topic to be stored verbatim")
	}
}

func TestProxy_Component(t *testing.T) {
	p := kaproxytest.New(kaproxytest.Config{}, logger.Nop())
	ctx := context.Background()

	reg := component.NewRegistry()
	if err := reg.Register(p); err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.Health(ctx).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before start")
	}
	if err := reg.StartAll(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if p.Health(ctx).Status != component.StatusHealthy {
		t.Error("expected healthy after start")
	}
	if !strings.Contains(p.Describe().Details, "partitions=4") {
		t.Errorf("unexpected description %+v", p.Describe())
	}
	if err := reg.StopAll(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
