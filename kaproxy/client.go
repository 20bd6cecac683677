package kaproxy

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/kaproxy-go/errors"
	"github.com/kbukum/kaproxy-go/logger"
	"github.com/kbukum/kaproxy-go/observability"
	"github.com/kbukum/kaproxy-go/transport"
	"github.com/kbukum/kaproxy-go/version"
)

const (
	opProduce = "produce"
	opConsume = "consume"
)

// Client talks to one proxy with one token. A Client is intended for
// serialized use; run separate clients for concurrent callers.
type Client struct {
	address   string
	token     string
	transport Transport
	log       *logger.Logger
	metrics   *observability.Metrics
}

// New creates a client for the proxy at address. No connection is made until
// the first call.
func New(address, token string, opts ...Option) (*Client, error) {
	base, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}

	o := options{connectTimeout: transport.DefaultConnectTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.log
	if log == nil {
		log = logger.WithComponent("kaproxy")
	}

	t := o.transport
	if t == nil {
		adapterOpts := []transport.Option{transport.WithFailurePolicy(o.policy)}
		if o.log != nil {
			adapterOpts = append(adapterOpts, transport.WithLogger(o.log))
		}
		t, err = transport.New(transport.Config{
			Name:           "kaproxy",
			BaseURL:        base,
			ConnectTimeout: o.connectTimeout,
			TLS:            o.tls,
			Auth:           transport.TokenAuth(token),
			Headers:        map[string]string{"User-Agent": version.UserAgent()},
		}, adapterOpts...)
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		address:   base,
		token:     token,
		transport: t,
		log:       log,
		metrics:   o.metrics,
	}, nil
}

// NewFromConfig creates a client from a loaded Config. opts are applied
// after the config-derived options.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := []Option{WithConnectTimeout(cfg.ConnectTimeout)}
	if cfg.StrictStatus {
		base = append(base, WithFailurePolicy(transport.StrictPolicy{}))
	}
	return New(cfg.Address, cfg.Token, append(base, opts...)...)
}

// Address returns the normalized proxy base URL.
func (c *Client) Address() string {
	return c.address
}

// Produce publishes value to topic. The key selects the partition under the
// hash partitioner and may be empty only with PartitionerRandom.
func (c *Client) Produce(ctx context.Context, topic, key, value string, opts ...ProduceOption) (ProduceResult, error) {
	req := NewProduceRequest(topic, key, value, opts...)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	oc := observability.NewOperationContext(opProduce, topic, "", c.metrics)
	ctx = oc.Start(ctx, observability.SpanProduce)
	oc.Span().SetAttributes(attribute.String(observability.AttrPartitioner, string(req.Partitioner)))
	log := c.log.WithContext(ctx)

	resp, err := c.transport.Execute(ctx, transport.Request{
		Method:  http.MethodPost,
		Path:    req.path(),
		Query:   map[string]string{"token": c.token},
		Body:    req.form(),
		Timeout: req.Timeout,
	})
	if err != nil {
		err = transportError(opProduce, err)
		oc.End(ctx, observability.OutcomeError, err)
		log.Warn("produce failed", logger.Fields(logger.FieldTopic, topic, logger.FieldError, err.Error()))
		return nil, err
	}
	oc.SetStatusCode(resp.StatusCode)

	record, err := decodeRecord(resp.StatusCode, resp.Body)
	if err != nil {
		oc.End(ctx, observability.OutcomeError, err)
		log.Warn("produce response rejected", responseFields(topic, "", resp, err))
		return nil, err
	}

	result := lowerKeys(record)
	if text := errorText(result); text != "" {
		err := errors.ProduceFailed(text).WithDetails(responseDetails(resp))
		oc.End(ctx, observability.OutcomeError, err)
		log.Warn("proxy rejected produce", responseFields(topic, "", resp, err))
		return nil, err
	}

	oc.End(ctx, observability.OutcomeOK, nil)
	fields := responseFields(topic, "", resp, nil)
	fields[logger.FieldDuration] = oc.Duration().Milliseconds()
	if p, ok := ProduceResult(result).Partition(); ok {
		fields["partition"] = p
	}
	if off, ok := ProduceResult(result).Offset(); ok {
		fields["offset"] = off
	}
	log.Debug("message produced", fields)
	return ProduceResult(result), nil
}

// Consume returns the next message for group on topic, or (nil, nil) when
// the proxy has none within the blocking timeout.
func (c *Client) Consume(ctx context.Context, group, topic string, opts ...ConsumeOption) (*Message, error) {
	req := NewConsumeRequest(group, topic, opts...)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	oc := observability.NewOperationContext(opConsume, topic, group, c.metrics)
	ctx = oc.Start(ctx, observability.SpanConsume)
	log := c.log.WithContext(ctx)

	resp, err := c.transport.Execute(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   req.path(),
		Query: map[string]string{
			"token":   c.token,
			"timeout": strconv.FormatInt(req.BlockingTimeout.Milliseconds(), 10),
		},
		Timeout: req.TransportTimeout(),
	})
	if err != nil {
		err = transportError(opConsume, err)
		oc.End(ctx, observability.OutcomeError, err)
		log.Warn("consume failed", logger.Fields(logger.FieldGroup, group, logger.FieldTopic, topic, logger.FieldError, err.Error()))
		return nil, err
	}
	oc.SetStatusCode(resp.StatusCode)

	if resp.StatusCode == http.StatusNoContent {
		oc.End(ctx, observability.OutcomeEmpty, nil)
		log.Debug("no message", responseFields(topic, group, resp, nil))
		return nil, nil
	}

	record, err := decodeRecord(resp.StatusCode, resp.Body)
	if err != nil {
		oc.End(ctx, observability.OutcomeError, err)
		log.Warn("consume response rejected", responseFields(topic, group, resp, err))
		return nil, err
	}

	if text := errorText(record); text != "" {
		if isNoMessage(text) {
			oc.End(ctx, observability.OutcomeEmpty, nil)
			log.Debug("no message", responseFields(topic, group, resp, nil))
			return nil, nil
		}
		err := errors.ConsumeFailed(text).WithDetails(responseDetails(resp))
		oc.End(ctx, observability.OutcomeError, err)
		log.Warn("proxy rejected consume", responseFields(topic, group, resp, err))
		return nil, err
	}

	msg, err := newMessage(resp.StatusCode, record)
	if err != nil {
		oc.End(ctx, observability.OutcomeError, err)
		log.Warn("consume response rejected", responseFields(topic, group, resp, err))
		return nil, err
	}

	oc.End(ctx, observability.OutcomeOK, nil)
	fields := responseFields(topic, group, resp, nil)
	fields[logger.FieldDuration] = oc.Duration().Milliseconds()
	fields["bytes"] = len(msg.Value)
	log.Debug("message consumed", fields)
	return msg, nil
}

// Close releases the connection. The client stays usable; the next call
// reconnects.
func (c *Client) Close() error {
	return c.transport.Close()
}

// transportError wraps a failed exchange, keeping the transport error as the
// cause.
func transportError(operation string, err error) error {
	if errors.IsAppError(err) {
		return err
	}
	if transport.IsTimeout(err) {
		return errors.Timeout(operation, err)
	}
	appErr := errors.Transport(operation, err)
	var te *transport.Error
	if stderrors.As(err, &te) && te.StatusCode > 0 {
		appErr.WithDetail("status_code", te.StatusCode)
	}
	return appErr
}

func responseDetails(resp *transport.Response) map[string]any {
	d := map[string]any{"status_code": resp.StatusCode}
	if id := resp.RequestID(); id != "" {
		d["request_id"] = id
	}
	return d
}

func responseFields(topic, group string, resp *transport.Response, err error) map[string]interface{} {
	f := logger.Fields(logger.FieldTopic, topic, logger.FieldStatusCode, resp.StatusCode)
	if group != "" {
		f[logger.FieldGroup] = group
	}
	if id := resp.RequestID(); id != "" {
		f[logger.FieldRequestID] = id
	}
	if err != nil {
		f[logger.FieldError] = err.Error()
	}
	return f
}
