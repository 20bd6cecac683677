package kaproxytest

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/kaproxy-go/logger"
	"github.com/kbukum/kaproxy-go/server"
)

const (
	defaultBlockingTimeout = 3000 * time.Millisecond
	maxBlockingTimeout     = 60 * time.Second
)

func (p *Proxy) injectFailure(c *gin.Context) {
	if f := p.takeFailure(); f != nil {
		server.RespondError(c, f.status, f.message)
		return
	}
	c.Next()
}

func (p *Proxy) knownTopic(c *gin.Context, topic string) bool {
	if p.topics != nil && !p.topics[topic] {
		server.RespondError(c, http.StatusNotFound, "topic "+topic+" not found")
		return false
	}
	return true
}

func (p *Proxy) handleProduce(c *gin.Context) {
	topic := c.Param("topic")
	if !p.knownTopic(c, topic) {
		return
	}

	key := c.PostForm("key")
	value := c.PostForm("value")
	random := c.PostForm("partitioner") == "random"
	if value == "" {
		server.RespondError(c, http.StatusBadRequest, "value can't be empty")
		return
	}
	if !random && key == "" {
		server.RespondError(c, http.StatusBadRequest, "key can't be empty with hash partitioner")
		return
	}

	rec := p.broker.Produce(topic, key, value, random)
	p.log.Debug("message produced", logger.Fields(
		logger.FieldTopic, topic,
		"partition", rec.Partition,
		"offset", rec.Offset,
		"replicate", c.PostForm("replicate"),
	))

	if p.cfg.LegacyFields {
		server.RespondOK(c, gin.H{"Topic": rec.Topic, "Partition": rec.Partition, "Offset": rec.Offset})
		return
	}
	server.RespondOK(c, gin.H{"topic": rec.Topic, "partition": rec.Partition, "offset": rec.Offset})
}

func (p *Proxy) handleConsume(c *gin.Context) {
	group, topic := c.Param("group"), c.Param("topic")
	if !p.knownTopic(c, topic) {
		return
	}

	timeout := defaultBlockingTimeout
	if raw := c.Query("timeout"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms < 0 {
			server.RespondError(c, http.StatusBadRequest, "invalid timeout")
			return
		}
		timeout = min(time.Duration(ms)*time.Millisecond, maxBlockingTimeout)
	}

	rec, ok := p.broker.Wait(c.Request.Context(), group, topic, timeout)
	if !ok {
		if p.cfg.EmptyAsError {
			server.RespondOK(c, gin.H{"error": NoMessageError})
			return
		}
		server.RespondNoContent(c)
		return
	}

	value, encoding := rec.Value, ""
	if p.cfg.Base64Values {
		value, encoding = base64.StdEncoding.EncodeToString([]byte(rec.Value)), "base64"
	}
	server.RespondOK(c, gin.H{
		"topic":     rec.Topic,
		"partition": rec.Partition,
		"offset":    rec.Offset,
		"key":       rec.Key,
		"value":     value,
		"encoding":  encoding,
		"timestamp": rec.Timestamp.UnixMilli(),
	})
}
