package upstream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/internal/utils"
	"github.com/cathy-ai/companion-gateway/models"
)

// ChatClient talks to the Ollama-style chat endpoint. The streaming call
// returns a Stream of suffix deltas; on a non-2xx streaming response the
// client retries once without streaming and yields the whole reply as a
// single delta.
type ChatClient struct {
	client  *utils.HTTPClient
	url     string
	apiKey  string
	timeout time.Duration

	logger *logger.Logger
}

func NewChatClient(cfg config.Upstream, logger *logger.Logger) *ChatClient {
	client := utils.NewHTTPClient()
	client.SetTimeout(cfg.ChatTimeout)

	return &ChatClient{
		client:  client,
		url:     cfg.ChatAPIURL,
		apiKey:  cfg.ChatAPIKey,
		timeout: cfg.ChatTimeout,
		logger:  logger,
	}
}

// Stream opens a streaming chat call and returns a Stream of delta strings.
// The caller must drain or Close the stream; cancelling ctx stops
// consumption and releases the upstream connection.
func (c *ChatClient) Stream(ctx context.Context, model string, messages []models.ChatMessage) (*Stream, error) {
	log := logger.FromContext(ctx)

	if c.url == "" {
		return nil, ErrChatNotConfigured
	}

	req := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Content-Type", "application/json").
		SetBody(models.ChatRequest{Model: model, Messages: messages, Stream: true})
	if c.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := req.Post(c.url)
	if err != nil {
		log.Err(err).Str("model", model).Msg("chat stream request failed")
		return nil, fmt.Errorf("%w: %v", ErrChatUpstream, err)
	}

	if !resp.IsSuccess() {
		resp.RawBody().Close()
		log.Warn().Int("status", resp.StatusCode()).Str("model", model).Msg("streaming chat rejected, falling back to non-streaming")
		return c.fallback(ctx, model, messages)
	}

	scanner := bufio.NewScanner(resp.RawBody())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &Stream{
		body:    resp.RawBody(),
		scanner: scanner,
		logger:  log,
	}, nil
}

// fallback retries the chat call with stream:false and wraps the whole
// reply into a single-delta stream.
func (c *ChatClient) fallback(ctx context.Context, model string, messages []models.ChatMessage) (*Stream, error) {
	log := logger.FromContext(ctx)

	var reply models.ChatReply
	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.ChatRequest{Model: model, Messages: messages, Stream: false}).
		SetResult(&reply)
	if c.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := req.Post(c.url)
	if err != nil {
		log.Err(err).Msg("non-streaming fallback failed")
		return nil, fmt.Errorf("%w: %v", ErrChatUpstream, err)
	}
	if !resp.IsSuccess() {
		log.Error().Int("status", resp.StatusCode()).Msg("non-streaming fallback rejected")
		return nil, fmt.Errorf("%w: status %d", ErrChatUpstream, resp.StatusCode())
	}

	return &Stream{pending: reply.Reply, hasPending: reply.Reply != "", done: true, logger: log}, nil
}

// Stream yields the suffix deltas of one assistant reply. Recv returns
// io.EOF after the terminal chunk. Streams must be Closed when abandoned
// early; draining to io.EOF closes the upstream body automatically.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	logger  *logger.Logger

	// last is the previously seen cumulative content. Upstreams that send
	// cumulative snapshots are reduced to suffixes against it.
	last string

	pending    string
	hasPending bool
	done       bool
}

// Recv returns the next delta string. It never returns an empty delta; the
// stream ends with io.EOF.
func (s *Stream) Recv() (string, error) {
	if s.hasPending {
		s.hasPending = false
		return s.pending, nil
	}
	if s.done {
		s.close()
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "data: ")
		if line == "[DONE]" {
			s.done = true
			s.close()
			return "", io.EOF
		}

		var chunk models.StreamChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			s.logger.Warn().Err(err).Msg("skipping malformed stream chunk")
			continue
		}

		if chunk.Message != nil {
			delta := s.delta(chunk.Message.Content)
			if chunk.Done {
				s.done = true
				if delta != "" {
					return delta, nil
				}
				s.close()
				return "", io.EOF
			}
			if delta != "" {
				return delta, nil
			}
			continue
		}

		if chunk.Token != "" {
			if chunk.Done {
				s.done = true
			}
			return chunk.Token, nil
		}

		if chunk.Done {
			s.done = true
			s.close()
			return "", io.EOF
		}
	}

	s.done = true
	s.close()
	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrChatUpstream, err)
	}
	return "", io.EOF
}

// delta reduces a chunk's content to the not-yet-emitted suffix. Cumulative
// snapshots extend the previous content, so a prefix match yields the new
// tail; anything else is treated as a plain delta.
func (s *Stream) delta(content string) string {
	if content == "" {
		return ""
	}

	if strings.HasPrefix(content, s.last) {
		delta := content[len(s.last):]
		s.last = content
		return delta
	}

	s.last = content
	return content
}

// Close releases the upstream connection. Safe to call multiple times.
func (s *Stream) Close() error {
	s.done = true
	s.hasPending = false
	s.close()
	return nil
}

func (s *Stream) close() {
	if s.body != nil {
		s.body.Close()
		s.body = nil
	}
}
