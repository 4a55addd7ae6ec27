package journal

import (
	"context"
	"errors"
	"strings"

	"github.com/rcliao/daybook/internal/clock"
	"github.com/rcliao/daybook/internal/model"
	"github.com/rcliao/daybook/internal/session"
	"github.com/rcliao/daybook/internal/synthesis"
)

// Chat records a conversation turn in today's log and asks the model for a reply.
type Chat struct {
	log     session.MessageLog
	gen     synthesis.Generator
	history int
	opts    options
}

// NewChat creates the chat service. gen may be nil; user turns are still recorded.
func NewChat(log session.MessageLog, gen synthesis.Generator, opts ...Option) *Chat {
	return &Chat{log: log, gen: gen, history: session.HistoryWindow, opts: buildOptions(opts, synthesis.ChatPrompt)}
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Date    string `json:"date"`
	Content string `json:"reply"`
}

// Today returns the current day key.
func (c *Chat) Today() string {
	return clock.Today(c.opts.clock, c.opts.location)
}

// SendTurns takes a client-held conversation and sends its final turn, which
// must be a non-empty user message.
func (c *Chat) SendTurns(ctx context.Context, turns []synthesis.Turn) (Reply, error) {
	if len(turns) == 0 {
		return Reply{}, &model.ValidationError{Field: "messages", Reason: "no messages provided"}
	}
	last := turns[len(turns)-1]
	if last.Role != model.RoleUser {
		return Reply{}, &model.ValidationError{Field: "messages", Reason: "last message must be from user"}
	}
	return c.Send(ctx, last.Content)
}

// Send appends content as a user turn, replays the recent log to the model and
// appends its answer. If generation fails the user turn stays recorded.
func (c *Chat) Send(ctx context.Context, content string) (Reply, error) {
	if strings.TrimSpace(content) == "" {
		return Reply{}, &model.ValidationError{Field: "content", Reason: "message content required"}
	}
	day := c.Today()

	if _, err := c.log.Append(ctx, day, model.Message{
		Role:      model.RoleUser,
		Content:   content,
		Timestamp: c.opts.clock.Now().UTC(),
	}); err != nil {
		return Reply{}, err
	}

	if c.gen == nil {
		return Reply{}, &model.SynthesisError{Err: ErrNoGenerator}
	}

	recent, err := c.log.Recent(ctx, day, c.history)
	if err != nil {
		return Reply{}, err
	}
	turns := make([]synthesis.Turn, 0, len(recent))
	for _, m := range recent {
		turns = append(turns, synthesis.Turn{Role: m.Role, Content: m.Content})
	}

	text, err := c.gen.Generate(ctx, synthesis.Request{
		System:    c.opts.prompt,
		Messages:  turns,
		MaxTokens: synthesis.ChatMaxTokens,
	})
	if err != nil {
		if !errors.Is(err, model.ErrSynthesisUnavailable) {
			err = &model.SynthesisError{Err: err}
		}
		c.opts.logger.Warn("chat reply failed", "date", day, "error", err)
		return Reply{}, err
	}

	if _, err := c.log.Append(ctx, day, model.Message{
		Role:      model.RoleAssistant,
		Content:   text,
		Timestamp: c.opts.clock.Now().UTC(),
	}); err != nil {
		return Reply{}, err
	}
	return Reply{Date: day, Content: text}, nil
}

// Messages returns day's log in order. An empty day means today.
func (c *Chat) Messages(ctx context.Context, day string) (string, []model.Message, error) {
	if day == "" {
		day = c.Today()
	}
	msgs, err := c.log.Read(ctx, day)
	return day, msgs, err
}
