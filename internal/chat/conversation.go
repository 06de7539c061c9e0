package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nikhilbhutani/etpassistant/internal/kv"
)

const (
	RAGHistoryKey  = "rag_chat_history"
	ChatHistoryKey = "chat_history"

	MsgApology = "Desculpe, ocorreu um erro ao processar sua pergunta. Tente novamente."
	Greeting   = "Olá! Sou seu assistente especializado em licitações e contratos administrativos. " +
		"Posso ajudá-lo com dúvidas sobre modalidades de licitação, escrita de documentos oficiais e muito mais. " +
		"Como posso auxiliá-lo hoje?"
)

var (
	ErrEmptyMessage         = errors.New("Digite uma pergunta")
	ErrAssistantUnavailable = errors.New("Configure o assistente RAG primeiro")
)

var suggestedQuestions = []string{
	"O que é um Estudo Técnico Preliminar?",
	"Quais são os requisitos para licitação?",
	"Como calcular o valor estimado da contratação?",
	"Quais critérios de sustentabilidade devo considerar?",
	"O que deve conter a análise de riscos?",
	"Como justificar o parcelamento do objeto?",
	"Quais são as modalidades de licitação?",
	"O que é o Plano de Contratações Anuais?",
}

// SuggestedQuestions are the starters offered by the legal assistant.
func SuggestedQuestions() []string {
	return append([]string(nil), suggestedQuestions...)
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithGreeting shows text as an assistant message while the transcript is
// empty. The greeting is never stored.
func WithGreeting(text string) Option {
	return func(c *Conversation) { c.greeting = text }
}

// OnAnswered registers fn to run after each successful reply.
func OnAnswered(fn func()) Option {
	return func(c *Conversation) { c.onAnswered = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) { c.logger = l }
}

// Conversation is one assistant's transcript, persisted under its own key.
type Conversation struct {
	key        string
	store      kv.Store
	responder  Responder
	greeting   string
	onAnswered func()
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	messages []Message
	loaded   bool
}

func NewConversation(key string, store kv.Store, responder Responder, opts ...Option) *Conversation {
	c := &Conversation{
		key:       key,
		store:     store,
		responder: responder,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Load reads the stored transcript. It only reads once; later calls are
// no-ops. A transcript that cannot be decoded is logged and dropped.
func (c *Conversation) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

func (c *Conversation) loadLocked(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	raw, err := c.store.Get(ctx, c.key)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("load %s: %w", c.key, err)
	}
	if err == nil {
		var msgs []Message
		if err := json.Unmarshal(raw, &msgs); err != nil {
			c.logger.Warn("ignoring unreadable transcript", "key", c.key, "error", err)
		} else {
			c.messages = msgs
		}
	}
	c.loaded = true
	return nil
}

// Send adds the user's message, asks the responder, and adds its reply.
// When the responder fails an apology is added in its place and the error
// returned; the user's message stays.
func (c *Conversation) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	if !c.responder.Available() {
		return Message{}, ErrAssistantUnavailable
	}

	c.mu.Lock()
	if err := c.loadLocked(ctx); err != nil {
		c.mu.Unlock()
		return Message{}, err
	}
	history := turns(c.messages)
	c.appendLocked(ctx, newMessage(SenderUser, text, c.now()))
	c.mu.Unlock()

	reply, err := c.responder.Respond(ctx, text, history)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		msg := newMessage(SenderAssistant, MsgApology, c.now())
		msg.IsError = true
		c.appendLocked(ctx, msg)
		c.logger.Warn("assistant reply failed", "key", c.key, "error", err)
		return msg, err
	}

	msg := newMessage(SenderAssistant, reply.Text, c.now())
	msg.Sources = reply.Sources
	c.appendLocked(ctx, msg)
	if c.onAnswered != nil {
		c.onAnswered()
	}
	return msg, nil
}

func (c *Conversation) appendLocked(ctx context.Context, m Message) {
	c.messages = append(c.messages, m)
	if err := kv.SetJSON(ctx, c.store, c.key, c.messages); err != nil {
		c.logger.Warn("transcript not saved", "key", c.key, "error", err)
	}
}

// Messages returns the transcript in order. An empty transcript shows the
// greeting, when one is set.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 && c.greeting != "" {
		return []Message{{ID: "greeting", Sender: SenderAssistant, Text: c.greeting, Timestamp: c.now()}}
	}
	return append([]Message(nil), c.messages...)
}

// Clear empties the transcript and removes it from the store.
func (c *Conversation) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.loaded = true
	if err := c.store.Remove(ctx, c.key); err != nil {
		return fmt.Errorf("clear %s: %w", c.key, err)
	}
	return nil
}
