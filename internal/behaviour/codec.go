package behaviour

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// TriggerFactory builds a trigger (or condition) from its document
// config payload. A nil or empty payload means "defaults".
type TriggerFactory func(config json.RawMessage) (Trigger, error)

// ActionFactory builds an action from its document config payload.
type ActionFactory func(config json.RawMessage) (Action, error)

// Documented is implemented by triggers and actions that can be
// written back to a behaviour document. Types that do not implement it
// are engine-internal and are dropped (with a warning) on Save.
type Documented interface {
	// TypeName returns the document type identifier.
	TypeName() string

	// MarshalConfig returns the config payload for the document entry.
	MarshalConfig() (json.RawMessage, error)
}

// Codec serialises the behaviour collection to and from its document
// form: an ordered sequence of behaviour blocks, each with scalar
// properties and three type-tagged polymorphic lists (triggers,
// conditions, actions).
//
// Decoding is lenient at the entry level: an entry whose type
// identifier is empty or unresolvable is skipped with a warning, not a
// hard failure. Only a malformed document or a missing root element
// fails the whole decode.
//
// Thread Safety: registration and codec use are safe concurrently,
// though registration normally completes at wiring time.
type Codec struct {
	mu       sync.RWMutex
	triggers map[string]TriggerFactory
	actions  map[string]ActionFactory
	logger   Logger
}

// NewCodec creates a codec with an empty type registry.
func NewCodec() *Codec {
	return &Codec{
		triggers: make(map[string]TriggerFactory),
		actions:  make(map[string]ActionFactory),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger used for lenient-decode warnings.
func (c *Codec) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

// RegisterTrigger binds a type identifier to a trigger factory. The
// same registry serves the triggers and conditions lists.
func (c *Codec) RegisterTrigger(name string, factory TriggerFactory) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.triggers[name]; exists {
		return fmt.Errorf("%w: trigger %q", ErrTypeRegistered, name)
	}
	c.triggers[name] = factory
	return nil
}

// RegisterAction binds a type identifier to an action factory.
func (c *Codec) RegisterAction(name string, factory ActionFactory) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.actions[name]; exists {
		return fmt.Errorf("%w: action %q", ErrTypeRegistered, name)
	}
	c.actions[name] = factory
	return nil
}

// ─── Document Form ──────────────────────────────────────────────────────────

// document is the root element of the serialised collection.
type document struct {
	Behaviours *[]behaviourDoc `json:"behaviours"`
}

// behaviourDoc is one behaviour block: scalar properties plus three
// ordered polymorphic lists.
type behaviourDoc struct {
	ID                string         `json:"id,omitempty"`
	Name              string         `json:"name"`
	Enabled           bool           `json:"enabled"`
	CooldownSeconds   float64        `json:"cooldown_seconds,omitempty"`
	Triggering        TriggeringKind `json:"triggering"`
	TimedDelaySeconds float64        `json:"timed_delay_seconds,omitempty"`
	Group             string         `json:"group,omitempty"`
	Triggers          []entryDoc     `json:"triggers"`
	Conditions        []entryDoc     `json:"conditions"`
	Actions           []entryDoc     `json:"actions"`
}

// entryDoc is a single polymorphic list entry: a type identifier and
// an embedded payload decoded by that type's own schema.
type entryDoc struct {
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}

// ─── Decoding ───────────────────────────────────────────────────────────────

// Decode parses a behaviour document into fresh Behaviour entities.
func (c *Codec) Decode(doc []byte) ([]*Behaviour, error) {
	var d document
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if d.Behaviours == nil {
		return nil, fmt.Errorf("%w: missing behaviours root element", ErrDecode)
	}

	behaviours := make([]*Behaviour, 0, len(*d.Behaviours))
	for i := range *d.Behaviours {
		behaviours = append(behaviours, c.decodeBehaviour(&(*d.Behaviours)[i]))
	}
	return behaviours, nil
}

func (c *Codec) decodeBehaviour(bd *behaviourDoc) *Behaviour {
	b := &Behaviour{
		ID:                       bd.ID,
		Name:                     bd.Name,
		Enabled:                  bd.Enabled,
		CooldownPeriod:           secondsToDuration(bd.CooldownSeconds),
		Triggering:               bd.Triggering,
		MinimalTimedTriggerDelay: secondsToDuration(bd.TimedDelaySeconds),
		Group:                    bd.Group,
	}
	if b.ID == "" {
		b.ID = GenerateID()
	}

	b.Triggers = c.decodeTriggers(b.Name, "trigger", bd.Triggers)
	b.Conditions = c.decodeTriggers(b.Name, "condition", bd.Conditions)

	for _, entry := range bd.Actions {
		factory, ok := c.lookupAction(entry.Type)
		if !ok {
			c.warnSkipped(b.Name, "action", entry.Type)
			continue
		}
		a, err := factory(entry.Config)
		if err != nil {
			c.warnInvalid(b.Name, "action", entry.Type, err)
			continue
		}
		b.Actions = append(b.Actions, a)
	}
	return b
}

// decodeTriggers resolves one polymorphic trigger/condition list,
// skipping entries the registry cannot resolve.
func (c *Codec) decodeTriggers(behaviourName, role string, entries []entryDoc) []Trigger {
	var out []Trigger
	for _, entry := range entries {
		factory, ok := c.lookupTrigger(entry.Type)
		if !ok {
			c.warnSkipped(behaviourName, role, entry.Type)
			continue
		}
		t, err := factory(entry.Config)
		if err != nil {
			c.warnInvalid(behaviourName, role, entry.Type, err)
			continue
		}
		out = append(out, t)
	}
	return out
}

func (c *Codec) lookupTrigger(name string) (TriggerFactory, bool) {
	if name == "" {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.triggers[name]
	return f, ok
}

func (c *Codec) lookupAction(name string) (ActionFactory, bool) {
	if name == "" {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.actions[name]
	return f, ok
}

func (c *Codec) warnSkipped(behaviourName, role, typeName string) {
	c.log().Warn("skipping unresolvable document entry",
		"behaviour", behaviourName,
		"role", role,
		"type", typeName,
	)
}

func (c *Codec) warnInvalid(behaviourName, role, typeName string, err error) {
	c.log().Warn("skipping undecodable document entry",
		"behaviour", behaviourName,
		"role", role,
		"type", typeName,
		"error", err,
	)
}

func (c *Codec) log() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// ─── Encoding ───────────────────────────────────────────────────────────────

// Encode serialises behaviours into document form. compact controls
// indentation only, never content or schema.
func (c *Codec) Encode(behaviours []*Behaviour, compact bool) ([]byte, error) {
	docs := make([]behaviourDoc, 0, len(behaviours))
	for _, b := range behaviours {
		bd, err := c.encodeBehaviour(b)
		if err != nil {
			return nil, err
		}
		docs = append(docs, bd)
	}

	d := document{Behaviours: &docs}
	if compact {
		return json.Marshal(d)
	}
	return json.MarshalIndent(d, "", "  ")
}

func (c *Codec) encodeBehaviour(b *Behaviour) (behaviourDoc, error) {
	bd := behaviourDoc{
		ID:                b.ID,
		Name:              b.Name,
		Enabled:           b.Enabled,
		CooldownSeconds:   durationToSeconds(b.CooldownPeriod),
		Triggering:        b.Triggering,
		TimedDelaySeconds: durationToSeconds(b.MinimalTimedTriggerDelay),
		Group:             b.Group,
		Triggers:          make([]entryDoc, 0, len(b.Triggers)),
		Conditions:        make([]entryDoc, 0, len(b.Conditions)),
		Actions:           make([]entryDoc, 0, len(b.Actions)),
	}

	for _, t := range b.Triggers {
		if entry, ok := c.encodeEntry(b.Name, "trigger", t); ok {
			bd.Triggers = append(bd.Triggers, entry)
		}
	}
	for _, cond := range b.Conditions {
		if entry, ok := c.encodeEntry(b.Name, "condition", cond); ok {
			bd.Conditions = append(bd.Conditions, entry)
		}
	}
	for _, a := range b.Actions {
		if entry, ok := c.encodeEntry(b.Name, "action", a); ok {
			bd.Actions = append(bd.Actions, entry)
		}
	}
	return bd, nil
}

// encodeEntry writes one polymorphic entry. Values that do not
// implement Documented cannot appear in a document and are dropped.
func (c *Codec) encodeEntry(behaviourName, role string, v any) (entryDoc, bool) {
	doc, ok := v.(Documented)
	if !ok {
		c.log().Warn("dropping undocumentable entry on save",
			"behaviour", behaviourName,
			"role", role,
		)
		return entryDoc{}, false
	}
	cfg, err := doc.MarshalConfig()
	if err != nil {
		c.log().Warn("dropping unencodable entry on save",
			"behaviour", behaviourName,
			"role", role,
			"type", doc.TypeName(),
			"error", err,
		)
		return entryDoc{}, false
	}
	return entryDoc{Type: doc.TypeName(), Config: cfg}, true
}

// ─── Duration Helpers ───────────────────────────────────────────────────────

// Documents express durations as fractional seconds; the entities use
// time.Duration.

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func durationToSeconds(d time.Duration) float64 {
	return d.Seconds()
}
