package input

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/flowfiler/internal/command"
)

const sequenceTimeout = 500 * time.Millisecond

// Key contexts. The active context is decided by what has focus.
const (
	ContextGlobal    = "global"
	ContextPane      = "pane"
	ContextFavorites = "favorites"
	ContextQuickLook = "quicklook"
	ContextMenu      = "menu"
)

// Binding maps a key or key sequence to a command.
type Binding struct {
	Key     string // e.g., "tab", "ctrl+c", "g g"
	Command command.Command
	Context string
}

// Registry manages key bindings and resolves keys to commands.
type Registry struct {
	bindings      map[string][]Binding       // context -> bindings
	userOverrides map[string]command.Command // key -> command
	pendingKey    string
	pendingTime   time.Time
	now           func() time.Time
	mu            sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings:      make(map[string][]Binding),
		userOverrides: make(map[string]command.Command),
		now:           time.Now,
	}
}

// Bind adds a key binding in context.
func (r *Registry) Bind(context, key string, cmd command.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[context] = append(r.bindings[context], Binding{Key: key, Command: cmd, Context: context})
}

// SetUserOverride binds key to the command with the given ID in every
// context, ahead of the defaults.
func (r *Registry) SetUserOverride(key, commandID string) error {
	kind, ok := command.Parse(commandID)
	if !ok {
		return fmt.Errorf("unknown command %q for key %q", commandID, key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userOverrides[key] = command.New(kind)
	return nil
}

// ApplyOverrides installs every override and returns the ones rejected.
func (r *Registry) ApplyOverrides(overrides map[string]string) []error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if err := r.SetUserOverride(k, overrides[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Handle resolves a key event in the active context. ok is false when the
// key is unbound or starts a pending sequence.
func (r *Registry) Handle(key tea.KeyMsg, activeContext string) (command.Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keyStr := KeyString(key)

	if r.pendingKey != "" {
		if r.now().Sub(r.pendingTime) < sequenceTimeout {
			seq := r.pendingKey + " " + keyStr
			r.pendingKey = ""
			if cmd, ok := r.findCommand(seq, activeContext); ok {
				return cmd, true
			}
			// Sequence didn't match, try just the new key
		} else {
			r.pendingKey = ""
		}
	}

	if r.isSequenceStart(keyStr, activeContext) {
		r.pendingKey = keyStr
		r.pendingTime = r.now()
		return command.Command{}, false
	}

	return r.findCommand(keyStr, activeContext)
}

// findCommand looks up a command for the given key in order of precedence.
func (r *Registry) findCommand(key, activeContext string) (command.Command, bool) {
	// 1. User overrides
	if cmd, ok := r.userOverrides[key]; ok {
		return cmd, true
	}

	// 2. Active context
	if activeContext != "" && activeContext != ContextGlobal {
		if cmd, ok := r.findInContext(key, activeContext); ok {
			return cmd, true
		}
	}

	// 3. Global
	return r.findInContext(key, ContextGlobal)
}

func (r *Registry) findInContext(key, context string) (command.Command, bool) {
	for _, b := range r.bindings[context] {
		if b.Key == key {
			return b.Command, true
		}
	}
	return command.Command{}, false
}

// isSequenceStart checks if this key could start a multi-key sequence.
func (r *Registry) isSequenceStart(key, activeContext string) bool {
	prefix := key + " "

	contexts := []string{ContextGlobal}
	if activeContext != "" && activeContext != ContextGlobal {
		contexts = append(contexts, activeContext)
	}
	for _, ctx := range contexts {
		for _, b := range r.bindings[ctx] {
			if strings.HasPrefix(b.Key, prefix) {
				return true
			}
		}
	}
	for k := range r.userOverrides {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// ResetPending clears any pending key sequence.
func (r *Registry) ResetPending() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingKey = ""
}

// HasPending returns true if there's a pending key sequence.
func (r *Registry) HasPending() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pendingKey != "" && r.now().Sub(r.pendingTime) < sequenceTimeout
}

// BindingsForContext returns all bindings for a given context.
func (r *Registry) BindingsForContext(context string) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Binding(nil), r.bindings[context]...)
}

// KeysFor returns the keys bound to kind in context, overrides first.
func (r *Registry) KeysFor(kind command.Kind, context string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var keys []string
	for k, c := range r.userOverrides {
		if c.Kind == kind {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, b := range r.bindings[context] {
		if b.Command.Kind == kind {
			keys = append(keys, b.Key)
		}
	}
	return keys
}

// KeyString converts a tea.KeyMsg to the binding notation.
func KeyString(key tea.KeyMsg) string {
	var s string
	switch key.Type {
	case tea.KeySpace:
		s = "space"
	case tea.KeyRunes:
		s = string(key.Runes)
		if s == " " {
			s = "space"
		}
	default:
		return key.String()
	}
	if key.Alt {
		return "alt+" + s
	}
	return s
}
